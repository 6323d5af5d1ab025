package pricing

import (
	"context"
	"time"

	"staybook/internal/app/commands"
	"staybook/internal/app/middleware"
	"staybook/internal/app/outbox"
	"staybook/internal/app/uow"
	domainproperty "staybook/internal/domain/property"
	domainrange "staybook/internal/domain/shared/daterange"
	"staybook/internal/domain/shared/money"
)

const updatePricingKey = "pricing.update"

type PriceSpanInput struct {
	Start  time.Time
	End    time.Time
	Amount int64
}

type UpdatePricingCommand struct {
	PropertyID      string
	Spans           []PriceSpanInput
	IdempotencyKeyV string
}

func (c UpdatePricingCommand) Key() string { return updatePricingKey }

func (c UpdatePricingCommand) IdempotencyKey() string { return c.IdempotencyKeyV }

func (c UpdatePricingCommand) ResultPrototype() any { return &UpdatePricingResult{} }

type UpdatePricingResult struct {
	PropertyID string `json:"property_id"`
	Spans      int    `json:"spans"`
}

// UpdatePricingHandler writes per-date rate overrides onto the property.
// Spans apply in input order, so overlapping later spans win.
type UpdatePricingHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
}

func (h *UpdatePricingHandler) Handle(ctx context.Context, cmd UpdatePricingCommand) (*UpdatePricingResult, error) {
	unit, ok := uow.FromContext(ctx)
	managed := false
	committed := false
	if !ok {
		if h.UoWFactory == nil {
			return nil, uow.ErrUnitOfWorkMissing
		}
		var err error
		unit, err = h.UoWFactory.Begin(ctx, uow.TxOptions{})
		if err != nil {
			return nil, err
		}
		ctx = uow.ContextWithUnitOfWork(ctx, unit)
		managed = true
		defer func() {
			if !committed {
				_ = unit.Rollback(ctx)
			}
		}()
	}

	prop, err := unit.Properties().ByID(ctx, domainproperty.PropertyID(cmd.PropertyID))
	if err != nil {
		return nil, err
	}

	spans := make([]domainproperty.PriceSpan, 0, len(cmd.Spans))
	for _, in := range cmd.Spans {
		dr, err := domainrange.New(in.Start, in.End)
		if err != nil {
			return nil, err
		}
		price, err := money.New(in.Amount, prop.BasePrice.Currency)
		if err != nil {
			return nil, err
		}
		spans = append(spans, domainproperty.PriceSpan{Range: dr, Price: price})
	}

	now := time.Now().UTC()
	if err := prop.SetDatePricing(spans, now); err != nil {
		return nil, err
	}
	if err := unit.Properties().Save(ctx, prop); err != nil {
		return nil, err
	}

	pending := prop.PendingEvents()
	prop.ClearEvents()
	if err := outbox.RecordDomainEvents(ctx, h.Outbox, h.Encoder, pending); err != nil {
		return nil, err
	}

	if managed {
		if err := unit.Commit(ctx); err != nil {
			return nil, err
		}
		committed = true
	}
	return &UpdatePricingResult{PropertyID: cmd.PropertyID, Spans: len(spans)}, nil
}

var _ commands.Handler[UpdatePricingCommand, *UpdatePricingResult] = (*UpdatePricingHandler)(nil)
var _ middleware.IdempotentCommand = UpdatePricingCommand{}
