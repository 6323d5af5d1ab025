package pricing

import (
	"context"
	"time"

	"staybook/internal/app/dto"
	"staybook/internal/app/handlers/support"
	"staybook/internal/app/queries"
	"staybook/internal/app/uow"
	domainpricing "staybook/internal/domain/pricing"
	domainproperty "staybook/internal/domain/property"
	domainrange "staybook/internal/domain/shared/daterange"
)

const getQuoteKey = "pricing.quote"

type GetQuoteQuery struct {
	PropertyID string
	CheckIn    time.Time
	CheckOut   time.Time
}

func (q GetQuoteQuery) Key() string { return getQuoteKey }

// GetQuoteHandler prices a stay without creating anything; the browsing
// frontend calls it before the booking request.
type GetQuoteHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *GetQuoteHandler) Handle(ctx context.Context, q GetQuoteQuery) (dto.Quote, error) {
	var zero dto.Quote
	unit, ctx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return zero, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	dr, err := domainrange.New(q.CheckIn, q.CheckOut)
	if err != nil {
		return zero, err
	}

	prop, err := unit.Properties().ByID(ctx, domainproperty.PropertyID(q.PropertyID))
	if err != nil {
		return zero, err
	}
	ledger, err := unit.Calendars().ByProperty(ctx, prop.ID)
	if err != nil {
		return zero, err
	}

	quote, err := domainpricing.ForRange(prop, ledger, dr)
	if err != nil {
		return zero, err
	}
	return dto.MapQuote(q.PropertyID, dr.CheckIn, dr.CheckOut, quote), nil
}

var _ queries.Handler[GetQuoteQuery, dto.Quote] = (*GetQuoteHandler)(nil)
