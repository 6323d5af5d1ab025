package calendar

import (
	"context"
	"time"

	"staybook/internal/app/commands"
	"staybook/internal/app/outbox"
	"staybook/internal/app/uow"
	domainproperty "staybook/internal/domain/property"
)

const cleanupKey = "calendar.cleanup"

type CleanupCommand struct {
	PropertyID string
	Now        time.Time
}

func (c CleanupCommand) Key() string { return cleanupKey }

type CleanupResult struct {
	PropertyID string `json:"property_id"`
	Removed    int    `json:"removed"`
}

// CleanupHandler runs the retention sweep over one property's ledger,
// dropping day entries more than a year old. Idempotent; the scheduler
// invokes it per property.
type CleanupHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
}

func (h *CleanupHandler) Handle(ctx context.Context, cmd CleanupCommand) (*CleanupResult, error) {
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

	ledger, err := unit.Calendars().ByProperty(ctx, domainproperty.PropertyID(cmd.PropertyID))
	if err != nil {
		return nil, err
	}

	now := cmd.Now
	if now.IsZero() {
		now = time.Now()
	}
	removed := ledger.Cleanup(now.UTC())
	if removed > 0 {
		if err := unit.Calendars().Save(ctx, ledger); err != nil {
			return nil, err
		}
		pending := ledger.PendingEvents()
		ledger.ClearEvents()
		if err := outbox.RecordDomainEvents(ctx, h.Outbox, h.Encoder, pending); err != nil {
			return nil, err
		}
	}

	if managed {
		if err := unit.Commit(ctx); err != nil {
			return nil, err
		}
		committed = true
	}
	return &CleanupResult{PropertyID: cmd.PropertyID, Removed: removed}, nil
}

var _ commands.Handler[CleanupCommand, *CleanupResult] = (*CleanupHandler)(nil)
