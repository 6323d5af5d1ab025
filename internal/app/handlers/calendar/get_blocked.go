package calendar

import (
	"context"

	"staybook/internal/app/dto"
	"staybook/internal/app/handlers/support"
	"staybook/internal/app/queries"
	"staybook/internal/app/uow"
	domainproperty "staybook/internal/domain/property"
)

const getBlockedKey = "calendar.blocked"

type GetBlockedQuery struct {
	PropertyID string
}

func (q GetBlockedQuery) Key() string { return getBlockedKey }

// GetBlockedHandler lists the taken days of a property's ledger, for host
// calendar export.
type GetBlockedHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *GetBlockedHandler) Handle(ctx context.Context, q GetBlockedQuery) (dto.BlockedDates, error) {
	var zero dto.BlockedDates
	unit, ctx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return zero, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	ledger, err := unit.Calendars().ByProperty(ctx, domainproperty.PropertyID(q.PropertyID))
	if err != nil {
		return zero, err
	}

	out := dto.BlockedDates{PropertyID: q.PropertyID}
	for _, dated := range ledger.BlockedEntries() {
		entry := dto.CalendarEntry{
			Date:       dated.Day.String(),
			Available:  false,
			BookingRef: dated.Entry.BookingRef,
		}
		if dated.Entry.Price != nil {
			amount := dated.Entry.Price.Amount
			entry.PriceAmount = &amount
		}
		out.Entries = append(out.Entries, entry)
	}
	return out, nil
}

var _ queries.Handler[GetBlockedQuery, dto.BlockedDates] = (*GetBlockedHandler)(nil)
