package calendar

import (
	"context"
	"errors"
	"time"

	"staybook/internal/app/dto"
	"staybook/internal/app/handlers/support"
	"staybook/internal/app/queries"
	"staybook/internal/app/uow"
	domainproperty "staybook/internal/domain/property"
)

const getMonthKey = "calendar.month"

var ErrInvalidMonth = errors.New("calendar: month must be between 1 and 12")

type GetMonthQuery struct {
	PropertyID string
	Year       int
	Month      int
}

func (q GetMonthQuery) Key() string { return getMonthKey }

// GetMonthHandler returns the persisted ledger entries falling inside one
// month. Days without entries are omitted; absence means available.
type GetMonthHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *GetMonthHandler) Handle(ctx context.Context, q GetMonthQuery) (dto.MonthCalendar, error) {
	var zero dto.MonthCalendar
	if q.Month < 1 || q.Month > 12 {
		return zero, ErrInvalidMonth
	}
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

	out := dto.MonthCalendar{PropertyID: q.PropertyID, Year: q.Year, Month: q.Month}
	for _, dated := range ledger.EntriesInMonth(q.Year, time.Month(q.Month)) {
		entry := dto.CalendarEntry{
			Date:       dated.Day.String(),
			Available:  dated.Entry.Available,
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

var _ queries.Handler[GetMonthQuery, dto.MonthCalendar] = (*GetMonthHandler)(nil)
