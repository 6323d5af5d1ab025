package calendar

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

const getSummaryKey = "calendar.summary"

type GetSummaryQuery struct {
	PropertyID string
	From       time.Time
	To         time.Time
}

func (q GetSummaryQuery) Key() string { return getSummaryKey }

// GetSummaryHandler classifies every day of a range for calendar display.
// It walks the same ledger state the availability check reads, but collects
// per-day price and booking reference instead of short-circuiting, and
// resolves prices with the same precedence the booking quote uses.
type GetSummaryHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *GetSummaryHandler) Handle(ctx context.Context, q GetSummaryQuery) (dto.AvailabilitySummary, error) {
	var zero dto.AvailabilitySummary
	unit, ctx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return zero, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	dr, err := domainrange.New(q.From, q.To)
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

	propertyOpen := prop.Bookable()
	summary := dto.AvailabilitySummary{
		PropertyID: q.PropertyID,
		From:       dr.CheckIn,
		To:         dr.CheckOut,
	}
	for _, day := range dr.Days() {
		price := domainpricing.ForDate(prop, ledger, day)
		detail := dto.DayDetail{
			Date:        day.String(),
			Available:   propertyOpen && ledger.DayAvailable(day),
			PriceAmount: price.Amount,
			Currency:    price.Currency,
		}
		if entry, ok := ledger.Entries[day]; ok {
			detail.BookingRef = entry.BookingRef
		}
		summary.TotalDays++
		if detail.Available {
			summary.AvailableDays++
		} else {
			summary.BlockedDays++
		}
		summary.Days = append(summary.Days, detail)
	}
	return summary, nil
}

var _ queries.Handler[GetSummaryQuery, dto.AvailabilitySummary] = (*GetSummaryHandler)(nil)
