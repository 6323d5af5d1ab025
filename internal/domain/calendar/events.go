package calendar

import (
	"time"

	"staybook/internal/domain/property"
	"staybook/internal/domain/shared/daterange"
)

type CalendarBlocked struct {
	PropertyID string    `json:"property_id"`
	CheckIn    time.Time `json:"check_in"`
	CheckOut   time.Time `json:"check_out"`
	BookingRef string    `json:"booking_ref"`
	At         time.Time `json:"at"`
}

func (e CalendarBlocked) EventName() string     { return "calendar.blocked" }
func (e CalendarBlocked) AggregateID() string   { return e.PropertyID }
func (e CalendarBlocked) OccurredAt() time.Time { return e.At }

type CalendarReleased struct {
	PropertyID string    `json:"property_id"`
	CheckIn    time.Time `json:"check_in"`
	CheckOut   time.Time `json:"check_out"`
	At         time.Time `json:"at"`
}

func (e CalendarReleased) EventName() string     { return "calendar.released" }
func (e CalendarReleased) AggregateID() string   { return e.PropertyID }
func (e CalendarReleased) OccurredAt() time.Time { return e.At }

type OverbookingPrevented struct {
	PropertyID string    `json:"property_id"`
	CheckIn    time.Time `json:"check_in"`
	CheckOut   time.Time `json:"check_out"`
	At         time.Time `json:"at"`
}

func (e OverbookingPrevented) EventName() string     { return "calendar.overbooking_prevented" }
func (e OverbookingPrevented) AggregateID() string   { return e.PropertyID }
func (e OverbookingPrevented) OccurredAt() time.Time { return e.At }

type CalendarCleaned struct {
	PropertyID string    `json:"property_id"`
	Removed    int       `json:"removed"`
	At         time.Time `json:"at"`
}

func (e CalendarCleaned) EventName() string     { return "calendar.cleaned" }
func (e CalendarCleaned) AggregateID() string   { return e.PropertyID }
func (e CalendarCleaned) OccurredAt() time.Time { return e.At }

func blockedEvent(id property.PropertyID, r daterange.DateRange, ref string, at time.Time) CalendarBlocked {
	return CalendarBlocked{PropertyID: string(id), CheckIn: r.CheckIn, CheckOut: r.CheckOut, BookingRef: ref, At: at.UTC()}
}

func releasedEvent(id property.PropertyID, r daterange.DateRange, at time.Time) CalendarReleased {
	return CalendarReleased{PropertyID: string(id), CheckIn: r.CheckIn, CheckOut: r.CheckOut, At: at.UTC()}
}

func overbookingPreventedEvent(id property.PropertyID, r daterange.DateRange, at time.Time) OverbookingPrevented {
	return OverbookingPrevented{PropertyID: string(id), CheckIn: r.CheckIn, CheckOut: r.CheckOut, At: at.UTC()}
}

func cleanedEvent(id property.PropertyID, removed int, at time.Time) CalendarCleaned {
	return CalendarCleaned{PropertyID: string(id), Removed: removed, At: at.UTC()}
}
