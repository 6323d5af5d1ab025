package dto

import "time"

// DayDetail is one classified day of an availability summary.
type DayDetail struct {
	Date        string `json:"date"`
	Available   bool   `json:"available"`
	PriceAmount int64  `json:"price_amount"`
	Currency    string `json:"currency"`
	BookingRef  string `json:"booking_ref,omitempty"`
}

// AvailabilitySummary is the calendar-UI view of a date range.
type AvailabilitySummary struct {
	PropertyID    string      `json:"property_id"`
	From          time.Time   `json:"from"`
	To            time.Time   `json:"to"`
	TotalDays     int         `json:"total_days"`
	AvailableDays int         `json:"available_days"`
	BlockedDays   int         `json:"blocked_days"`
	Days          []DayDetail `json:"days"`
}

// CalendarEntry is one persisted ledger day in month or blocked-dates views.
type CalendarEntry struct {
	Date        string `json:"date"`
	Available   bool   `json:"available"`
	PriceAmount *int64 `json:"price_amount,omitempty"`
	BookingRef  string `json:"booking_ref,omitempty"`
}

// MonthCalendar is the month-scoped ledger view.
type MonthCalendar struct {
	PropertyID string          `json:"property_id"`
	Year       int             `json:"year"`
	Month      int             `json:"month"`
	Entries    []CalendarEntry `json:"entries"`
}

// BlockedDates lists every currently blocked ledger day.
type BlockedDates struct {
	PropertyID string          `json:"property_id"`
	Entries    []CalendarEntry `json:"entries"`
}
