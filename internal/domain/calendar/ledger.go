package calendar

import (
	"context"
	"errors"
	"sort"
	"time"

	"staybook/internal/domain/property"
	"staybook/internal/domain/shared/daterange"
	"staybook/internal/domain/shared/events"
	"staybook/internal/domain/shared/money"
)

var (
	ErrDatesUnavailable = errors.New("calendar: requested dates are unavailable")
	ErrLedgerNotFound   = errors.New("calendar: ledger not found")
	// ErrVersionConflict is surfaced by repositories when a concurrent writer
	// saved the ledger first. Callers reload and retry.
	ErrVersionConflict = errors.New("calendar: concurrent ledger update")
)

// retentionDays bounds how long released or stale day entries are kept
// before the maintenance sweep drops them.
const retentionDays = 365

// Entry is the ledger record for a single calendar day. A day with no entry
// is available at the property's default rate, so the map stays sparse.
type Entry struct {
	Available  bool
	Price      *money.Money
	BookingRef string
}

// Ledger is the per-property day-by-day availability record. It is keyed by
// calendar day for O(1) lookup; Block and Unblock are the only mutation
// entry points so the persistence conflict guard wraps them both.
type Ledger struct {
	PropertyID property.PropertyID
	Entries    map[daterange.Day]Entry
	Version    int64
	events.EventRecorder
}

type Repository interface {
	ByProperty(ctx context.Context, id property.PropertyID) (*Ledger, error)
	Save(ctx context.Context, l *Ledger) error
}

func NewLedger(id property.PropertyID) *Ledger {
	return &Ledger{PropertyID: id, Entries: make(map[daterange.Day]Entry)}
}

// DayAvailable reports whether one day is open. Absence of an entry means
// available.
func (l *Ledger) DayAvailable(d daterange.Day) bool {
	entry, ok := l.Entries[d]
	return !ok || entry.Available
}

// RangeAvailable reports whether every covered day of the stay is open.
func (l *Ledger) RangeAvailable(r daterange.DateRange) bool {
	for _, day := range r.Days() {
		if !l.DayAvailable(day) {
			return false
		}
	}
	return true
}

// Block marks every covered day as taken by the given booking. A day already
// held by a different booking fails the whole range with ErrDatesUnavailable
// before anything is written, so a failed block never partially applies.
// Re-blocking days already held by the same booking is a no-op per day,
// which makes retries after a conflicting save safe.
func (l *Ledger) Block(r daterange.DateRange, bookingRef string, now time.Time) error {
	if err := r.Validate(); err != nil {
		return err
	}
	days := r.Days()
	for _, day := range days {
		entry, ok := l.Entries[day]
		if ok && !entry.Available && entry.BookingRef != bookingRef {
			l.Record(overbookingPreventedEvent(l.PropertyID, r, now))
			return ErrDatesUnavailable
		}
	}
	if l.Entries == nil {
		l.Entries = make(map[daterange.Day]Entry)
	}
	for _, day := range days {
		entry := l.Entries[day]
		entry.Available = false
		entry.BookingRef = bookingRef
		l.Entries[day] = entry
	}
	l.Record(blockedEvent(l.PropertyID, r, bookingRef, now))
	return nil
}

// Unblock reopens every covered day. Days with no entry are left absent so
// unblocking a never-blocked range is a no-op; existing entries keep their
// price override but lose the booking reference.
func (l *Ledger) Unblock(r daterange.DateRange, now time.Time) {
	released := false
	for _, day := range r.Days() {
		entry, ok := l.Entries[day]
		if !ok {
			continue
		}
		if !entry.Available || entry.BookingRef != "" {
			released = true
		}
		entry.Available = true
		entry.BookingRef = ""
		l.Entries[day] = entry
	}
	if released {
		l.Record(releasedEvent(l.PropertyID, r, now))
	}
}

// SetDayPrice writes a per-day price override without touching availability.
func (l *Ledger) SetDayPrice(d daterange.Day, price money.Money) {
	if l.Entries == nil {
		l.Entries = make(map[daterange.Day]Entry)
	}
	entry, ok := l.Entries[d]
	if !ok {
		entry = Entry{Available: true}
	}
	entry.Price = &price
	l.Entries[d] = entry
}

// DatedEntry pairs a ledger entry with its calendar day for reporting.
type DatedEntry struct {
	Day   daterange.Day
	Entry Entry
}

// BlockedEntries returns every taken day in chronological order.
func (l *Ledger) BlockedEntries() []DatedEntry {
	var out []DatedEntry
	for day, entry := range l.Entries {
		if !entry.Available {
			out = append(out, DatedEntry{Day: day, Entry: entry})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Day < out[j].Day })
	return out
}

// EntriesInMonth returns the entries whose day falls in the given month,
// in chronological order.
func (l *Ledger) EntriesInMonth(year int, month time.Month) []DatedEntry {
	first := daterange.DayOf(time.Date(year, month, 1, 0, 0, 0, 0, time.UTC))
	next := daterange.DayOf(time.Date(year, month, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 1, 0))
	var out []DatedEntry
	for day, entry := range l.Entries {
		if day >= first && day < next {
			out = append(out, DatedEntry{Day: day, Entry: entry})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Day < out[j].Day })
	return out
}

// Cleanup drops entries dated more than retentionDays before now and returns
// how many were removed. Safe to run repeatedly.
func (l *Ledger) Cleanup(now time.Time) int {
	cutoff := daterange.DayOf(now) - retentionDays
	removed := 0
	for day := range l.Entries {
		if day < cutoff {
			delete(l.Entries, day)
			removed++
		}
	}
	if removed > 0 {
		l.Record(cleanedEvent(l.PropertyID, removed, now))
	}
	return removed
}
