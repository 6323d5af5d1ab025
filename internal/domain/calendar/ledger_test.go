package calendar

import (
	"errors"
	"testing"
	"time"

	"staybook/internal/domain/shared/daterange"
	"staybook/internal/domain/shared/money"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func mustRange(t *testing.T, checkIn, checkOut time.Time) daterange.DateRange {
	t.Helper()
	dr, err := daterange.New(checkIn, checkOut)
	if err != nil {
		t.Fatalf("daterange.New returned error: %v", err)
	}
	return dr
}

func TestLedger_Block(t *testing.T) {
	now := date(2026, time.April, 1)

	t.Run("blocks every covered day", func(t *testing.T) {
		l := NewLedger("prop-1")
		dr := mustRange(t, date(2026, time.May, 1), date(2026, time.May, 4))
		if err := l.Block(dr, "bkg-1", now); err != nil {
			t.Fatalf("Block returned error: %v", err)
		}
		for _, day := range dr.Days() {
			if l.DayAvailable(day) {
				t.Fatalf("day %s still available", day)
			}
			if ref := l.Entries[day].BookingRef; ref != "bkg-1" {
				t.Fatalf("day %s has ref %q", day, ref)
			}
		}
		if l.DayAvailable(daterange.DayOf(date(2026, time.May, 4))) != true {
			t.Fatalf("checkout day must stay available")
		}
	})

	t.Run("rejects a range held by another booking without partial writes", func(t *testing.T) {
		l := NewLedger("prop-1")
		first := mustRange(t, date(2026, time.May, 3), date(2026, time.May, 6))
		if err := l.Block(first, "bkg-1", now); err != nil {
			t.Fatalf("Block returned error: %v", err)
		}
		overlap := mustRange(t, date(2026, time.May, 1), date(2026, time.May, 4))
		if err := l.Block(overlap, "bkg-2", now); !errors.Is(err, ErrDatesUnavailable) {
			t.Fatalf("expected ErrDatesUnavailable, got %v", err)
		}
		// The non-conflicting leading days must not have been taken.
		if !l.DayAvailable(daterange.DayOf(date(2026, time.May, 1))) {
			t.Fatalf("failed block partially applied")
		}
		if !l.DayAvailable(daterange.DayOf(date(2026, time.May, 2))) {
			t.Fatalf("failed block partially applied")
		}
	})

	t.Run("re-blocking by the same booking is allowed", func(t *testing.T) {
		l := NewLedger("prop-1")
		dr := mustRange(t, date(2026, time.May, 1), date(2026, time.May, 3))
		if err := l.Block(dr, "bkg-1", now); err != nil {
			t.Fatalf("first Block returned error: %v", err)
		}
		if err := l.Block(dr, "bkg-1", now); err != nil {
			t.Fatalf("retry Block returned error: %v", err)
		}
	})

	t.Run("back to back stays do not conflict", func(t *testing.T) {
		l := NewLedger("prop-1")
		first := mustRange(t, date(2026, time.May, 1), date(2026, time.May, 4))
		second := mustRange(t, date(2026, time.May, 4), date(2026, time.May, 7))
		if err := l.Block(first, "bkg-1", now); err != nil {
			t.Fatalf("Block returned error: %v", err)
		}
		if err := l.Block(second, "bkg-2", now); err != nil {
			t.Fatalf("back to back Block returned error: %v", err)
		}
	})

	t.Run("conflict records an overbooking prevented event", func(t *testing.T) {
		l := NewLedger("prop-1")
		dr := mustRange(t, date(2026, time.May, 1), date(2026, time.May, 3))
		if err := l.Block(dr, "bkg-1", now); err != nil {
			t.Fatalf("Block returned error: %v", err)
		}
		l.ClearEvents()
		if err := l.Block(dr, "bkg-2", now); !errors.Is(err, ErrDatesUnavailable) {
			t.Fatalf("expected ErrDatesUnavailable, got %v", err)
		}
		evs := l.PendingEvents()
		if len(evs) != 1 {
			t.Fatalf("expected 1 event, got %d", len(evs))
		}
		if evs[0].EventName() != "calendar.overbooking_prevented" {
			t.Fatalf("unexpected event %q", evs[0].EventName())
		}
	})
}

func TestLedger_Unblock(t *testing.T) {
	now := date(2026, time.April, 1)

	t.Run("reopens blocked days and keeps price overrides", func(t *testing.T) {
		l := NewLedger("prop-1")
		day := daterange.DayOf(date(2026, time.May, 1))
		l.SetDayPrice(day, money.Must(12000, "USD"))
		dr := mustRange(t, date(2026, time.May, 1), date(2026, time.May, 2))
		if err := l.Block(dr, "bkg-1", now); err != nil {
			t.Fatalf("Block returned error: %v", err)
		}
		l.Unblock(dr, now)
		if !l.DayAvailable(day) {
			t.Fatalf("day still blocked after Unblock")
		}
		entry := l.Entries[day]
		if entry.BookingRef != "" {
			t.Fatalf("booking ref not cleared: %q", entry.BookingRef)
		}
		if entry.Price == nil || entry.Price.Amount != 12000 {
			t.Fatalf("price override lost: %+v", entry.Price)
		}
	})

	t.Run("never blocked range stays absent", func(t *testing.T) {
		l := NewLedger("prop-1")
		dr := mustRange(t, date(2026, time.May, 1), date(2026, time.May, 5))
		l.Unblock(dr, now)
		if len(l.Entries) != 0 {
			t.Fatalf("Unblock created entries: %d", len(l.Entries))
		}
		if len(l.PendingEvents()) != 0 {
			t.Fatalf("Unblock of untouched range recorded events")
		}
	})

	t.Run("is idempotent", func(t *testing.T) {
		l := NewLedger("prop-1")
		dr := mustRange(t, date(2026, time.May, 1), date(2026, time.May, 3))
		if err := l.Block(dr, "bkg-1", now); err != nil {
			t.Fatalf("Block returned error: %v", err)
		}
		l.Unblock(dr, now)
		l.ClearEvents()
		l.Unblock(dr, now)
		if len(l.PendingEvents()) != 0 {
			t.Fatalf("second Unblock recorded events")
		}
		if !l.RangeAvailable(dr) {
			t.Fatalf("range not available after repeated Unblock")
		}
	})
}

func TestLedger_RangeAvailable(t *testing.T) {
	now := date(2026, time.April, 1)
	l := NewLedger("prop-1")
	blocked := mustRange(t, date(2026, time.May, 3), date(2026, time.May, 4))
	if err := l.Block(blocked, "bkg-1", now); err != nil {
		t.Fatalf("Block returned error: %v", err)
	}

	tests := []struct {
		name     string
		checkIn  time.Time
		checkOut time.Time
		want     bool
	}{
		{"fully open", date(2026, time.May, 10), date(2026, time.May, 12), true},
		{"contains the blocked day", date(2026, time.May, 1), date(2026, time.May, 5), false},
		{"checkout on the blocked day", date(2026, time.May, 1), date(2026, time.May, 3), true},
		{"checkin on the freed checkout day", date(2026, time.May, 4), date(2026, time.May, 6), true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			dr := mustRange(t, tc.checkIn, tc.checkOut)
			if got := l.RangeAvailable(dr); got != tc.want {
				t.Fatalf("RangeAvailable = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestLedger_EntriesInMonth(t *testing.T) {
	now := date(2026, time.April, 1)
	l := NewLedger("prop-1")
	spanningMonths := mustRange(t, date(2026, time.May, 30), date(2026, time.June, 2))
	if err := l.Block(spanningMonths, "bkg-1", now); err != nil {
		t.Fatalf("Block returned error: %v", err)
	}

	may := l.EntriesInMonth(2026, time.May)
	if len(may) != 2 {
		t.Fatalf("expected 2 May entries, got %d", len(may))
	}
	june := l.EntriesInMonth(2026, time.June)
	if len(june) != 1 {
		t.Fatalf("expected 1 June entry, got %d", len(june))
	}
	if june[0].Day.String() != "2026-06-01" {
		t.Fatalf("unexpected June day: %s", june[0].Day)
	}
	if len(l.EntriesInMonth(2026, time.July)) != 0 {
		t.Fatalf("July should have no entries")
	}
}

func TestLedger_BlockedEntries(t *testing.T) {
	now := date(2026, time.April, 1)
	l := NewLedger("prop-1")
	l.SetDayPrice(daterange.DayOf(date(2026, time.May, 20)), money.Must(9000, "USD"))
	second := mustRange(t, date(2026, time.May, 10), date(2026, time.May, 12))
	first := mustRange(t, date(2026, time.May, 1), date(2026, time.May, 3))
	if err := l.Block(second, "bkg-2", now); err != nil {
		t.Fatalf("Block returned error: %v", err)
	}
	if err := l.Block(first, "bkg-1", now); err != nil {
		t.Fatalf("Block returned error: %v", err)
	}

	entries := l.BlockedEntries()
	if len(entries) != 4 {
		t.Fatalf("expected 4 blocked days, got %d", len(entries))
	}
	for i := 1; i < len(entries); i++ {
		if entries[i].Day <= entries[i-1].Day {
			t.Fatalf("entries out of order: %s before %s", entries[i-1].Day, entries[i].Day)
		}
	}
	if entries[0].Entry.BookingRef != "bkg-1" {
		t.Fatalf("expected earliest day to belong to bkg-1, got %q", entries[0].Entry.BookingRef)
	}
}

func TestLedger_Cleanup(t *testing.T) {
	now := date(2026, time.August, 28)

	t.Run("removes entries past the retention window", func(t *testing.T) {
		l := NewLedger("prop-1")
		tooOld := daterange.DayOf(now) - 366
		keepOld := daterange.DayOf(now) - 365
		recent := daterange.DayOf(now) - 364
		l.SetDayPrice(tooOld, money.Must(100, "USD"))
		l.SetDayPrice(keepOld, money.Must(100, "USD"))
		l.SetDayPrice(recent, money.Must(100, "USD"))

		removed := l.Cleanup(now)
		if removed != 1 {
			t.Fatalf("expected 1 removed, got %d", removed)
		}
		if _, ok := l.Entries[tooOld]; ok {
			t.Fatalf("entry past retention still present")
		}
		if _, ok := l.Entries[keepOld]; !ok {
			t.Fatalf("entry at retention boundary was removed")
		}
		if _, ok := l.Entries[recent]; !ok {
			t.Fatalf("recent entry was removed")
		}
	})

	t.Run("repeat run removes nothing and stays silent", func(t *testing.T) {
		l := NewLedger("prop-1")
		l.SetDayPrice(daterange.DayOf(now)-400, money.Must(100, "USD"))
		if removed := l.Cleanup(now); removed != 1 {
			t.Fatalf("expected 1 removed, got %d", removed)
		}
		l.ClearEvents()
		if removed := l.Cleanup(now); removed != 0 {
			t.Fatalf("expected 0 removed on repeat, got %d", removed)
		}
		if len(l.PendingEvents()) != 0 {
			t.Fatalf("repeat cleanup recorded events")
		}
	})
}
