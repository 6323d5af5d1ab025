package daterange

import (
	"errors"
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestDayOf(t *testing.T) {
	t.Run("truncates any time of day to the same day", func(t *testing.T) {
		morning := time.Date(2026, time.March, 10, 6, 30, 0, 0, time.UTC)
		evening := time.Date(2026, time.March, 10, 23, 59, 59, 0, time.UTC)
		if DayOf(morning) != DayOf(evening) {
			t.Fatalf("expected same day for %v and %v", morning, evening)
		}
	})

	t.Run("normalizes to UTC before truncating", func(t *testing.T) {
		zone := time.FixedZone("UTC+10", 10*60*60)
		local := time.Date(2026, time.March, 11, 2, 0, 0, 0, zone)
		if got, want := DayOf(local), DayOf(date(2026, time.March, 10)); got != want {
			t.Fatalf("expected %s, got %s", want, got)
		}
	})

	t.Run("round trips through Time and String", func(t *testing.T) {
		day := DayOf(date(2026, time.July, 4))
		if got := day.Time(); !got.Equal(date(2026, time.July, 4)) {
			t.Fatalf("unexpected midnight: %v", got)
		}
		if got := day.String(); got != "2026-07-04" {
			t.Fatalf("unexpected string: %q", got)
		}
	})
}

func TestNew(t *testing.T) {
	tests := []struct {
		name     string
		checkIn  time.Time
		checkOut time.Time
		wantErr  error
	}{
		{
			name:     "one night stay",
			checkIn:  date(2026, time.May, 1),
			checkOut: date(2026, time.May, 2),
		},
		{
			name:     "checkout before checkin",
			checkIn:  date(2026, time.May, 3),
			checkOut: date(2026, time.May, 1),
			wantErr:  ErrInvalidRange,
		},
		{
			name:     "zero check in",
			checkOut: date(2026, time.May, 1),
			wantErr:  ErrInvalidRange,
		},
		{
			name:    "zero check out",
			checkIn: date(2026, time.May, 1),
			wantErr: ErrInvalidRange,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := New(tc.checkIn, tc.checkOut)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected %v, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestDateRange_Days(t *testing.T) {
	t.Run("excludes the checkout day", func(t *testing.T) {
		dr, err := New(date(2026, time.May, 1), date(2026, time.May, 4))
		if err != nil {
			t.Fatalf("New returned error: %v", err)
		}
		days := dr.Days()
		if len(days) != 3 {
			t.Fatalf("expected 3 days, got %d", len(days))
		}
		if days[0] != DayOf(date(2026, time.May, 1)) || days[2] != DayOf(date(2026, time.May, 3)) {
			t.Fatalf("unexpected days: %v", days)
		}
	})

	t.Run("one night covers exactly the check in day", func(t *testing.T) {
		dr, err := New(date(2026, time.May, 1), date(2026, time.May, 2))
		if err != nil {
			t.Fatalf("New returned error: %v", err)
		}
		days := dr.Days()
		if len(days) != 1 || days[0] != DayOf(date(2026, time.May, 1)) {
			t.Fatalf("unexpected days: %v", days)
		}
		if dr.Nights() != 1 {
			t.Fatalf("expected 1 night, got %d", dr.Nights())
		}
	})

	t.Run("crosses month and year boundaries without gaps", func(t *testing.T) {
		dr, err := New(date(2025, time.December, 30), date(2026, time.January, 2))
		if err != nil {
			t.Fatalf("New returned error: %v", err)
		}
		days := dr.Days()
		if len(days) != 3 {
			t.Fatalf("expected 3 days, got %d", len(days))
		}
		for i := 1; i < len(days); i++ {
			if days[i] != days[i-1]+1 {
				t.Fatalf("gap between %s and %s", days[i-1], days[i])
			}
		}
	})

	t.Run("covers the leap day", func(t *testing.T) {
		dr, err := New(date(2028, time.February, 28), date(2028, time.March, 1))
		if err != nil {
			t.Fatalf("New returned error: %v", err)
		}
		days := dr.Days()
		if len(days) != 2 {
			t.Fatalf("expected feb 28 and feb 29, got %v", days)
		}
		if days[1].String() != "2028-02-29" {
			t.Fatalf("expected leap day, got %s", days[1])
		}
	})
}

func TestDateRange_Overlaps(t *testing.T) {
	base, err := New(date(2026, time.June, 10), date(2026, time.June, 15))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	tests := []struct {
		name     string
		checkIn  time.Time
		checkOut time.Time
		want     bool
	}{
		{"identical", date(2026, time.June, 10), date(2026, time.June, 15), true},
		{"contained", date(2026, time.June, 11), date(2026, time.June, 13), true},
		{"partial overlap at end", date(2026, time.June, 14), date(2026, time.June, 20), true},
		{"back to back after checkout", date(2026, time.June, 15), date(2026, time.June, 18), false},
		{"back to back before checkin", date(2026, time.June, 5), date(2026, time.June, 10), false},
		{"disjoint", date(2026, time.July, 1), date(2026, time.July, 5), false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			other, err := New(tc.checkIn, tc.checkOut)
			if err != nil {
				t.Fatalf("New returned error: %v", err)
			}
			if got := base.Overlaps(other); got != tc.want {
				t.Fatalf("Overlaps = %v, want %v", got, tc.want)
			}
			if got := other.Overlaps(base); got != tc.want {
				t.Fatalf("Overlaps not symmetric: %v, want %v", got, tc.want)
			}
		})
	}
}

func TestDateRange_ContainsDay(t *testing.T) {
	dr, err := New(date(2026, time.June, 10), date(2026, time.June, 12))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if !dr.ContainsDay(DayOf(date(2026, time.June, 10))) {
		t.Fatalf("expected check in day to be contained")
	}
	if !dr.ContainsDay(DayOf(date(2026, time.June, 11))) {
		t.Fatalf("expected middle day to be contained")
	}
	if dr.ContainsDay(DayOf(date(2026, time.June, 12))) {
		t.Fatalf("checkout day must not be contained")
	}
}
