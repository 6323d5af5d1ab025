package daterange

import (
	"errors"
	"time"
)

var ErrInvalidRange = errors.New("daterange: checkout must be after checkin")

const secondsPerDay = 24 * 60 * 60

// Day is a calendar day counted from the Unix epoch, UTC. Keying ledgers by
// Day instead of time.Time makes day-level equality trivial: two timestamps
// on the same calendar day map to the same Day regardless of time-of-day.
type Day int64

// DayOf truncates a timestamp to its UTC calendar day.
func DayOf(t time.Time) Day {
	t = t.UTC()
	midnight := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return Day(midnight.Unix() / secondsPerDay)
}

// Time returns midnight UTC of the day.
func (d Day) Time() time.Time {
	return time.Unix(int64(d)*secondsPerDay, 0).UTC()
}

func (d Day) String() string {
	return d.Time().Format("2006-01-02")
}

// DateRange represents a half-open stay interval [checkIn, checkOut).
// A one-night stay covers exactly one calendar day: the check-in day.
type DateRange struct {
	CheckIn  time.Time
	CheckOut time.Time
}

func New(checkIn, checkOut time.Time) (DateRange, error) {
	dr := DateRange{CheckIn: checkIn.UTC(), CheckOut: checkOut.UTC()}
	if err := dr.Validate(); err != nil {
		return DateRange{}, err
	}
	return dr, nil
}

func (dr DateRange) Validate() error {
	if dr.CheckIn.IsZero() || dr.CheckOut.IsZero() {
		return ErrInvalidRange
	}
	if dr.LastDay() < dr.FirstDay() {
		return ErrInvalidRange
	}
	return nil
}

// FirstDay is the check-in calendar day.
func (dr DateRange) FirstDay() Day {
	return DayOf(dr.CheckIn)
}

// LastDay is the final covered day, the night before checkout.
func (dr DateRange) LastDay() Day {
	return DayOf(dr.CheckOut) - 1
}

// Nights counts the calendar days covered by the stay.
func (dr DateRange) Nights() int {
	n := int(DayOf(dr.CheckOut) - DayOf(dr.CheckIn))
	if n < 0 {
		return 0
	}
	return n
}

// Days enumerates every covered calendar day in order. The checkout day is
// excluded; an inverted or zero-length range yields an empty slice rather
// than an error. Repeated calls produce identical sequences.
func (dr DateRange) Days() []Day {
	first := DayOf(dr.CheckIn)
	limit := DayOf(dr.CheckOut)
	if limit <= first {
		return nil
	}
	days := make([]Day, 0, limit-first)
	for d := first; d < limit; d++ {
		days = append(days, d)
	}
	return days
}

// Overlaps reports whether two stays share at least one covered day.
func (dr DateRange) Overlaps(other DateRange) bool {
	return dr.CheckIn.Before(other.CheckOut) && other.CheckIn.Before(dr.CheckOut)
}

// ContainsDay reports whether the day falls inside the stay.
func (dr DateRange) ContainsDay(d Day) bool {
	return d >= dr.FirstDay() && d < DayOf(dr.CheckOut)
}
