package booking

import (
	"math"
	"time"
)

// DaysUntilCheckIn is the refund clock: the number of days remaining before
// check-in, rounded up. A check-in later today counts as 0, tomorrow as 1,
// and a check-in already in the past goes negative.
func DaysUntilCheckIn(checkIn, now time.Time) int {
	diff := checkIn.Sub(now)
	return int(math.Ceil(diff.Hours() / 24))
}

// RefundPercent maps days-until-check-in onto the refund tiers. Thresholds
// are exclusive and evaluated top-down, first match wins: more than a week
// out refunds in full, exactly 7 days falls into the 50% tier.
func RefundPercent(daysUntilCheckIn int) int {
	switch {
	case daysUntilCheckIn > 7:
		return 100
	case daysUntilCheckIn > 3:
		return 50
	case daysUntilCheckIn > 1:
		return 25
	default:
		return 0
	}
}
