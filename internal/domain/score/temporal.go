package score

import "time"

// Temporal decay parameters: full score inside the grace window, then a linear
// decay per day down to a floor (items can surface long after they were lost).
const (
	GraceDays     = 14
	DecayPerDay   = 2
	TemporalFloor = 30
)

// DaysBetween returns the absolute gap between two instants in whole days.
func DaysBetween(lost, found time.Time) int {
	d := found.Sub(lost)
	if d < 0 {
		d = -d
	}
	return int(d / (24 * time.Hour))
}

// TemporalProximity scores a day gap. Non-increasing in days, never below TemporalFloor.
func TemporalProximity(days int) int {
	if days < 0 {
		days = -days
	}
	if days <= GraceDays {
		return 100
	}
	return max(TemporalFloor, 100-DecayPerDay*days)
}
