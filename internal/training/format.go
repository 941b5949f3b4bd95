package training

import (
	"fmt"
	"strconv"
)

// FormatDuration renders minutes as "1h 30m", "2h" or "45m".
func FormatDuration(minutes int) string {
	if minutes < 0 {
		minutes = 0
	}
	h, m := minutes/60, minutes%60
	switch {
	case h > 0 && m > 0:
		return fmt.Sprintf("%dh %dm", h, m)
	case h > 0:
		return fmt.Sprintf("%dh", h)
	default:
		return fmt.Sprintf("%dm", m)
	}
}

// FormatDistance renders meters as "1.5km" from one kilometer up and as
// whole meters below.
func FormatDistance(meters float64) string {
	if meters >= 1000 {
		return strconv.FormatFloat(meters/1000, 'f', 1, 64) + "km"
	}
	return strconv.FormatFloat(meters, 'f', 0, 64) + "m"
}

// FormatGoalTime renders a goal finish time as "5h 30m", or "Not set".
func FormatGoalTime(minutes *int) string {
	if minutes == nil || *minutes <= 0 {
		return "Not set"
	}
	return fmt.Sprintf("%dh %dm", *minutes/60, *minutes%60)
}
