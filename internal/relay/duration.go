package relay

import (
	"strconv"
	"time"
)

// FormatSimple renders a duration in its single coarsest non-zero unit,
// e.g. 90s -> "1 minute", 30s -> "30 seconds", 50h -> "2 days".
//
// Deterministic and monotonic: a longer duration never formats to a
// finer unit than a shorter one.
func FormatSimple(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	switch {
	case d >= 24*time.Hour:
		return countUnit(int(d/(24*time.Hour)), "day")
	case d >= time.Hour:
		return countUnit(int(d/time.Hour), "hour")
	case d >= time.Minute:
		return countUnit(int(d/time.Minute), "minute")
	default:
		return countUnit(int(d/time.Second), "second")
	}
}

func countUnit(n int, unit string) string {
	s := strconv.Itoa(n) + " " + unit
	if n != 1 {
		s += "s"
	}
	return s
}
