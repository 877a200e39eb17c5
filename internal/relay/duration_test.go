package relay

import (
	"testing"
	"time"
)

func TestFormatSimple(t *testing.T) {
	cases := []struct {
		in   time.Duration
		want string
	}{
		{0, "0 seconds"},
		{time.Second, "1 second"},
		{30 * time.Second, "30 seconds"},
		{90 * time.Second, "1 minute"},
		{time.Minute, "1 minute"},
		{59 * time.Minute, "59 minutes"},
		{time.Hour, "1 hour"},
		{90 * time.Minute, "1 hour"},
		{23 * time.Hour, "23 hours"},
		{24 * time.Hour, "1 day"},
		{50 * time.Hour, "2 days"},
		{-time.Minute, "0 seconds"},
	}
	for _, tc := range cases {
		if got := FormatSimple(tc.in); got != tc.want {
			t.Fatalf("FormatSimple(%v) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestFormatSimpleDeterministic(t *testing.T) {
	for i := 0; i < 5; i++ {
		if got := FormatSimple(90 * time.Second); got != "1 minute" {
			t.Fatalf("formatting drifted on call %d: %q", i, got)
		}
	}
}

// unitRank orders the units FormatSimple can emit, coarsest last.
func unitRank(t *testing.T, s string) int {
	t.Helper()
	for rank, unit := range []string{"second", "minute", "hour", "day"} {
		if containsUnit(s, unit) {
			return rank
		}
	}
	t.Fatalf("unrecognized unit in %q", s)
	return -1
}

func containsUnit(s, unit string) bool {
	return len(s) >= len(unit) && (s[len(s)-len(unit):] == unit || (len(s) > len(unit) && s[len(s)-len(unit)-1:] == unit+"s"))
}

func TestFormatSimpleMonotonicUnits(t *testing.T) {
	durations := []time.Duration{
		10 * time.Second, 30 * time.Second, 90 * time.Second,
		10 * time.Minute, 90 * time.Minute, 10 * time.Hour,
		30 * time.Hour, 100 * time.Hour,
	}
	prev := -1
	for _, d := range durations {
		rank := unitRank(t, FormatSimple(d))
		if rank < prev {
			t.Fatalf("unit got finer at %v: %q", d, FormatSimple(d))
		}
		prev = rank
	}
}
