package planner

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Clock is a local time of day expressed in minutes since midnight.
type Clock int

const (
	// MinutesPerDay is the exclusive upper bound of a Clock value.
	MinutesPerDay = 24 * 60
	// BreakMinutes separates two consecutive sessions.
	BreakMinutes = 30
	// ReinforcementCeilingMinutes caps what a single-subject top-up may add.
	ReinforcementCeilingMinutes = 6 * 60

	LunchStart     Clock = 12*60 + 30
	LunchEnd       Clock = 14 * 60
	EarlyMorningAt Clock = 9 * 60
	LateEveningAt  Clock = 21 * 60
)

// ParseClock accepts "HH:MM" or "HH:MM:SS" (as returned by postgres TIME columns).
func ParseClock(raw string) (Clock, error) {
	raw = strings.TrimSpace(raw)
	parts := strings.Split(raw, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, fmt.Errorf("invalid time of day %q", raw)
	}
	hours, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("invalid hour in %q", raw)
	}
	minutes, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("invalid minute in %q", raw)
	}
	if hours < 0 || hours > 24 || minutes < 0 || minutes > 59 || (hours == 24 && minutes != 0) {
		return 0, fmt.Errorf("time of day %q out of range", raw)
	}
	return Clock(hours*60 + minutes), nil
}

// MustClock is ParseClock for literals.
func MustClock(raw string) Clock {
	c, err := ParseClock(raw)
	if err != nil {
		panic(err)
	}
	return c
}

func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", int(c)/60, int(c)%60)
}

// TimeRange is a closed-open interval [Start, End) within one day.
type TimeRange struct {
	Start Clock
	End   Clock
}

// Minutes returns the length of the range.
func (r TimeRange) Minutes() int {
	if r.End <= r.Start {
		return 0
	}
	return int(r.End - r.Start)
}

// Overlaps reports whether two ranges intersect.
func (r TimeRange) Overlaps(other TimeRange) bool {
	return r.Start < other.End && other.Start < r.End
}

// Contains reports whether other lies entirely inside r.
func (r TimeRange) Contains(other TimeRange) bool {
	return other.Start >= r.Start && other.End <= r.End
}

func (r TimeRange) String() string {
	return r.Start.String() + "-" + r.End.String()
}

// LunchWindow is the daily exclusion no session may touch.
func LunchWindow() TimeRange {
	return TimeRange{Start: LunchStart, End: LunchEnd}
}

// clockCeil converts an instant into a Clock, rounding partial minutes up.
func clockCeil(t time.Time) Clock {
	c := Clock(t.Hour()*60 + t.Minute())
	if t.Second() > 0 || t.Nanosecond() > 0 {
		c++
	}
	return c
}
