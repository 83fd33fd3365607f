package planner

import (
	"sort"
	"time"
)

// Day is the per-date view the strategies work on.
type Day struct {
	Date  time.Time
	Today bool
	// NotBefore is the earliest start allowed when Today is set.
	NotBefore Clock
	Window    TimeRange
	// Blocked holds blocking events and existing sessions on Date.
	Blocked []TimeRange
}

// EventRangeOn projects a blocking event onto the local calendar day of date.
func EventRangeOn(event Event, date time.Time, loc *time.Location) (TimeRange, bool) {
	if !event.Blocking || !event.End.After(event.Start) {
		return TimeRange{}, false
	}
	if loc == nil {
		loc = time.UTC
	}
	dayStart := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, loc)
	dayEnd := dayStart.AddDate(0, 0, 1)
	if !event.End.After(dayStart) || !event.Start.Before(dayEnd) {
		return TimeRange{}, false
	}

	start := event.Start
	if start.Before(dayStart) {
		start = dayStart
	}
	end := event.End
	if end.After(dayEnd) {
		end = dayEnd
	}

	from := Clock(start.Sub(dayStart) / time.Minute)
	span := end.Sub(dayStart)
	to := Clock(span / time.Minute)
	if span%time.Minute != 0 {
		to++
	}
	if to > MinutesPerDay {
		to = MinutesPerDay
	}
	return TimeRange{Start: from, End: to}, true
}

// BlockingRangesOn returns the ranges blocking events occupy on date.
func BlockingRangesOn(events []Event, date time.Time, loc *time.Location) []TimeRange {
	var ranges []TimeRange
	for _, event := range events {
		if r, ok := EventRangeOn(event, date, loc); ok {
			ranges = append(ranges, r)
		}
	}
	return ranges
}

// SessionRangesOn returns the ranges of sessions dated on date, whatever their status.
func SessionRangesOn(sessions []Session, date time.Time) []TimeRange {
	var ranges []TimeRange
	for _, session := range sessions {
		if session.Date.Equal(date) {
			ranges = append(ranges, session.Range)
		}
	}
	return ranges
}

// Conflicts is the Regenerate availability test.
func Conflicts(slot TimeRange, busy []TimeRange) bool {
	for _, b := range busy {
		if slot.Overlaps(b) {
			return true
		}
	}
	return false
}

// FreeIntervals returns the sorted gaps between blocked ranges inside the window,
// dropping gaps shorter than minLength.
func FreeIntervals(window TimeRange, blocked []TimeRange, minLength int) []TimeRange {
	if window.Minutes() == 0 {
		return nil
	}
	sorted := make([]TimeRange, len(blocked))
	copy(sorted, blocked)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Start == sorted[j].Start {
			return sorted[i].End < sorted[j].End
		}
		return sorted[i].Start < sorted[j].Start
	})

	var gaps []TimeRange
	cursor := window.Start
	for _, b := range sorted {
		if cursor >= window.End || b.Start >= window.End {
			break
		}
		if b.End <= cursor {
			continue
		}
		if b.Start > cursor {
			gaps = append(gaps, TimeRange{Start: cursor, End: b.Start})
		}
		cursor = b.End
	}
	if cursor < window.End {
		gaps = append(gaps, TimeRange{Start: cursor, End: window.End})
	}

	free := gaps[:0]
	for _, gap := range gaps {
		if gap.Minutes() >= minLength {
			free = append(free, gap)
		}
	}
	return free
}

// ResolveFree is the Adjust availability view of a day: blocked ranges plus lunch and,
// for today, the elapsed part of the day.
func ResolveFree(day Day, duration int) []TimeRange {
	blocked := make([]TimeRange, 0, len(day.Blocked)+2)
	blocked = append(blocked, day.Blocked...)
	blocked = append(blocked, LunchWindow())
	if day.Today && day.NotBefore > 0 {
		blocked = append(blocked, TimeRange{Start: 0, End: day.NotBefore})
	}
	return FreeIntervals(day.Window, blocked, duration)
}
