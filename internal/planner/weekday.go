package planner

import (
	"sort"
	"time"
)

// Weekday numbers days the way stored preferences do: Sunday=0 ... Saturday=6.
type Weekday int

const (
	Sunday Weekday = iota
	Monday
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
)

// Valid reports whether the weekday number is within 0..6.
func (d Weekday) Valid() bool {
	return d >= Sunday && d <= Saturday
}

func (d Weekday) String() string {
	if !d.Valid() {
		return "Invalid"
	}
	return time.Weekday(d).String()
}

// ToMondayFirstOffset maps a weekday to its offset from the Monday starting the week.
func ToMondayFirstOffset(d Weekday) int {
	return (int(d) + 6) % 7
}

// WeekdayOf returns the weekday of a calendar date.
func WeekdayOf(date time.Time) Weekday {
	return Weekday(date.Weekday())
}

// DateOf truncates t to its calendar date (in t's own location) expressed as UTC midnight.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// MondayOf returns the Monday of the week containing date.
func MondayOf(date time.Time) time.Time {
	day := DateOf(date)
	return day.AddDate(0, 0, -ToMondayFirstOffset(WeekdayOf(day)))
}

// WeekDates returns the dates of the preferred weekdays inside the week starting at monday,
// in chronological order with duplicates removed.
func WeekDates(monday time.Time, preferred []Weekday) []time.Time {
	seen := make(map[int]bool, len(preferred))
	offsets := make([]int, 0, len(preferred))
	for _, day := range preferred {
		if !day.Valid() {
			continue
		}
		offset := ToMondayFirstOffset(day)
		if seen[offset] {
			continue
		}
		seen[offset] = true
		offsets = append(offsets, offset)
	}
	sort.Ints(offsets)
	dates := make([]time.Time, 0, len(offsets))
	for _, offset := range offsets {
		dates = append(dates, monday.AddDate(0, 0, offset))
	}
	return dates
}

func dateKey(date time.Time) string {
	return date.Format("2006-01-02")
}
