package planner

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 2025-01-06 is a Monday.
var testMonday = day(2025, time.January, 6)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func at(date time.Time, clock string) time.Time {
	return date.Add(time.Duration(MustClock(clock)) * time.Minute)
}

func intPtr(v int) *int {
	return &v
}

func timePtr(t time.Time) *time.Time {
	return &t
}

func weekdayPrefs() Preferences {
	return Preferences{
		PreferredDays:  []Weekday{Monday, Tuesday, Wednesday, Thursday, Friday},
		DailyStart:     MustClock("08:00"),
		DailyEnd:       MustClock("22:00"),
		MaxHoursPerDay: 4,
		SessionMinutes: 90,
	}
}

func rangeOf(start, end string) TimeRange {
	return TimeRange{Start: MustClock(start), End: MustClock(end)}
}

func futureInput(subjects ...Subject) Input {
	return Input{
		WeekStart:   testMonday,
		Now:         at(day(2025, time.January, 1), "10:00"),
		Subjects:    subjects,
		Preferences: weekdayPrefs(),
	}
}

// assertPlanInvariants checks the week-level properties on existing ∪ produced sessions.
func assertPlanInvariants(t *testing.T, in Input, plan Plan) {
	t.Helper()
	kept := withoutIDs(in.Sessions, plan.Deletions)
	dailyCap := in.Preferences.DailyCapMinutes()

	byDate := make(map[string][]TimeRange)
	dayTotals := make(map[string]int)
	subjectTotals := make(map[string]int)
	for _, s := range kept {
		key := dateKey(s.Date)
		byDate[key] = append(byDate[key], s.Range)
		dayTotals[key] += s.Range.Minutes()
		subjectTotals[s.SubjectID] += s.Range.Minutes()
	}
	subjects := make(map[string]Subject)
	for _, s := range in.Subjects {
		subjects[s.ID] = s
	}
	for _, s := range plan.Sessions {
		key := dateKey(s.Date)
		for _, other := range byDate[key] {
			assert.False(t, s.Range.Overlaps(other), "session %s on %s overlaps %s", s.Range, key, other)
		}
		byDate[key] = append(byDate[key], s.Range)
		dayTotals[key] += s.Minutes()
		subjectTotals[s.SubjectID] += s.Minutes()
		assert.False(t, s.Range.Overlaps(LunchWindow()), "session %s touches lunch", s.Range)
		subject := subjects[s.SubjectID]
		if subject.ExamDate != nil {
			assert.True(t, s.Date.Before(DateOf(*subject.ExamDate)), "session on %s not before exam", key)
		}
	}
	for _, s := range plan.Sessions {
		assert.LessOrEqual(t, dayTotals[dateKey(s.Date)], dailyCap)
		if target := subjects[s.SubjectID].TargetMinutes; target != nil {
			assert.LessOrEqual(t, subjectTotals[s.SubjectID], *target)
		}
	}
}

func summarize(sessions []NewSession) []string {
	out := make([]string, 0, len(sessions))
	for _, s := range sessions {
		out = append(out, fmt.Sprintf("%s %s %s", s.Date.Format(time.DateOnly), s.Range, s.SubjectID))
	}
	return out
}

func apply(sessions []Session, plan Plan) []Session {
	next := withoutIDs(sessions, plan.Deletions)
	for i, s := range plan.Sessions {
		next = append(next, Session{
			ID:        fmt.Sprintf("gen-%d", i),
			SubjectID: s.SubjectID,
			Date:      s.Date,
			Range:     s.Range,
			Status:    SessionPlanned,
		})
	}
	return next
}

func TestPreferencesValidate(t *testing.T) {
	valid := weekdayPrefs()
	require.NoError(t, valid.Validate())

	cases := map[string]func(p *Preferences){
		"zero duration": func(p *Preferences) { p.SessionMinutes = 0 },
		"zero cap":      func(p *Preferences) { p.MaxHoursPerDay = 0 },
		"inverted":      func(p *Preferences) { p.DailyStart, p.DailyEnd = p.DailyEnd, p.DailyStart },
		"no days":       func(p *Preferences) { p.PreferredDays = nil },
		"invalid day":   func(p *Preferences) { p.PreferredDays = []Weekday{7} },
		"past midnight": func(p *Preferences) { p.DailyEnd = MinutesPerDay + 1 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			p := weekdayPrefs()
			mutate(&p)
			assert.ErrorIs(t, p.Validate(), ErrInvalidPreferences)
		})
	}
}

func TestPreferencesWindowClamps(t *testing.T) {
	p := Preferences{DailyStart: MustClock("07:00"), DailyEnd: MustClock("23:00"), AvoidEarlyMorning: true, AvoidLateEvening: true}
	assert.Equal(t, rangeOf("09:00", "21:00"), p.Window())

	p.AvoidEarlyMorning, p.AvoidLateEvening = false, false
	assert.Equal(t, rangeOf("07:00", "23:00"), p.Window())

	p = Preferences{DailyStart: MustClock("10:00"), DailyEnd: MustClock("20:00"), AvoidEarlyMorning: true, AvoidLateEvening: true}
	assert.Equal(t, rangeOf("10:00", "20:00"), p.Window())
}

func TestParseClock(t *testing.T) {
	c, err := ParseClock("09:30")
	require.NoError(t, err)
	assert.Equal(t, Clock(570), c)

	c, err = ParseClock("14:00:00")
	require.NoError(t, err)
	assert.Equal(t, LunchEnd, c)
	assert.Equal(t, "14:00", c.String())

	c, err = ParseClock("24:00")
	require.NoError(t, err)
	assert.Equal(t, Clock(MinutesPerDay), c)

	for _, raw := range []string{"", "9", "25:00", "24:30", "10:75", "ab:cd"} {
		_, err := ParseClock(raw)
		assert.Error(t, err, raw)
	}
}
