package planner

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func allWeekPrefs(sessionMinutes int, maxHours float64) Preferences {
	return Preferences{
		PreferredDays:  []Weekday{Sunday, Monday, Tuesday, Wednesday, Thursday, Friday, Saturday},
		DailyStart:     MustClock("08:00"),
		DailyEnd:       MustClock("22:00"),
		MaxHoursPerDay: maxHours,
		SessionMinutes: sessionMinutes,
	}
}

func TestAdjustPrioritisesImminentExam(t *testing.T) {
	thursday := day(2025, time.January, 9)
	in := futureInput(
		Subject{ID: "history", Name: "History", ExamDate: timePtr(day(2025, time.January, 26)), Weight: 1, TargetMinutes: intPtr(600), Active: true},
		Subject{ID: "physics", Name: "Physics", ExamDate: timePtr(thursday), Weight: 5, TargetMinutes: intPtr(600), Active: true},
	)
	in.Now = at(testMonday, "07:00")

	env, err := Adjust{}.Prepare(in)
	require.NoError(t, err)
	require.Len(t, env.Candidates, 2)
	assert.Equal(t, "physics", env.Candidates[0].ID)

	st := NewSchedulingState(nil)
	for _, date := range WeekDates(testMonday, in.Preferences.PreferredDays) {
		eligible := EligibleOn(env.Candidates, date, st, env.Duration)
		if date.Before(thursday) {
			require.Len(t, eligible, 2)
			assert.Equal(t, "physics", eligible[0].ID, date.Format(time.DateOnly))
		} else {
			require.Len(t, eligible, 1)
			assert.Equal(t, "history", eligible[0].ID, date.Format(time.DateOnly))
		}
	}

	plan, err := Allocate(Adjust{}, in)
	require.NoError(t, err)
	require.NotEmpty(t, plan.Sessions)
	assert.Equal(t, "physics", plan.Sessions[0].SubjectID)
	assert.Equal(t, testMonday, plan.Sessions[0].Date)
	for _, s := range plan.Sessions {
		if s.SubjectID == "physics" {
			assert.True(t, s.Date.Before(thursday))
		}
	}
	assertPlanInvariants(t, in, plan)
}

func TestAdjustNoEligibleSubjects(t *testing.T) {
	in := futureInput(
		Subject{ID: "math", Name: "Math", TargetMinutes: intPtr(120), Active: true},
		Subject{ID: "art", Name: "Art", Active: true},
	)
	in.Sessions = []Session{
		{ID: "s-1", SubjectID: "math", Date: day(2024, time.December, 30), Range: rangeOf("08:00", "10:00"), Status: SessionDone},
	}

	plan, err := Allocate(Adjust{}, in)
	require.NoError(t, err)
	assert.Equal(t, StatusNoEligibleSubjects, plan.Status)
	assert.Empty(t, plan.Sessions)
	assert.Empty(t, plan.Deletions)
	assert.True(t, plan.Empty())
}

func TestAdjustNeverDeletes(t *testing.T) {
	in := futureInput(Subject{ID: "math", Name: "Math", TargetMinutes: intPtr(600), Active: true})
	in.Sessions = []Session{
		{ID: "s-1", SubjectID: "math", Date: testMonday, Range: rangeOf("08:00", "09:30"), Status: SessionPlanned},
	}

	plan, err := Allocate(Adjust{}, in)
	require.NoError(t, err)
	assert.Empty(t, plan.Deletions)
	assert.Equal(t, StatusSuccess, plan.Status)
	for _, s := range plan.Sessions {
		if s.Date.Equal(testMonday) {
			assert.False(t, s.Range.Overlaps(rangeOf("08:00", "09:30")))
		}
	}
	assertPlanInvariants(t, in, plan)
}

func TestAdjustPacksFreeIntervals(t *testing.T) {
	in := futureInput(Subject{ID: "math", Name: "Math", TargetMinutes: intPtr(180), Active: true})
	in.Events = []Event{{Start: at(testMonday, "08:00"), End: at(testMonday, "08:45"), Blocking: true}}

	plan, err := Allocate(Adjust{}, in)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"2025-01-06 08:45-10:15 math",
		"2025-01-06 10:45-12:15 math",
	}, summarize(plan.Sessions))
}

func TestAdjustRespectsCurrentTime(t *testing.T) {
	in := futureInput(Subject{ID: "math", Name: "Math", TargetMinutes: intPtr(90), Active: true})
	in.Now = at(testMonday, "10:14").Add(20 * time.Second)

	plan, err := Allocate(Adjust{}, in)
	require.NoError(t, err)
	assert.Equal(t, []string{"2025-01-06 10:15-11:45 math"}, summarize(plan.Sessions))
}

func TestAdjustTargetDropsOutMidRun(t *testing.T) {
	in := futureInput(
		Subject{ID: "short", Name: "Short", ExamDate: timePtr(day(2025, time.February, 1)), TargetMinutes: intPtr(120), Active: true},
		Subject{ID: "long", Name: "Long", TargetMinutes: intPtr(600), Active: true},
	)
	in.Preferences.SessionMinutes = 60

	plan, err := Allocate(Adjust{}, in)
	require.NoError(t, err)

	minutes := map[string]int{}
	for _, s := range plan.Sessions {
		minutes[s.SubjectID] += s.Minutes()
	}
	assert.Equal(t, 120, minutes["short"])
	assert.Equal(t, 600, minutes["long"])
	assertPlanInvariants(t, in, plan)
}

func TestAdjustSingleSubjectCeiling(t *testing.T) {
	in := futureInput(
		Subject{ID: "math", Name: "Math", TargetMinutes: intPtr(2000), Active: true},
		Subject{ID: "art", Name: "Art", TargetMinutes: intPtr(2000), Active: true},
	)
	in.Preferences = allWeekPrefs(60, 8)

	plan, err := Allocate(Adjust{SubjectID: "math"}, in)
	require.NoError(t, err)

	total := 0
	for _, s := range plan.Sessions {
		assert.Equal(t, "math", s.SubjectID)
		total += s.Minutes()
	}
	assert.Equal(t, ReinforcementCeilingMinutes, total)

	plan, err = Allocate(Adjust{SubjectID: "math", CeilingMinutes: 120}, in)
	require.NoError(t, err)
	assert.Len(t, plan.Sessions, 2)

	whole, err := Allocate(Adjust{}, in)
	require.NoError(t, err)
	assert.Greater(t, len(whole.Sessions), ReinforcementCeilingMinutes/60)
}

func TestAdjustUnknownSubjectHasNothingToDo(t *testing.T) {
	in := futureInput(Subject{ID: "math", Name: "Math", TargetMinutes: intPtr(600), Active: true})

	plan, err := Allocate(Adjust{SubjectID: "missing"}, in)
	require.NoError(t, err)
	assert.Equal(t, StatusNoEligibleSubjects, plan.Status)
}

func TestAdjustRemainingBelowDuration(t *testing.T) {
	in := futureInput(Subject{ID: "math", Name: "Math", TargetMinutes: intPtr(60), Active: true})

	plan, err := Allocate(Adjust{}, in)
	require.NoError(t, err)
	assert.Empty(t, plan.Sessions)
	assert.Equal(t, StatusNoEligibleSubjects, plan.Status)
}

func TestAdjustSkipsSubjectsPastExam(t *testing.T) {
	in := futureInput(Subject{ID: "math", Name: "Math", ExamDate: timePtr(day(2024, time.December, 20)), TargetMinutes: intPtr(600), Active: true})

	plan, err := Allocate(Adjust{}, in)
	require.NoError(t, err)
	assert.Equal(t, StatusNoEligibleSubjects, plan.Status)
}
