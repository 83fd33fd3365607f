package planner

import (
	"sort"
	"time"
)

// ActiveSubjects drops archived subjects.
func ActiveSubjects(subjects []Subject) []Subject {
	active := make([]Subject, 0, len(subjects))
	for _, subject := range subjects {
		if subject.Active {
			active = append(active, subject)
		}
	}
	return active
}

// RankSubjects orders subjects by nearest exam first (no exam last), then by weight.
func RankSubjects(subjects []Subject) []Subject {
	ranked := make([]Subject, len(subjects))
	copy(ranked, subjects)
	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		switch {
		case a.ExamDate != nil && b.ExamDate == nil:
			return true
		case a.ExamDate == nil && b.ExamDate != nil:
			return false
		case a.ExamDate != nil && b.ExamDate != nil && !DateOf(*a.ExamDate).Equal(DateOf(*b.ExamDate)):
			return DateOf(*a.ExamDate).Before(DateOf(*b.ExamDate))
		}
		if a.Weight != b.Weight {
			return a.Weight > b.Weight
		}
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return a.ID < b.ID
	})
	return ranked
}

// ExamOpen reports whether the subject may still be studied on date.
func ExamOpen(subject Subject, date time.Time) bool {
	return subject.ExamDate == nil || DateOf(*subject.ExamDate).After(date)
}

// RemainingMinutes is target minus all-time minutes; ok is false when the subject has no target.
func RemainingMinutes(subject Subject, st SchedulingState) (remaining int, ok bool) {
	if subject.TargetMinutes == nil {
		return 0, false
	}
	return *subject.TargetMinutes - st.SubjectMinutes(subject.ID), true
}

// EligibleOn filters ranked subjects down to those that can take one more session
// of duration on date. The ranked order is preserved.
func EligibleOn(ranked []Subject, date time.Time, st SchedulingState, duration int) []Subject {
	eligible := make([]Subject, 0, len(ranked))
	for _, subject := range ranked {
		if !ExamOpen(subject, date) {
			continue
		}
		if remaining, ok := RemainingMinutes(subject, st); ok && remaining < duration {
			continue
		}
		eligible = append(eligible, subject)
	}
	return eligible
}

// pickRoundRobin spreads consecutive placements across the eligible queue.
func pickRoundRobin(eligible []Subject, st SchedulingState) Subject {
	return eligible[st.Placed()%len(eligible)]
}
