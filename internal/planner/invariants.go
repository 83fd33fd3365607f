package planner

import (
	"fmt"
	"time"
)

// verifyPlan re-checks every produced session against the surviving sessions,
// the blocking events and the caps. A failure here is a strategy bug.
func verifyPlan(in Input, env Env, kept []Session, plan Plan) error {
	if len(plan.Sessions) == 0 {
		return nil
	}
	today, notBefore := in.today()
	lunch := LunchWindow()
	subjects := make(map[string]Subject, len(in.Subjects))
	for _, subject := range in.Subjects {
		subjects[subject.ID] = subject
	}

	occupied := make(map[string][]TimeRange)
	dayTotals := make(map[string]int)
	subjectTotals := make(map[string]int)
	for _, session := range kept {
		key := dateKey(session.Date)
		dayTotals[key] += session.Range.Minutes()
		subjectTotals[session.SubjectID] += session.Range.Minutes()
	}
	seenDates := make(map[string]bool)

	for _, session := range plan.Sessions {
		key := dateKey(session.Date)
		if !seenDates[key] {
			seenDates[key] = true
			occupied[key] = append(BlockingRangesOn(in.Events, session.Date, in.location()), SessionRangesOn(kept, session.Date)...)
		}
		subject, ok := subjects[session.SubjectID]
		switch {
		case !ok || !subject.Active:
			return violation(session, "subject is not active")
		case !env.Window.Contains(session.Range):
			return violation(session, "outside the daily window")
		case session.Range.Overlaps(lunch):
			return violation(session, "overlaps the lunch break")
		case session.Date.Before(today):
			return violation(session, "dated in the past")
		case session.Date.Equal(today) && session.Range.Start < notBefore:
			return violation(session, "starts before the current time")
		case !ExamOpen(subject, session.Date):
			return violation(session, "on or after the exam date")
		case Conflicts(session.Range, occupied[key]):
			return violation(session, "overlaps another commitment")
		}
		occupied[key] = append(occupied[key], session.Range)
		dayTotals[key] += session.Minutes()
		subjectTotals[session.SubjectID] += session.Minutes()

		if dayTotals[key] > env.DailyCap {
			return violation(session, "exceeds the daily cap")
		}
		if subject.TargetMinutes != nil && subjectTotals[subject.ID] > *subject.TargetMinutes {
			return violation(session, "exceeds the subject target")
		}
	}
	return nil
}

func violation(session NewSession, reason string) error {
	return fmt.Errorf("%w: %s session on %s %s %s", ErrInvariantViolation, session.SubjectID, session.Date.Format(time.DateOnly), session.Range, reason)
}
