package planner

import "time"

// SchedulingState carries the running totals of a run. It is a value: With returns
// an updated copy and leaves the receiver untouched.
type SchedulingState struct {
	dayMinutes     map[string]int
	subjectMinutes map[string]int
	addedMinutes   map[string]int
	busy           map[string][]TimeRange
	placed         int
}

// NewSchedulingState seeds the totals from the sessions that survive the run.
func NewSchedulingState(sessions []Session) SchedulingState {
	st := SchedulingState{
		dayMinutes:     make(map[string]int),
		subjectMinutes: make(map[string]int),
		addedMinutes:   make(map[string]int),
		busy:           make(map[string][]TimeRange),
	}
	for _, session := range sessions {
		key := dateKey(session.Date)
		minutes := session.Range.Minutes()
		st.dayMinutes[key] += minutes
		st.subjectMinutes[session.SubjectID] += minutes
		st.busy[key] = append(st.busy[key], session.Range)
	}
	return st
}

// DayMinutes is the total scheduled on date.
func (s SchedulingState) DayMinutes(date time.Time) int {
	return s.dayMinutes[dateKey(date)]
}

// SubjectMinutes is the all-time total scheduled for a subject.
func (s SchedulingState) SubjectMinutes(subjectID string) int {
	return s.subjectMinutes[subjectID]
}

// AddedMinutes is what this run has added for a subject.
func (s SchedulingState) AddedMinutes(subjectID string) int {
	return s.addedMinutes[subjectID]
}

// Busy returns the occupied ranges on date.
func (s SchedulingState) Busy(date time.Time) []TimeRange {
	return s.busy[dateKey(date)]
}

// Placed is the number of sessions this run produced so far.
func (s SchedulingState) Placed() int {
	return s.placed
}

// With folds a new session into a copy of the state.
func (s SchedulingState) With(session NewSession) SchedulingState {
	key := dateKey(session.Date)
	minutes := session.Minutes()

	next := SchedulingState{
		dayMinutes:     copyCounts(s.dayMinutes),
		subjectMinutes: copyCounts(s.subjectMinutes),
		addedMinutes:   copyCounts(s.addedMinutes),
		busy:           make(map[string][]TimeRange, len(s.busy)+1),
		placed:         s.placed + 1,
	}
	for k, v := range s.busy {
		next.busy[k] = v
	}
	ranges := make([]TimeRange, 0, len(s.busy[key])+1)
	ranges = append(ranges, s.busy[key]...)
	next.busy[key] = append(ranges, session.Range)

	next.dayMinutes[key] += minutes
	next.subjectMinutes[session.SubjectID] += minutes
	next.addedMinutes[session.SubjectID] += minutes
	return next
}

func copyCounts(in map[string]int) map[string]int {
	out := make(map[string]int, len(in)+1)
	for k, v := range in {
		out[k] = v
	}
	return out
}
