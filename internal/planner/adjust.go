package planner

// Adjust tops a week up with sessions for subjects still short of their target.
// It never deletes anything.
type Adjust struct {
	// SubjectID restricts the top-up to one subject; empty means the whole week.
	SubjectID string
	// CeilingMinutes bounds what a single-subject top-up adds. Zero uses
	// ReinforcementCeilingMinutes; it is ignored for whole-week runs.
	CeilingMinutes int
}

// Mode implements AllocationStrategy.
func (Adjust) Mode() Mode {
	return ModeAdjust
}

// Prepare keeps subjects with a target, minutes left to study and an exam still ahead.
// An empty queue is an informational outcome, not an error.
func (a Adjust) Prepare(in Input) (Env, error) {
	if err := in.Preferences.Validate(); err != nil {
		return Env{}, err
	}
	env := newEnv(in.Preferences)
	st := NewSchedulingState(in.Sessions)
	today, _ := in.today()

	var candidates []Subject
	for _, subject := range ActiveSubjects(in.Subjects) {
		if a.SubjectID != "" && subject.ID != a.SubjectID {
			continue
		}
		remaining, ok := RemainingMinutes(subject, st)
		if !ok || remaining <= 0 {
			continue
		}
		if !ExamOpen(subject, today) {
			continue
		}
		candidates = append(candidates, subject)
	}
	env.Candidates = RankSubjects(candidates)
	return env, nil
}

// Purge implements AllocationStrategy; Adjust keeps everything.
func (Adjust) Purge(Input, IDSet) []string {
	return nil
}

// FreeCapacity returns the day's free intervals.
func (Adjust) FreeCapacity(env Env, day Day, _ SchedulingState) []TimeRange {
	return ResolveFree(day, env.Duration)
}

// PlaceSessions packs sessions into each free interval, re-evaluating the subject
// queue after every placement.
func (a Adjust) PlaceSessions(env Env, day Day, free []TimeRange, st SchedulingState) (SchedulingState, []NewSession) {
	var placed []NewSession
	length := Clock(env.Duration)
	for _, interval := range free {
		for cursor := interval.Start; cursor+length <= interval.End; cursor += length + BreakMinutes {
			if env.dayFull(day, st) {
				return st, placed
			}
			eligible := a.eligible(env, day, st)
			if len(eligible) == 0 {
				return st, placed
			}
			session := NewSession{
				SubjectID: pickRoundRobin(eligible, st).ID,
				Date:      day.Date,
				Range:     TimeRange{Start: cursor, End: cursor + length},
			}
			st = st.With(session)
			placed = append(placed, session)
		}
	}
	return st, placed
}

func (a Adjust) eligible(env Env, day Day, st SchedulingState) []Subject {
	eligible := EligibleOn(env.Candidates, day.Date, st, env.Duration)
	if a.SubjectID == "" {
		return eligible
	}
	ceiling := a.CeilingMinutes
	if ceiling <= 0 {
		ceiling = ReinforcementCeilingMinutes
	}
	within := eligible[:0]
	for _, subject := range eligible {
		if st.AddedMinutes(subject.ID)+env.Duration <= ceiling {
			within = append(within, subject)
		}
	}
	return within
}
