package planner

// Regenerate purges the week's unprotected planned sessions and refills the week
// from the fixed slot grid.
type Regenerate struct{}

// Mode implements AllocationStrategy.
func (Regenerate) Mode() Mode {
	return ModeRegenerate
}

// Prepare fails fast when there is nothing to plan so the purge never runs alone.
func (Regenerate) Prepare(in Input) (Env, error) {
	active := ActiveSubjects(in.Subjects)
	if len(active) == 0 {
		return Env{}, ErrNoActiveSubjects
	}
	if err := in.Preferences.Validate(); err != nil {
		return Env{}, err
	}
	env := newEnv(in.Preferences)
	env.Candidates = RankSubjects(active)
	env.Limit = weeklySessionCount(in.Preferences, active)
	return env, nil
}

// Purge implements AllocationStrategy.
func (Regenerate) Purge(in Input, protected IDSet) []string {
	return PurgeCandidates(in.Sessions, in.Monday(), protected)
}

// FreeCapacity keeps the slots that collide with nothing on the day.
func (Regenerate) FreeCapacity(env Env, day Day, _ SchedulingState) []TimeRange {
	free := make([]TimeRange, 0, len(env.Slots))
	for _, slot := range env.Slots {
		if day.Today && slot.Start < day.NotBefore {
			continue
		}
		if Conflicts(slot, day.Blocked) {
			continue
		}
		free = append(free, slot)
	}
	return free
}

// PlaceSessions assigns subjects round-robin to the free slots.
func (Regenerate) PlaceSessions(env Env, day Day, free []TimeRange, st SchedulingState) (SchedulingState, []NewSession) {
	var placed []NewSession
	for _, slot := range free {
		if env.limitReached(st) || env.dayFull(day, st) {
			break
		}
		eligible := EligibleOn(env.Candidates, day.Date, st, env.Duration)
		if len(eligible) == 0 {
			continue
		}
		session := NewSession{
			SubjectID: pickRoundRobin(eligible, st).ID,
			Date:      day.Date,
			Range:     slot,
		}
		st = st.With(session)
		placed = append(placed, session)
	}
	return st, placed
}

// weeklySessionCount is floor(weekly goal / duration). Without a goal the sum of the
// active subjects' targets is used; without any target the week is unbounded.
func weeklySessionCount(p Preferences, active []Subject) int {
	goal := p.WeeklyGoalMinutes
	if goal <= 0 {
		hasTarget := false
		for _, subject := range active {
			if subject.TargetMinutes != nil {
				goal += *subject.TargetMinutes
				hasTarget = true
			}
		}
		if !hasTarget {
			return NoLimit
		}
	}
	if goal < 0 {
		goal = 0
	}
	return goal / p.SessionMinutes
}
