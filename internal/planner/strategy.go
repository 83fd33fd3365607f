package planner

// NoLimit marks an Env without a session count bound.
const NoLimit = -1

// Env is what a strategy derives from the input once, before walking the week.
type Env struct {
	Window   TimeRange
	Slots    []TimeRange
	Duration int
	DailyCap int
	// Candidates is the ranked subject queue the strategy assigns from.
	Candidates []Subject
	// Limit bounds the number of sessions produced, or NoLimit.
	Limit int
}

func (e Env) limitReached(st SchedulingState) bool {
	return e.Limit != NoLimit && st.Placed() >= e.Limit
}

func (e Env) dayFull(day Day, st SchedulingState) bool {
	return st.DayMinutes(day.Date)+e.Duration > e.DailyCap
}

func newEnv(p Preferences) Env {
	window := p.Window()
	return Env{
		Window:   window,
		Slots:    GenerateSlots(window, p.SessionMinutes),
		Duration: p.SessionMinutes,
		DailyCap: p.DailyCapMinutes(),
		Limit:    NoLimit,
	}
}

// AllocationStrategy is one way of filling a week. Allocate drives it day by day.
type AllocationStrategy interface {
	Mode() Mode
	// Prepare validates the input and builds the subject queue.
	Prepare(in Input) (Env, error)
	// Purge returns the sessions to delete before placing new ones.
	Purge(in Input, protected IDSet) []string
	// FreeCapacity returns the ranges of day that new sessions may use.
	FreeCapacity(env Env, day Day, st SchedulingState) []TimeRange
	// PlaceSessions fills the free ranges and returns the folded state.
	PlaceSessions(env Env, day Day, free []TimeRange, st SchedulingState) (SchedulingState, []NewSession)
}

// Allocate runs a strategy over the input week and checks the result against the
// scheduling invariants before handing it back.
func Allocate(strategy AllocationStrategy, in Input) (Plan, error) {
	env, err := strategy.Prepare(in)
	if err != nil {
		return Plan{}, err
	}

	monday := in.Monday()
	protected := ProtectedIDs(in.Sessions, in.Invites)
	plan := Plan{
		Mode:      strategy.Mode(),
		WeekStart: monday,
		Protected: protected.Sorted(),
		Deletions: strategy.Purge(in, protected),
	}
	kept := withoutIDs(in.Sessions, plan.Deletions)
	if len(env.Candidates) == 0 {
		plan.Status = StatusNoEligibleSubjects
		return plan, nil
	}

	st := NewSchedulingState(kept)
	today, notBefore := in.today()
	sawCapacity := false
	for _, date := range WeekDates(monday, in.Preferences.PreferredDays) {
		if env.limitReached(st) {
			break
		}
		if date.Before(today) {
			continue
		}
		blocked := BlockingRangesOn(in.Events, date, in.location())
		blocked = append(blocked, st.Busy(date)...)
		day := Day{
			Date:      date,
			Today:     date.Equal(today),
			NotBefore: notBefore,
			Window:    env.Window,
			Blocked:   blocked,
		}
		free := strategy.FreeCapacity(env, day, st)
		if len(free) > 0 && !env.dayFull(day, st) {
			sawCapacity = true
		}
		var placed []NewSession
		st, placed = strategy.PlaceSessions(env, day, free, st)
		plan.Sessions = append(plan.Sessions, placed...)
	}

	switch {
	case len(plan.Sessions) > 0:
		plan.Status = StatusSuccess
	case sawCapacity:
		plan.Status = StatusNoEligibleSubjects
	default:
		plan.Status = StatusNoFreeSlots
	}

	if err := verifyPlan(in, env, kept, plan); err != nil {
		return Plan{}, err
	}
	return plan, nil
}
