// Package planner computes revision sessions for one user's week.
//
// Everything here is a pure function over an in-memory snapshot: callers load
// subjects, events, sessions, invites and preferences, call Allocate with a
// strategy, and persist the resulting Plan themselves.
package planner

import (
	"errors"
	"math"
	"time"
)

var (
	// ErrNoActiveSubjects is returned by Regenerate before anything is purged.
	ErrNoActiveSubjects = errors.New("no active subjects to plan")
	// ErrInvalidPreferences reports an unusable preference snapshot.
	ErrInvalidPreferences = errors.New("invalid planning preferences")
	// ErrInvariantViolation means a strategy produced a plan that breaks a scheduling invariant.
	ErrInvariantViolation = errors.New("planning invariant violated")
)

// SessionStatus mirrors the revision session lifecycle.
type SessionStatus string

const (
	SessionPlanned SessionStatus = "planned"
	SessionDone    SessionStatus = "done"
	SessionSkipped SessionStatus = "skipped"
)

// Subject is the scheduler's view of a study subject.
type Subject struct {
	ID            string
	Name          string
	ExamDate      *time.Time
	Weight        float64
	TargetMinutes *int
	Active        bool
}

// Session is an existing revision session of any status.
type Session struct {
	ID        string
	SubjectID string
	Date      time.Time
	Range     TimeRange
	Status    SessionStatus
}

// Event is a fixed calendar commitment.
type Event struct {
	Start    time.Time
	End      time.Time
	Blocking bool
}

// Invite links a collaborator to a session. Its presence alone protects the session.
type Invite struct {
	SessionID string
	Accepted  bool
}

// NewSession is a session produced by a run; it is always created as planned.
type NewSession struct {
	SubjectID string
	Date      time.Time
	Range     TimeRange
}

// Minutes returns the session length.
func (s NewSession) Minutes() int {
	return s.Range.Minutes()
}

// Preferences is the planning window a user configured.
type Preferences struct {
	PreferredDays     []Weekday
	DailyStart        Clock
	DailyEnd          Clock
	MaxHoursPerDay    float64
	SessionMinutes    int
	AvoidEarlyMorning bool
	AvoidLateEvening  bool
	// WeeklyGoalMinutes bounds Regenerate's session count; zero derives it from subject targets.
	WeeklyGoalMinutes int
}

// Validate checks the preferences can drive a run.
func (p Preferences) Validate() error {
	switch {
	case p.SessionMinutes <= 0:
		return wrapPreferences("session duration must be positive")
	case p.MaxHoursPerDay <= 0:
		return wrapPreferences("max hours per day must be positive")
	case p.DailyStart < 0 || p.DailyEnd > MinutesPerDay:
		return wrapPreferences("daily window must lie within one day")
	case p.DailyStart >= p.DailyEnd:
		return wrapPreferences("daily start must be before daily end")
	case len(p.PreferredDays) == 0:
		return wrapPreferences("at least one preferred day is required")
	}
	for _, day := range p.PreferredDays {
		if !day.Valid() {
			return wrapPreferences("preferred days must be between 0 (Sunday) and 6 (Saturday)")
		}
	}
	return nil
}

// Window returns the daily window after the early-morning and late-evening clamps.
func (p Preferences) Window() TimeRange {
	window := TimeRange{Start: p.DailyStart, End: p.DailyEnd}
	if p.AvoidEarlyMorning && window.Start < EarlyMorningAt {
		window.Start = EarlyMorningAt
	}
	if p.AvoidLateEvening && window.End > LateEveningAt {
		window.End = LateEveningAt
	}
	return window
}

// DailyCapMinutes converts MaxHoursPerDay to minutes.
func (p Preferences) DailyCapMinutes() int {
	return int(math.Round(p.MaxHoursPerDay * 60))
}

// Input is the snapshot a run works on.
type Input struct {
	// WeekStart may be any date of the target week; it is normalised to its Monday.
	WeekStart   time.Time
	Now         time.Time
	Location    *time.Location
	Subjects    []Subject
	Events      []Event
	Sessions    []Session
	Invites     []Invite
	Preferences Preferences
}

func (in Input) location() *time.Location {
	if in.Location == nil {
		return time.UTC
	}
	return in.Location
}

// Monday returns the normalised first day of the target week.
func (in Input) Monday() time.Time {
	return MondayOf(in.WeekStart)
}

// today returns the local calendar date of Now and the first minute a session may start at.
func (in Input) today() (time.Time, Clock) {
	now := in.Now.In(in.location())
	return DateOf(now), clockCeil(now)
}

// Mode names an allocation strategy.
type Mode string

const (
	ModeRegenerate Mode = "regenerate"
	ModeAdjust     Mode = "adjust"
)

// Status is the informational outcome of a run.
type Status string

const (
	StatusSuccess            Status = "success"
	StatusNoEligibleSubjects Status = "no_eligible_subjects"
	StatusNoFreeSlots        Status = "no_free_slots"
)

// Plan is the outcome of one run, ready to be committed.
type Plan struct {
	Mode      Mode
	WeekStart time.Time
	// Deletions lists the session ids Regenerate purges.
	Deletions []string
	// Protected lists the invited sessions that were shielded from the purge.
	Protected []string
	Sessions  []NewSession
	Status    Status
}

// Count returns the number of sessions produced.
func (p Plan) Count() int {
	return len(p.Sessions)
}

// Empty reports whether committing the plan would change nothing.
func (p Plan) Empty() bool {
	return len(p.Sessions) == 0 && len(p.Deletions) == 0
}

func wrapPreferences(msg string) error {
	return &preferenceError{msg: msg}
}

type preferenceError struct {
	msg string
}

func (e *preferenceError) Error() string {
	return ErrInvalidPreferences.Error() + ": " + e.msg
}

func (e *preferenceError) Unwrap() error {
	return ErrInvalidPreferences
}
