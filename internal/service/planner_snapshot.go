package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/noah-isme/revision-planner-api/internal/models"
	"github.com/noah-isme/revision-planner-api/internal/planner"
	appErrors "github.com/noah-isme/revision-planner-api/pkg/errors"
)

// plannerSnapshot is everything one run reads, loaded before the computation starts.
type plannerSnapshot struct {
	subjects   []models.Subject
	events     []models.BlockingEvent
	sessions   []models.RevisionSession
	invites    []models.SessionInvite
	preference models.PlanningPreference
}

// loadSnapshot fetches the run inputs concurrently. Events are read for a
// window padded by a day on both sides so any timezone projection of the week is covered.
func (s *PlannerService) loadSnapshot(ctx context.Context, userID string, monday time.Time) (*plannerSnapshot, error) {
	snap := &plannerSnapshot{}
	start := time.Now()
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		subjects, err := s.subjects.ListActiveByUser(gctx, userID)
		if err != nil {
			return fmt.Errorf("load subjects: %w", err)
		}
		snap.subjects = subjects
		return nil
	})
	g.Go(func() error {
		events, err := s.events.ListBlockingBetween(gctx, userID, monday.AddDate(0, 0, -1), monday.AddDate(0, 0, 8))
		if err != nil {
			return fmt.Errorf("load blocking events: %w", err)
		}
		snap.events = events
		return nil
	})
	g.Go(func() error {
		sessions, err := s.sessions.ListByUser(gctx, userID)
		if err != nil {
			return fmt.Errorf("load sessions: %w", err)
		}
		snap.sessions = sessions
		return nil
	})
	g.Go(func() error {
		invites, err := s.invites.ListBySessionOwner(gctx, userID)
		if err != nil {
			return fmt.Errorf("load invites: %w", err)
		}
		snap.invites = invites
		return nil
	})
	g.Go(func() error {
		pref, err := s.preferences.GetByUser(gctx, userID)
		switch {
		case errors.Is(err, sql.ErrNoRows):
			snap.preference = s.cfg.DefaultPreference
		case err != nil:
			return fmt.Errorf("load preferences: %w", err)
		default:
			snap.preference = *pref
		}
		return nil
	})

	err := g.Wait()
	s.metrics.ObserveDBQuery("planner_snapshot", time.Since(start))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load planning data")
	}
	return snap, nil
}

// input converts the snapshot into the scheduler's types.
func (s *PlannerService) input(snap *plannerSnapshot, weekStart time.Time) (planner.Input, string, error) {
	timezone := snap.preference.Timezone
	if timezone == "" {
		timezone = s.cfg.Timezone
	}
	if timezone == "" {
		timezone = "UTC"
	}
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return planner.Input{}, "", appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid planning timezone")
	}

	prefs, err := toPlannerPreferences(snap.preference)
	if err != nil {
		return planner.Input{}, "", appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, err.Error())
	}

	sessions, err := toPlannerSessions(snap.sessions)
	if err != nil {
		return planner.Input{}, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "stored session has an invalid time")
	}

	return planner.Input{
		WeekStart:   weekStart,
		Now:         s.now(),
		Location:    loc,
		Subjects:    toPlannerSubjects(snap.subjects),
		Events:      toPlannerEvents(snap.events),
		Sessions:    sessions,
		Invites:     toPlannerInvites(snap.invites),
		Preferences: prefs,
	}, timezone, nil
}

func toPlannerSubjects(subjects []models.Subject) []planner.Subject {
	out := make([]planner.Subject, 0, len(subjects))
	for _, subject := range subjects {
		var exam *time.Time
		if subject.ExamDate != nil {
			d := planner.DateOf(*subject.ExamDate)
			exam = &d
		}
		out = append(out, planner.Subject{
			ID:            subject.ID,
			Name:          subject.Name,
			ExamDate:      exam,
			Weight:        subject.Weight,
			TargetMinutes: subject.TargetMinutes,
			Active:        subject.Status != models.SubjectStatusArchived,
		})
	}
	return out
}

func toPlannerEvents(events []models.BlockingEvent) []planner.Event {
	out := make([]planner.Event, 0, len(events))
	for _, event := range events {
		out = append(out, planner.Event{Start: event.StartAt, End: event.EndAt, Blocking: event.IsBlocking})
	}
	return out
}

func toPlannerSessions(sessions []models.RevisionSession) ([]planner.Session, error) {
	out := make([]planner.Session, 0, len(sessions))
	for _, session := range sessions {
		start, err := planner.ParseClock(session.StartTime)
		if err != nil {
			return nil, fmt.Errorf("session %s: %w", session.ID, err)
		}
		end, err := planner.ParseClock(session.EndTime)
		if err != nil {
			return nil, fmt.Errorf("session %s: %w", session.ID, err)
		}
		out = append(out, planner.Session{
			ID:        session.ID,
			SubjectID: session.SubjectID,
			Date:      planner.DateOf(session.SessionDate),
			Range:     planner.TimeRange{Start: start, End: end},
			Status:    planner.SessionStatus(session.Status),
		})
	}
	return out, nil
}

func toPlannerInvites(invites []models.SessionInvite) []planner.Invite {
	out := make([]planner.Invite, 0, len(invites))
	for _, invite := range invites {
		out = append(out, planner.Invite{SessionID: invite.SessionID, Accepted: invite.Accepted})
	}
	return out
}

func toPlannerPreferences(pref models.PlanningPreference) (planner.Preferences, error) {
	start, err := planner.ParseClock(pref.DailyStartTime)
	if err != nil {
		return planner.Preferences{}, fmt.Errorf("invalid daily start time: %w", err)
	}
	end, err := planner.ParseClock(pref.DailyEndTime)
	if err != nil {
		return planner.Preferences{}, fmt.Errorf("invalid daily end time: %w", err)
	}
	days := make([]planner.Weekday, 0, len(pref.PreferredDays))
	for _, d := range pref.PreferredDays {
		days = append(days, planner.Weekday(d))
	}
	goal := 0
	if pref.WeeklyGoalHours != nil && *pref.WeeklyGoalHours > 0 {
		goal = int(math.Round(*pref.WeeklyGoalHours * 60))
	}
	return planner.Preferences{
		PreferredDays:     days,
		DailyStart:        start,
		DailyEnd:          end,
		MaxHoursPerDay:    pref.MaxHoursPerDay,
		SessionMinutes:    pref.SessionDurationMinutes,
		AvoidEarlyMorning: pref.AvoidEarlyMorning,
		AvoidLateEvening:  pref.AvoidLateEvening,
		WeeklyGoalMinutes: goal,
	}, nil
}
