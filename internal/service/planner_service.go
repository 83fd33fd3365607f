package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/revision-planner-api/internal/dto"
	"github.com/noah-isme/revision-planner-api/internal/models"
	"github.com/noah-isme/revision-planner-api/internal/planner"
	appErrors "github.com/noah-isme/revision-planner-api/pkg/errors"
	"github.com/noah-isme/revision-planner-api/pkg/export"
)

const weekDateLayout = "2006-01-02"

type plannerSubjectReader interface {
	ListActiveByUser(ctx context.Context, userID string) ([]models.Subject, error)
	FindByID(ctx context.Context, userID, id string) (*models.Subject, error)
}

type plannerEventReader interface {
	ListBlockingBetween(ctx context.Context, userID string, from, to time.Time) ([]models.BlockingEvent, error)
}

type plannerSessionReader interface {
	ListByUser(ctx context.Context, userID string) ([]models.RevisionSession, error)
	ListByUserBetween(ctx context.Context, userID string, from, to time.Time) ([]models.RevisionSession, error)
}

type plannerInviteReader interface {
	ListBySessionOwner(ctx context.Context, userID string) ([]models.SessionInvite, error)
}

type plannerPreferenceReader interface {
	GetByUser(ctx context.Context, userID string) (*models.PlanningPreference, error)
}

type planCommitter interface {
	Commit(ctx context.Context, req PlanCommit) (*CommitResult, error)
}

type plannerRunLocker interface {
	Lock(ctx context.Context, userID string) (func(), error)
}

// PlannerConfig carries the service level knobs.
type PlannerConfig struct {
	// DefaultPreference applies to users who never stored preferences.
	DefaultPreference models.PlanningPreference
	// Timezone is used when the preference row has none.
	Timezone            string
	TopUpCeilingMinutes int
	CacheTTL            time.Duration
	Now                 func() time.Time
}

// PlannerService loads a user's planning snapshot, runs an allocation strategy
// over it and commits the result.
type PlannerService struct {
	subjects    plannerSubjectReader
	events      plannerEventReader
	sessions    plannerSessionReader
	invites     plannerInviteReader
	preferences plannerPreferenceReader
	committer   planCommitter
	locker      plannerRunLocker
	cache       *CacheService
	metrics     *MetricsService
	validator   *validator.Validate
	logger      *zap.Logger
	cfg         PlannerConfig
}

// NewPlannerService wires the planner service.
func NewPlannerService(
	subjects plannerSubjectReader,
	events plannerEventReader,
	sessions plannerSessionReader,
	invites plannerInviteReader,
	preferences plannerPreferenceReader,
	committer planCommitter,
	locker plannerRunLocker,
	cache *CacheService,
	metrics *MetricsService,
	logger *zap.Logger,
	cfg PlannerConfig,
) *PlannerService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &PlannerService{
		subjects:    subjects,
		events:      events,
		sessions:    sessions,
		invites:     invites,
		preferences: preferences,
		committer:   committer,
		locker:      locker,
		cache:       cache,
		metrics:     metrics,
		validator:   validator.New(),
		logger:      logger,
		cfg:         cfg,
	}
}

func (s *PlannerService) now() time.Time {
	return s.cfg.Now()
}

// Regenerate purges the week's unprotected planned sessions and recomputes it.
func (s *PlannerService) Regenerate(ctx context.Context, userID string, req dto.PlanWeekRequest) (*dto.PlanResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid regenerate payload")
	}
	return s.run(ctx, userID, req.WeekStart, req.DryRun, planner.Regenerate{})
}

// Adjust tops the week up for subjects still short of their target.
func (s *PlannerService) Adjust(ctx context.Context, userID string, req dto.PlanWeekRequest) (*dto.PlanResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid adjust payload")
	}
	return s.run(ctx, userID, req.WeekStart, req.DryRun, planner.Adjust{})
}

// TopUp runs Adjust for a single subject, bounded by the reinforcement ceiling.
func (s *PlannerService) TopUp(ctx context.Context, userID, subjectID string, req dto.TopUpRequest) (*dto.PlanResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid top-up payload")
	}
	if subjectID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "subject id is required")
	}
	subject, err := s.subjects.FindByID(ctx, userID, subjectID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "subject not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load subject")
	}
	if subject.Status == models.SubjectStatusArchived {
		return nil, appErrors.Clone(appErrors.ErrValidation, "subject is archived")
	}
	return s.run(ctx, userID, req.WeekStart, req.DryRun, planner.Adjust{
		SubjectID:      subject.ID,
		CeilingMinutes: s.cfg.TopUpCeilingMinutes,
	})
}

func (s *PlannerService) run(ctx context.Context, userID, rawWeek string, dryRun bool, strategy planner.AllocationStrategy) (*dto.PlanResult, error) {
	started := time.Now()
	mode := string(strategy.Mode())

	weekStart, err := parseWeekStart(rawWeek)
	if err != nil {
		return nil, err
	}
	monday := planner.MondayOf(weekStart)

	if !dryRun {
		unlock, err := s.locker.Lock(ctx, userID)
		if err != nil {
			return nil, err
		}
		defer unlock()
	}

	snap, err := s.loadSnapshot(ctx, userID, monday)
	if err != nil {
		return nil, err
	}
	in, timezone, err := s.input(snap, monday)
	if err != nil {
		return nil, err
	}

	plan, err := planner.Allocate(strategy, in)
	if err != nil {
		s.metrics.ObservePlannerRun(mode, "error", 0, 0, dryRun, time.Since(started))
		return nil, mapPlannerError(err)
	}

	names := subjectNames(snap.subjects)
	result := &dto.PlanResult{
		Mode:              mode,
		WeekStart:         plan.WeekStart.Format(weekDateLayout),
		Status:            string(plan.Status),
		DryRun:            dryRun,
		SessionsCreated:   plan.Count(),
		Sessions:          plannedSessions(toSessionModels(userID, plan.Sessions), names),
		DeletedSessionIDs: nonNil(plan.Deletions),
		ProtectedSessions: nonNil(plan.Protected),
	}

	if dryRun {
		s.metrics.ObservePlannerRun(mode, string(plan.Status), plan.Count(), len(plan.Deletions), true, time.Since(started))
		return result, nil
	}

	committed, err := s.committer.Commit(ctx, PlanCommit{
		UserID:      userID,
		Plan:        plan,
		Preferences: in.Preferences,
		Timezone:    timezone,
	})
	if err != nil {
		s.metrics.ObservePlannerRun(mode, "error", 0, 0, false, time.Since(started))
		return nil, err
	}
	result.RunID = committed.RunID
	result.Sessions = plannedSessions(committed.Sessions, names)

	if !plan.Empty() {
		_ = s.cache.Invalidate(ctx, WeekSessionsKey(userID, monday))
	}

	s.metrics.ObservePlannerRun(mode, string(plan.Status), plan.Count(), committed.Deleted, false, time.Since(started))
	s.logger.Info("planner run committed",
		zap.String("user_id", userID),
		zap.String("mode", mode),
		zap.String("week_start", result.WeekStart),
		zap.String("status", result.Status),
		zap.Int("sessions_created", plan.Count()),
		zap.Int("sessions_deleted", committed.Deleted),
		zap.Int("protected", len(plan.Protected)),
		zap.Duration("duration", time.Since(started)),
	)
	return result, nil
}

// WeekSessions lists the stored sessions of the week containing weekStart.
// The boolean reports a cache hit.
func (s *PlannerService) WeekSessions(ctx context.Context, userID, weekStart string) (*dto.WeekSessions, bool, error) {
	date, err := parseWeekStart(weekStart)
	if err != nil {
		return nil, false, err
	}
	monday := planner.MondayOf(date)
	key := WeekSessionsKey(userID, monday)

	var cached dto.WeekSessions
	if s.cache.Get(ctx, key, &cached) {
		return &cached, true, nil
	}

	start := time.Now()
	sessions, err := s.sessions.ListByUserBetween(ctx, userID, monday, monday.AddDate(0, 0, 6))
	s.metrics.ObserveDBQuery("week_sessions", time.Since(start))
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load week sessions")
	}

	result := &dto.WeekSessions{
		WeekStart: monday.Format(weekDateLayout),
		Sessions:  plannedSessions(sessions, nil),
	}
	for _, session := range sessions {
		result.TotalMinutes += sessionMinutes(session)
	}
	s.cache.Set(ctx, key, result, s.cfg.CacheTTL)
	return result, false, nil
}

// ExportFile is a rendered week export.
type ExportFile struct {
	Filename    string
	ContentType string
	Body        []byte
}

// ExportWeek renders the week's sessions as CSV or PDF. An empty format means CSV.
func (s *PlannerService) ExportWeek(ctx context.Context, userID, weekStart string, query dto.ExportQuery) (*ExportFile, error) {
	if err := s.validator.Struct(query); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid export format")
	}
	format := export.Format(query.Format)
	if format == "" {
		format = export.FormatCSV
	}
	exporter, err := export.ForFormat(format)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid export format")
	}

	week, _, err := s.WeekSessions(ctx, userID, weekStart)
	if err != nil {
		return nil, err
	}

	dataset := export.Dataset{
		Title:       fmt.Sprintf("Revision plan, week of %s", week.WeekStart),
		Headers:     []string{"Day", "Start", "End", "Subject", "Status"},
		GroupColumn: 0,
	}
	for _, session := range week.Sessions {
		dataset.Rows = append(dataset.Rows, []string{
			dayLabel(session.Date),
			session.StartTime,
			session.EndTime,
			session.SubjectName,
			session.Status,
		})
	}

	body, err := exporter.Render(dataset)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}
	return &ExportFile{
		Filename:    fmt.Sprintf("revision-plan-%s.%s", week.WeekStart, exporter.Extension()),
		ContentType: exporter.ContentType(),
		Body:        body,
	}, nil
}

func parseWeekStart(raw string) (time.Time, error) {
	date, err := time.Parse(weekDateLayout, raw)
	if err != nil {
		return time.Time{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "weekStart must be a YYYY-MM-DD date")
	}
	return date, nil
}

func mapPlannerError(err error) error {
	switch {
	case errors.Is(err, planner.ErrNoActiveSubjects):
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "no active subjects to plan")
	case errors.Is(err, planner.ErrInvalidPreferences):
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, err.Error())
	default:
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to compute plan")
	}
}

func subjectNames(subjects []models.Subject) map[string]string {
	names := make(map[string]string, len(subjects))
	for _, subject := range subjects {
		names[subject.ID] = subject.Name
	}
	return names
}

func plannedSessions(sessions []models.RevisionSession, names map[string]string) []dto.PlannedSession {
	out := make([]dto.PlannedSession, 0, len(sessions))
	for _, session := range sessions {
		name := session.SubjectName
		if name == "" {
			name = names[session.SubjectID]
		}
		out = append(out, dto.PlannedSession{
			ID:          session.ID,
			SubjectID:   session.SubjectID,
			SubjectName: name,
			Date:        session.SessionDate.Format(weekDateLayout),
			StartTime:   session.StartTime,
			EndTime:     session.EndTime,
			Status:      string(session.Status),
		})
	}
	return out
}

func sessionMinutes(session models.RevisionSession) int {
	start, err := planner.ParseClock(session.StartTime)
	if err != nil {
		return 0
	}
	end, err := planner.ParseClock(session.EndTime)
	if err != nil || end < start {
		return 0
	}
	return int(end - start)
}

func dayLabel(date string) string {
	d, err := time.Parse(weekDateLayout, date)
	if err != nil {
		return date
	}
	return d.Format("Mon 2006-01-02")
}

func nonNil(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}
