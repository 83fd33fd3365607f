package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/revision-planner-api/internal/dto"
	"github.com/noah-isme/revision-planner-api/internal/models"
	"github.com/noah-isme/revision-planner-api/internal/planner"
	appErrors "github.com/noah-isme/revision-planner-api/pkg/errors"
)

type plannerRepoStub struct {
	subjects     []models.Subject
	subjectByID  map[string]*models.Subject
	events       []models.BlockingEvent
	sessions     []models.RevisionSession
	weekSessions []models.RevisionSession
	weekCalls    int
	invites      []models.SessionInvite
	preference   *models.PlanningPreference
	loadErr      error
	eventWindow  [2]time.Time
}

func (r *plannerRepoStub) ListActiveByUser(ctx context.Context, userID string) ([]models.Subject, error) {
	return r.subjects, r.loadErr
}

func (r *plannerRepoStub) FindByID(ctx context.Context, userID, id string) (*models.Subject, error) {
	subject, ok := r.subjectByID[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return subject, nil
}

func (r *plannerRepoStub) ListBlockingBetween(ctx context.Context, userID string, from, to time.Time) ([]models.BlockingEvent, error) {
	r.eventWindow = [2]time.Time{from, to}
	return r.events, nil
}

func (r *plannerRepoStub) ListByUser(ctx context.Context, userID string) ([]models.RevisionSession, error) {
	return r.sessions, nil
}

func (r *plannerRepoStub) ListByUserBetween(ctx context.Context, userID string, from, to time.Time) ([]models.RevisionSession, error) {
	r.weekCalls++
	return r.weekSessions, nil
}

func (r *plannerRepoStub) ListBySessionOwner(ctx context.Context, userID string) ([]models.SessionInvite, error) {
	return r.invites, nil
}

func (r *plannerRepoStub) GetByUser(ctx context.Context, userID string) (*models.PlanningPreference, error) {
	if r.preference == nil {
		return nil, sql.ErrNoRows
	}
	return r.preference, nil
}

type committerStub struct {
	commits []PlanCommit
	err     error
}

func (c *committerStub) Commit(ctx context.Context, req PlanCommit) (*CommitResult, error) {
	if c.err != nil {
		return nil, c.err
	}
	c.commits = append(c.commits, req)
	sessions := toSessionModels(req.UserID, req.Plan.Sessions)
	for i := range sessions {
		sessions[i].ID = "new-" + sessions[i].SessionDate.Format("0102") + "-" + sessions[i].StartTime
	}
	return &CommitResult{RunID: "run-1", Deleted: len(req.Plan.Deletions), Sessions: sessions}, nil
}

type lockerStub struct {
	calls int
	err   error
}

func (l *lockerStub) Lock(ctx context.Context, userID string) (func(), error) {
	l.calls++
	if l.err != nil {
		return nil, l.err
	}
	return func() {}, nil
}

type plannerFixture struct {
	service   *PlannerService
	repo      *plannerRepoStub
	committer *committerStub
	locker    *lockerStub
	cache     *cacheRepoStub
}

var (
	fixtureMonday = time.Date(2025, time.January, 6, 0, 0, 0, 0, time.UTC)
	fixtureNow    = time.Date(2025, time.January, 1, 10, 0, 0, 0, time.UTC)
)

func defaultPreference() models.PlanningPreference {
	return models.PlanningPreference{
		PreferredDays:          pq.Int64Array{1, 2, 3, 4, 5},
		DailyStartTime:         "08:00",
		DailyEndTime:           "22:00",
		MaxHoursPerDay:         4,
		SessionDurationMinutes: 90,
	}
}

func newPlannerFixture(repo *plannerRepoStub) *plannerFixture {
	committer := &committerStub{}
	locker := &lockerStub{}
	cacheRepo := newCacheRepoStub()
	cache := NewCacheService(cacheRepo, nil, time.Minute, nil, true)
	svc := NewPlannerService(repo, repo, repo, repo, repo, committer, locker, cache, NewMetricsService(), nil, PlannerConfig{
		DefaultPreference:   defaultPreference(),
		Timezone:            "UTC",
		TopUpCeilingMinutes: 180,
		Now:                 func() time.Time { return fixtureNow },
	})
	return &plannerFixture{service: svc, repo: repo, committer: committer, locker: locker, cache: cacheRepo}
}

func intRef(v int) *int {
	return &v
}

func twoSubjects() []models.Subject {
	return []models.Subject{
		{ID: "math", Name: "Math", Weight: 2, TargetMinutes: intRef(180), Status: models.SubjectStatusActive},
		{ID: "physics", Name: "Physics", Weight: 1, TargetMinutes: intRef(180), Status: models.SubjectStatusActive},
	}
}

func requireAppError(t *testing.T, err error, code string) {
	t.Helper()
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr), "expected app error, got %v", err)
	assert.Equal(t, code, appErr.Code)
}

func TestPlannerServiceRegenerate(t *testing.T) {
	repo := &plannerRepoStub{
		subjects: twoSubjects(),
		sessions: []models.RevisionSession{
			{ID: "s-old", SubjectID: "math", SessionDate: fixtureMonday, StartTime: "08:00", EndTime: "09:30", Status: models.SessionStatusPlanned},
			{ID: "s-inv", SubjectID: "physics", SessionDate: fixtureMonday, StartTime: "10:00:00", EndTime: "11:30:00", Status: models.SessionStatusPlanned},
		},
		invites: []models.SessionInvite{{ID: "inv-1", SessionID: "s-inv"}},
	}
	f := newPlannerFixture(repo)
	key := WeekSessionsKey("user-1", fixtureMonday)
	f.cache.entries[key] = []byte(`{}`)

	result, err := f.service.Regenerate(context.Background(), "user-1", dto.PlanWeekRequest{WeekStart: "2025-01-08"})
	require.NoError(t, err)

	assert.Equal(t, "regenerate", result.Mode)
	assert.Equal(t, "2025-01-06", result.WeekStart)
	assert.Equal(t, "success", result.Status)
	assert.Equal(t, "run-1", result.RunID)
	assert.Equal(t, []string{"s-old"}, result.DeletedSessionIDs)
	assert.Equal(t, []string{"s-inv"}, result.ProtectedSessions)

	// physics already has 90 of its 180 minutes in the protected session
	require.Len(t, result.Sessions, 3)
	perSubject := map[string]int{}
	for _, s := range result.Sessions {
		perSubject[s.SubjectID]++
		assert.NotEmpty(t, s.ID)
		assert.Equal(t, "planned", s.Status)
	}
	assert.Equal(t, map[string]int{"math": 2, "physics": 1}, perSubject)
	assert.Equal(t, "Math", result.Sessions[0].SubjectName)

	require.Len(t, f.committer.commits, 1)
	commit := f.committer.commits[0]
	assert.Equal(t, "user-1", commit.UserID)
	assert.Equal(t, "UTC", commit.Timezone)
	assert.Equal(t, 90, commit.Preferences.SessionMinutes)
	assert.Equal(t, 1, f.locker.calls)
	assert.Equal(t, [2]time.Time{fixtureMonday.AddDate(0, 0, -1), fixtureMonday.AddDate(0, 0, 8)}, repo.eventWindow)
	assert.Equal(t, []string{key}, f.cache.deleted)
}

func TestPlannerServiceDryRunDoesNotCommit(t *testing.T) {
	f := newPlannerFixture(&plannerRepoStub{subjects: twoSubjects()})

	result, err := f.service.Regenerate(context.Background(), "user-1", dto.PlanWeekRequest{WeekStart: "2025-01-06", DryRun: true})
	require.NoError(t, err)
	assert.True(t, result.DryRun)
	assert.Len(t, result.Sessions, 4)
	assert.Empty(t, result.RunID)
	assert.Empty(t, f.committer.commits)
	assert.Zero(t, f.locker.calls)
	assert.Empty(t, f.cache.deleted)
}

func TestPlannerServiceRegenerateWithoutSubjects(t *testing.T) {
	f := newPlannerFixture(&plannerRepoStub{})

	_, err := f.service.Regenerate(context.Background(), "user-1", dto.PlanWeekRequest{WeekStart: "2025-01-06"})
	requireAppError(t, err, appErrors.ErrValidation.Code)
	assert.Empty(t, f.committer.commits)
}

func TestPlannerServiceRejectsBadInput(t *testing.T) {
	f := newPlannerFixture(&plannerRepoStub{subjects: twoSubjects()})

	_, err := f.service.Regenerate(context.Background(), "user-1", dto.PlanWeekRequest{WeekStart: "2025-13-01"})
	requireAppError(t, err, appErrors.ErrValidation.Code)

	_, err = f.service.Adjust(context.Background(), "user-1", dto.PlanWeekRequest{})
	requireAppError(t, err, appErrors.ErrValidation.Code)
	assert.Zero(t, f.locker.calls)
}

func TestPlannerServiceInvalidStoredPreferences(t *testing.T) {
	pref := defaultPreference()
	pref.SessionDurationMinutes = 0
	f := newPlannerFixture(&plannerRepoStub{subjects: twoSubjects(), preference: &pref})

	_, err := f.service.Regenerate(context.Background(), "user-1", dto.PlanWeekRequest{WeekStart: "2025-01-06"})
	requireAppError(t, err, appErrors.ErrValidation.Code)
	assert.Contains(t, err.Error(), "session duration must be positive")

	pref = defaultPreference()
	pref.Timezone = "Mars/Olympus"
	f = newPlannerFixture(&plannerRepoStub{subjects: twoSubjects(), preference: &pref})
	_, err = f.service.Regenerate(context.Background(), "user-1", dto.PlanWeekRequest{WeekStart: "2025-01-06"})
	requireAppError(t, err, appErrors.ErrValidation.Code)
}

func TestPlannerServiceUsesStoredTimezone(t *testing.T) {
	pref := defaultPreference()
	pref.Timezone = "Asia/Tokyo"
	goal := 3.0
	pref.WeeklyGoalHours = &goal
	f := newPlannerFixture(&plannerRepoStub{subjects: twoSubjects(), preference: &pref})

	result, err := f.service.Regenerate(context.Background(), "user-1", dto.PlanWeekRequest{WeekStart: "2025-01-06"})
	require.NoError(t, err)
	require.Len(t, f.committer.commits, 1)
	assert.Equal(t, "Asia/Tokyo", f.committer.commits[0].Timezone)
	assert.Equal(t, 180, f.committer.commits[0].Preferences.WeeklyGoalMinutes)
	assert.Equal(t, 2, result.SessionsCreated)
}

func TestPlannerServiceLockConflict(t *testing.T) {
	f := newPlannerFixture(&plannerRepoStub{subjects: twoSubjects()})
	f.locker.err = appErrors.Clone(appErrors.ErrConflict, "a planning run is already in progress")

	_, err := f.service.Adjust(context.Background(), "user-1", dto.PlanWeekRequest{WeekStart: "2025-01-06"})
	requireAppError(t, err, appErrors.ErrConflict.Code)
	assert.Empty(t, f.committer.commits)
}

func TestPlannerServiceLoadFailure(t *testing.T) {
	f := newPlannerFixture(&plannerRepoStub{loadErr: errors.New("connection reset")})

	_, err := f.service.Adjust(context.Background(), "user-1", dto.PlanWeekRequest{WeekStart: "2025-01-06"})
	requireAppError(t, err, appErrors.ErrInternal.Code)
}

func TestPlannerServiceAdjustNothingToDo(t *testing.T) {
	subjects := []models.Subject{{ID: "art", Name: "Art", Weight: 1, Status: models.SubjectStatusActive}}
	f := newPlannerFixture(&plannerRepoStub{subjects: subjects})

	result, err := f.service.Adjust(context.Background(), "user-1", dto.PlanWeekRequest{WeekStart: "2025-01-06"})
	require.NoError(t, err)
	assert.Equal(t, "no_eligible_subjects", result.Status)
	assert.Zero(t, result.SessionsCreated)
	assert.Empty(t, f.cache.deleted)
}

func TestPlannerServiceTopUp(t *testing.T) {
	subjects := []models.Subject{
		{ID: "math", Name: "Math", Weight: 1, TargetMinutes: intRef(600), Status: models.SubjectStatusActive},
		{ID: "art", Name: "Art", Weight: 5, TargetMinutes: intRef(600), Status: models.SubjectStatusActive},
	}
	archived := models.Subject{ID: "latin", Name: "Latin", Status: models.SubjectStatusArchived}
	repo := &plannerRepoStub{
		subjects:    subjects,
		subjectByID: map[string]*models.Subject{"math": &subjects[0], "latin": &archived},
	}
	f := newPlannerFixture(repo)
	ctx := context.Background()

	result, err := f.service.TopUp(ctx, "user-1", "math", dto.TopUpRequest{WeekStart: "2025-01-06"})
	require.NoError(t, err)
	assert.Equal(t, "adjust", result.Mode)
	require.Len(t, result.Sessions, 2)
	for _, s := range result.Sessions {
		assert.Equal(t, "math", s.SubjectID)
	}
	assert.Empty(t, result.DeletedSessionIDs)
	assert.Equal(t, planner.ModeAdjust, f.committer.commits[0].Plan.Mode)

	_, err = f.service.TopUp(ctx, "user-1", "missing", dto.TopUpRequest{WeekStart: "2025-01-06"})
	requireAppError(t, err, appErrors.ErrNotFound.Code)

	_, err = f.service.TopUp(ctx, "user-1", "latin", dto.TopUpRequest{WeekStart: "2025-01-06"})
	requireAppError(t, err, appErrors.ErrValidation.Code)
}

func TestPlannerServiceCommitFailure(t *testing.T) {
	f := newPlannerFixture(&plannerRepoStub{subjects: twoSubjects()})
	f.committer.err = appErrors.Clone(appErrors.ErrInternal, "failed to commit plan transaction")

	_, err := f.service.Regenerate(context.Background(), "user-1", dto.PlanWeekRequest{WeekStart: "2025-01-06"})
	requireAppError(t, err, appErrors.ErrInternal.Code)
	assert.Empty(t, f.cache.deleted)
}

func weekFixtureSessions() []models.RevisionSession {
	return []models.RevisionSession{
		{ID: "s-1", SubjectID: "math", SubjectName: "Math", SessionDate: fixtureMonday, StartTime: "08:00", EndTime: "09:30", Status: models.SessionStatusPlanned},
		{ID: "s-2", SubjectID: "physics", SubjectName: "Physics", SessionDate: fixtureMonday.AddDate(0, 0, 1), StartTime: "10:00", EndTime: "11:00", Status: models.SessionStatusDone},
	}
}

func TestPlannerServiceWeekSessionsUsesCache(t *testing.T) {
	repo := &plannerRepoStub{weekSessions: weekFixtureSessions()}
	f := newPlannerFixture(repo)
	ctx := context.Background()

	week, hit, err := f.service.WeekSessions(ctx, "user-1", "2025-01-09")
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, "2025-01-06", week.WeekStart)
	assert.Equal(t, 150, week.TotalMinutes)
	require.Len(t, week.Sessions, 2)
	assert.Equal(t, "2025-01-07", week.Sessions[1].Date)

	again, hit, err := f.service.WeekSessions(ctx, "user-1", "2025-01-06")
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, week.TotalMinutes, again.TotalMinutes)
	assert.Equal(t, 1, repo.weekCalls)

	_, _, err = f.service.WeekSessions(ctx, "user-1", "next week")
	requireAppError(t, err, appErrors.ErrValidation.Code)
}

func TestPlannerServiceExportWeek(t *testing.T) {
	f := newPlannerFixture(&plannerRepoStub{weekSessions: weekFixtureSessions()})
	ctx := context.Background()

	file, err := f.service.ExportWeek(ctx, "user-1", "2025-01-06", dto.ExportQuery{})
	require.NoError(t, err)
	assert.Equal(t, "revision-plan-2025-01-06.csv", file.Filename)
	assert.Contains(t, file.ContentType, "text/csv")
	assert.Contains(t, string(file.Body), "Day,Start,End,Subject,Status")
	assert.Contains(t, string(file.Body), "Mon 2025-01-06,08:00,09:30,Math,planned")

	pdf, err := f.service.ExportWeek(ctx, "user-1", "2025-01-06", dto.ExportQuery{Format: "pdf"})
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", pdf.ContentType)
	assert.Equal(t, "%PDF", string(pdf.Body[:4]))

	_, err = f.service.ExportWeek(ctx, "user-1", "2025-01-06", dto.ExportQuery{Format: "xlsx"})
	requireAppError(t, err, appErrors.ErrValidation.Code)
}
