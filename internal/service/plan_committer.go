package service

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"
	"go.uber.org/zap"

	"github.com/noah-isme/revision-planner-api/internal/models"
	"github.com/noah-isme/revision-planner-api/internal/planner"
	appErrors "github.com/noah-isme/revision-planner-api/pkg/errors"
)

type txProvider interface {
	BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error)
}

type revisionSessionWriter interface {
	DeletePlannedWithTx(ctx context.Context, exec sqlx.ExtContext, userID string, ids []string) (int64, error)
	BulkCreateWithTx(ctx context.Context, tx *sqlx.Tx, sessions []models.RevisionSession) error
}

type planningRunWriter interface {
	Create(ctx context.Context, run *models.PlanningRun) error
}

// PlanCommit is a computed plan bound to its owner.
type PlanCommit struct {
	UserID      string
	Plan        planner.Plan
	Preferences planner.Preferences
	Timezone    string
}

// CommitResult reports what a commit changed.
type CommitResult struct {
	RunID    string
	Deleted  int
	Sessions []models.RevisionSession
}

// PlanCommitter persists plans: the purge and the inserts share one
// transaction, the planning_runs audit row is written after it commits.
type PlanCommitter struct {
	sessions revisionSessionWriter
	runs     planningRunWriter
	tx       txProvider
	logger   *zap.Logger
}

// NewPlanCommitter constructs a committer.
func NewPlanCommitter(sessions revisionSessionWriter, runs planningRunWriter, tx txProvider, logger *zap.Logger) *PlanCommitter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PlanCommitter{sessions: sessions, runs: runs, tx: tx, logger: logger}
}

// Commit applies the plan. An Adjust plan that adds nothing leaves no trace;
// Regenerate always records a run.
func (c *PlanCommitter) Commit(ctx context.Context, req PlanCommit) (*CommitResult, error) {
	result := &CommitResult{Sessions: toSessionModels(req.UserID, req.Plan.Sessions)}

	if !req.Plan.Empty() {
		deleted, err := c.apply(ctx, req.UserID, req.Plan.Deletions, result.Sessions)
		if err != nil {
			return nil, err
		}
		result.Deleted = deleted
		if deleted != len(req.Plan.Deletions) {
			// Rows protected between snapshot and commit are skipped by the guarded delete.
			c.logger.Warn("planner purge skipped sessions",
				zap.String("user_id", req.UserID),
				zap.Int("requested", len(req.Plan.Deletions)),
				zap.Int("deleted", deleted),
			)
		}
	}

	if req.Plan.Mode == planner.ModeAdjust && req.Plan.Count() == 0 {
		return result, nil
	}

	run := &models.PlanningRun{
		UserID:          req.UserID,
		Mode:            string(req.Plan.Mode),
		WeekStartDate:   req.Plan.WeekStart,
		Preferences:     preferenceSnapshot(req.Preferences, req.Timezone),
		SessionsCreated: req.Plan.Count(),
		SessionsDeleted: result.Deleted,
		Status:          string(req.Plan.Status),
	}
	if err := c.runs.Create(ctx, run); err != nil {
		c.logger.Error("failed to record planning run",
			zap.String("user_id", req.UserID),
			zap.String("mode", run.Mode),
			zap.Error(err),
		)
		return result, nil
	}
	result.RunID = run.ID
	return result, nil
}

func (c *PlanCommitter) apply(ctx context.Context, userID string, deletions []string, sessions []models.RevisionSession) (deleted int, err error) {
	if c.tx == nil {
		return 0, appErrors.Clone(appErrors.ErrInternal, "transaction provider missing")
	}
	tx, err := c.tx.BeginTxx(ctx, nil)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to begin transaction")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	affected, err := c.sessions.DeletePlannedWithTx(ctx, tx, userID, deletions)
	if err != nil {
		err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to purge planned sessions")
		return 0, err
	}
	if len(sessions) > 0 {
		if err = c.sessions.BulkCreateWithTx(ctx, tx, sessions); err != nil {
			err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create revision sessions")
			return 0, err
		}
	}
	if err = tx.Commit(); err != nil {
		err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to commit plan transaction")
		return 0, err
	}
	return int(affected), nil
}

func toSessionModels(userID string, sessions []planner.NewSession) []models.RevisionSession {
	out := make([]models.RevisionSession, 0, len(sessions))
	for _, s := range sessions {
		out = append(out, models.RevisionSession{
			UserID:      userID,
			SubjectID:   s.SubjectID,
			SessionDate: s.Date,
			StartTime:   s.Range.Start.String(),
			EndTime:     s.Range.End.String(),
			Status:      models.SessionStatusPlanned,
		})
	}
	return out
}

func preferenceSnapshot(p planner.Preferences, timezone string) types.JSONText {
	days := make([]int, 0, len(p.PreferredDays))
	for _, d := range p.PreferredDays {
		days = append(days, int(d))
	}
	payload := map[string]any{
		"preferredDays":          days,
		"dailyStartTime":         p.DailyStart.String(),
		"dailyEndTime":           p.DailyEnd.String(),
		"maxHoursPerDay":         p.MaxHoursPerDay,
		"sessionDurationMinutes": p.SessionMinutes,
		"avoidEarlyMorning":      p.AvoidEarlyMorning,
		"avoidLateEvening":       p.AvoidLateEvening,
		"weeklyGoalMinutes":      p.WeeklyGoalMinutes,
		"timezone":               timezone,
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return types.JSONText(`{}`)
	}
	return types.JSONText(raw)
}
