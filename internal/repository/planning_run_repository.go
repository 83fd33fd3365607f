package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"

	"github.com/noah-isme/revision-planner-api/internal/models"
)

// PlanningRunRepository writes planner audit records.
type PlanningRunRepository struct {
	db *sqlx.DB
}

// NewPlanningRunRepository constructs the repository.
func NewPlanningRunRepository(db *sqlx.DB) *PlanningRunRepository {
	return &PlanningRunRepository{db: db}
}

// Create inserts a run record.
func (r *PlanningRunRepository) Create(ctx context.Context, run *models.PlanningRun) error {
	if run == nil {
		return fmt.Errorf("planning run payload is nil")
	}
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}
	if len(run.Preferences) == 0 {
		run.Preferences = types.JSONText(`{}`)
	}
	const query = `INSERT INTO planning_runs (id, user_id, mode, week_start_date, preferences, sessions_created, sessions_deleted, status, created_at)
VALUES (:id, :user_id, :mode, :week_start_date, :preferences, :sessions_created, :sessions_deleted, :status, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, run); err != nil {
		return fmt.Errorf("insert planning run: %w", err)
	}
	return nil
}
