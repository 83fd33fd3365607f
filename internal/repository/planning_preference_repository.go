package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/revision-planner-api/internal/models"
)

// PlanningPreferenceRepository reads stored planning preferences.
type PlanningPreferenceRepository struct {
	db *sqlx.DB
}

// NewPlanningPreferenceRepository constructs the repository.
func NewPlanningPreferenceRepository(db *sqlx.DB) *PlanningPreferenceRepository {
	return &PlanningPreferenceRepository{db: db}
}

// GetByUser returns the user's preferences. sql.ErrNoRows is returned unwrapped.
func (r *PlanningPreferenceRepository) GetByUser(ctx context.Context, userID string) (*models.PlanningPreference, error) {
	const query = `SELECT id, user_id, preferred_days,
	to_char(daily_start_time, 'HH24:MI') AS daily_start_time, to_char(daily_end_time, 'HH24:MI') AS daily_end_time,
	max_hours_per_day, session_duration_minutes, avoid_early_morning, avoid_late_evening,
	weekly_goal_hours, timezone, created_at, updated_at
FROM planning_preferences WHERE user_id = $1`
	var pref models.PlanningPreference
	if err := r.db.GetContext(ctx, &pref, query, userID); err != nil {
		return nil, err
	}
	return &pref, nil
}
