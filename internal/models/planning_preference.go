package models

import (
	"time"

	"github.com/lib/pq"
)

// PlanningPreference stores how a user wants their week laid out.
// PreferredDays holds weekday numbers with Sunday as 0.
type PlanningPreference struct {
	ID                     string        `db:"id" json:"id"`
	UserID                 string        `db:"user_id" json:"user_id"`
	PreferredDays          pq.Int64Array `db:"preferred_days" json:"preferred_days"`
	DailyStartTime         string        `db:"daily_start_time" json:"daily_start_time"`
	DailyEndTime           string        `db:"daily_end_time" json:"daily_end_time"`
	MaxHoursPerDay         float64       `db:"max_hours_per_day" json:"max_hours_per_day"`
	SessionDurationMinutes int           `db:"session_duration_minutes" json:"session_duration_minutes"`
	AvoidEarlyMorning      bool          `db:"avoid_early_morning" json:"avoid_early_morning"`
	AvoidLateEvening       bool          `db:"avoid_late_evening" json:"avoid_late_evening"`
	WeeklyGoalHours        *float64      `db:"weekly_goal_hours" json:"weekly_goal_hours,omitempty"`
	Timezone               string        `db:"timezone" json:"timezone"`
	CreatedAt              time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt              time.Time     `db:"updated_at" json:"updated_at"`
}
