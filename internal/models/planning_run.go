package models

import (
	"time"

	"github.com/jmoiron/sqlx/types"
)

// PlanningRun is the write-once audit record of a committed planner run.
type PlanningRun struct {
	ID              string         `db:"id" json:"id"`
	UserID          string         `db:"user_id" json:"user_id"`
	Mode            string         `db:"mode" json:"mode"`
	WeekStartDate   time.Time      `db:"week_start_date" json:"week_start_date"`
	Preferences     types.JSONText `db:"preferences" json:"preferences"`
	SessionsCreated int            `db:"sessions_created" json:"sessions_created"`
	SessionsDeleted int            `db:"sessions_deleted" json:"sessions_deleted"`
	Status          string         `db:"status" json:"status"`
	CreatedAt       time.Time      `db:"created_at" json:"created_at"`
}
