package models

import "time"

// BlockingEvent is a calendar entry. Only blocking ones constrain the planner.
type BlockingEvent struct {
	ID         string    `db:"id" json:"id"`
	UserID     string    `db:"user_id" json:"user_id"`
	Title      string    `db:"title" json:"title"`
	StartAt    time.Time `db:"start_at" json:"start_at"`
	EndAt      time.Time `db:"end_at" json:"end_at"`
	IsBlocking bool      `db:"is_blocking" json:"is_blocking"`
}
