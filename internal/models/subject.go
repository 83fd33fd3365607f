package models

import "time"

// SubjectStatus captures whether a subject is still being studied.
type SubjectStatus string

const (
	SubjectStatusActive   SubjectStatus = "active"
	SubjectStatusArchived SubjectStatus = "archived"
)

// Subject is a course the user revises for.
type Subject struct {
	ID            string        `db:"id" json:"id"`
	UserID        string        `db:"user_id" json:"user_id"`
	Name          string        `db:"name" json:"name"`
	Color         string        `db:"color" json:"color"`
	ExamDate      *time.Time    `db:"exam_date" json:"exam_date,omitempty"`
	Weight        float64       `db:"weight" json:"weight"`
	TargetMinutes *int          `db:"target_minutes" json:"target_minutes,omitempty"`
	Status        SubjectStatus `db:"status" json:"status"`
	CreatedAt     time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time     `db:"updated_at" json:"updated_at"`
}
