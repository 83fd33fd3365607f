package models

import "time"

// SessionStatus is the lifecycle state of a revision session.
type SessionStatus string

const (
	SessionStatusPlanned SessionStatus = "planned"
	SessionStatusDone    SessionStatus = "done"
	SessionStatusSkipped SessionStatus = "skipped"
)

// RevisionSession is one block of study time. StartTime and EndTime are local
// times of day ("HH:MM" or "HH:MM:SS").
type RevisionSession struct {
	ID          string        `db:"id" json:"id"`
	UserID      string        `db:"user_id" json:"user_id"`
	SubjectID   string        `db:"subject_id" json:"subject_id"`
	SubjectName string        `db:"subject_name" json:"subject_name,omitempty"`
	SessionDate time.Time     `db:"session_date" json:"session_date"`
	StartTime   string        `db:"start_time" json:"start_time"`
	EndTime     string        `db:"end_time" json:"end_time"`
	Status      SessionStatus `db:"status" json:"status"`
	CreatedAt   time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time     `db:"updated_at" json:"updated_at"`
}

// SessionInvite associates a collaborator with a session.
type SessionInvite struct {
	ID        string    `db:"id" json:"id"`
	SessionID string    `db:"session_id" json:"session_id"`
	InviteeID string    `db:"invitee_id" json:"invitee_id"`
	Accepted  bool      `db:"accepted" json:"accepted"`
	Confirmed bool      `db:"confirmed" json:"confirmed"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
