package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/revision-planner-api/internal/models"
)

// RevisionSessionRepository persists revision sessions.
type RevisionSessionRepository struct {
	db *sqlx.DB
}

// NewRevisionSessionRepository constructs the repository.
func NewRevisionSessionRepository(db *sqlx.DB) *RevisionSessionRepository {
	return &RevisionSessionRepository{db: db}
}

// ListByUser returns every session the user ever had, whatever its status.
func (r *RevisionSessionRepository) ListByUser(ctx context.Context, userID string) ([]models.RevisionSession, error) {
	const query = `SELECT id, user_id, subject_id, session_date,
	to_char(start_time, 'HH24:MI') AS start_time, to_char(end_time, 'HH24:MI') AS end_time,
	status, created_at, updated_at
FROM revision_sessions WHERE user_id = $1 ORDER BY session_date, start_time`
	var sessions []models.RevisionSession
	if err := r.db.SelectContext(ctx, &sessions, query, userID); err != nil {
		return nil, fmt.Errorf("list revision sessions: %w", err)
	}
	return sessions, nil
}

// ListByUserBetween returns the sessions dated within [from, to] with their subject names.
func (r *RevisionSessionRepository) ListByUserBetween(ctx context.Context, userID string, from, to time.Time) ([]models.RevisionSession, error) {
	const query = `SELECT rs.id, rs.user_id, rs.subject_id, s.name AS subject_name, rs.session_date,
	to_char(rs.start_time, 'HH24:MI') AS start_time, to_char(rs.end_time, 'HH24:MI') AS end_time,
	rs.status, rs.created_at, rs.updated_at
FROM revision_sessions rs
JOIN subjects s ON s.id = rs.subject_id
WHERE rs.user_id = $1 AND rs.session_date BETWEEN $2 AND $3
ORDER BY rs.session_date, rs.start_time`
	var sessions []models.RevisionSession
	if err := r.db.SelectContext(ctx, &sessions, query, userID, from, to); err != nil {
		return nil, fmt.Errorf("list week revision sessions: %w", err)
	}
	return sessions, nil
}

// DeletePlannedWithTx removes the given sessions. The statement itself refuses
// rows that are not planned or carry an invite, so a stale purge list cannot
// destroy protected work. It returns the number of rows deleted.
func (r *RevisionSessionRepository) DeletePlannedWithTx(ctx context.Context, exec sqlx.ExtContext, userID string, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	if exec == nil {
		exec = r.db
	}
	const query = `DELETE FROM revision_sessions rs
WHERE rs.user_id = $1 AND rs.id = ANY($2) AND rs.status = 'planned'
AND NOT EXISTS (SELECT 1 FROM session_invites si WHERE si.session_id = rs.id)`
	res, err := exec.ExecContext(ctx, query, userID, pq.Array(ids))
	if err != nil {
		return 0, fmt.Errorf("delete planned revision sessions: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("check deleted revision sessions: %w", err)
	}
	return affected, nil
}

// BulkCreateWithTx inserts sessions using an existing transaction, assigning ids and timestamps.
func (r *RevisionSessionRepository) BulkCreateWithTx(ctx context.Context, tx *sqlx.Tx, sessions []models.RevisionSession) error {
	if tx == nil {
		return fmt.Errorf("nil transaction provided")
	}
	const query = `INSERT INTO revision_sessions (id, user_id, subject_id, session_date, start_time, end_time, status, created_at, updated_at)
VALUES (:id, :user_id, :subject_id, :session_date, :start_time, :end_time, :status, :created_at, :updated_at)`
	now := time.Now().UTC()
	for i := range sessions {
		payload := sessions[i]
		if payload.ID == "" {
			payload.ID = uuid.NewString()
		}
		if payload.Status == "" {
			payload.Status = models.SessionStatusPlanned
		}
		if payload.CreatedAt.IsZero() {
			payload.CreatedAt = now
		}
		payload.UpdatedAt = now

		if _, err := sqlx.NamedExecContext(ctx, tx, query, &payload); err != nil {
			return fmt.Errorf("insert revision session: %w", err)
		}
		sessions[i] = payload
	}
	return nil
}
