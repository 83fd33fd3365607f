package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/revision-planner-api/internal/models"
)

// SessionInviteRepository reads collaborator invites.
type SessionInviteRepository struct {
	db *sqlx.DB
}

// NewSessionInviteRepository constructs the repository.
func NewSessionInviteRepository(db *sqlx.DB) *SessionInviteRepository {
	return &SessionInviteRepository{db: db}
}

// ListBySessionOwner returns the invites attached to any session owned by userID.
func (r *SessionInviteRepository) ListBySessionOwner(ctx context.Context, userID string) ([]models.SessionInvite, error) {
	const query = `SELECT si.id, si.session_id, si.invitee_id, si.accepted, si.confirmed, si.created_at
FROM session_invites si
JOIN revision_sessions rs ON rs.id = si.session_id
WHERE rs.user_id = $1`
	var invites []models.SessionInvite
	if err := r.db.SelectContext(ctx, &invites, query, userID); err != nil {
		return nil, fmt.Errorf("list session invites: %w", err)
	}
	return invites, nil
}
