package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/revision-planner-api/internal/models"
)

// BlockingEventRepository reads calendar events.
type BlockingEventRepository struct {
	db *sqlx.DB
}

// NewBlockingEventRepository constructs the repository.
func NewBlockingEventRepository(db *sqlx.DB) *BlockingEventRepository {
	return &BlockingEventRepository{db: db}
}

// ListBlockingBetween returns blocking events intersecting [from, to).
func (r *BlockingEventRepository) ListBlockingBetween(ctx context.Context, userID string, from, to time.Time) ([]models.BlockingEvent, error) {
	const query = `SELECT id, user_id, title, start_at, end_at, is_blocking
FROM calendar_events
WHERE user_id = $1 AND is_blocking = TRUE AND start_at < $3 AND end_at > $2
ORDER BY start_at`
	var events []models.BlockingEvent
	if err := r.db.SelectContext(ctx, &events, query, userID, from.UTC(), to.UTC()); err != nil {
		return nil, fmt.Errorf("list blocking events: %w", err)
	}
	return events, nil
}
