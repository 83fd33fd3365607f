package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/revision-planner-api/internal/models"
)

const subjectColumns = `id, user_id, name, color, exam_date, weight, target_minutes, status, created_at, updated_at`

// SubjectRepository reads the subjects a user studies.
type SubjectRepository struct {
	db *sqlx.DB
}

// NewSubjectRepository constructs the repository.
func NewSubjectRepository(db *sqlx.DB) *SubjectRepository {
	return &SubjectRepository{db: db}
}

// ListActiveByUser returns the user's active subjects ordered by name.
func (r *SubjectRepository) ListActiveByUser(ctx context.Context, userID string) ([]models.Subject, error) {
	query := `SELECT ` + subjectColumns + ` FROM subjects WHERE user_id = $1 AND status = $2 ORDER BY name, id`
	var subjects []models.Subject
	if err := r.db.SelectContext(ctx, &subjects, query, userID, models.SubjectStatusActive); err != nil {
		return nil, fmt.Errorf("list active subjects: %w", err)
	}
	return subjects, nil
}

// FindByID returns one of the user's subjects. sql.ErrNoRows is returned unwrapped.
func (r *SubjectRepository) FindByID(ctx context.Context, userID, id string) (*models.Subject, error) {
	query := `SELECT ` + subjectColumns + ` FROM subjects WHERE user_id = $1 AND id = $2`
	var subject models.Subject
	if err := r.db.GetContext(ctx, &subject, query, userID, id); err != nil {
		return nil, err
	}
	return &subject, nil
}
