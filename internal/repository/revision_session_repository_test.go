package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/revision-planner-api/internal/models"
)

func newPlannerRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

var sessionColumns = []string{"id", "user_id", "subject_id", "session_date", "start_time", "end_time", "status", "created_at", "updated_at"}

func TestRevisionSessionRepositoryListByUser(t *testing.T) {
	db, mock, cleanup := newPlannerRepoMock(t)
	defer cleanup()
	repo := NewRevisionSessionRepository(db)

	date := time.Date(2025, time.January, 6, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows(sessionColumns).
		AddRow("s-1", "user-1", "math", date, "08:00", "09:30", "planned", date, date).
		AddRow("s-2", "user-1", "math", date, "10:00", "11:30", "done", date, date)
	mock.ExpectQuery(regexp.QuoteMeta("FROM revision_sessions WHERE user_id = $1")).
		WithArgs("user-1").
		WillReturnRows(rows)

	sessions, err := repo.ListByUser(context.Background(), "user-1")
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.Equal(t, "09:30", sessions[0].EndTime)
	assert.Equal(t, models.SessionStatusDone, sessions[1].Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRevisionSessionRepositoryListByUserBetween(t *testing.T) {
	db, mock, cleanup := newPlannerRepoMock(t)
	defer cleanup()
	repo := NewRevisionSessionRepository(db)

	monday := time.Date(2025, time.January, 6, 0, 0, 0, 0, time.UTC)
	sunday := monday.AddDate(0, 0, 6)
	rows := sqlmock.NewRows([]string{"id", "user_id", "subject_id", "subject_name", "session_date", "start_time", "end_time", "status", "created_at", "updated_at"}).
		AddRow("s-1", "user-1", "math", "Mathematics", monday, "08:00", "09:30", "planned", monday, monday)
	mock.ExpectQuery(regexp.QuoteMeta("JOIN subjects s ON s.id = rs.subject_id")).
		WithArgs("user-1", monday, sunday).
		WillReturnRows(rows)

	sessions, err := repo.ListByUserBetween(context.Background(), "user-1", monday, sunday)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, "Mathematics", sessions[0].SubjectName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRevisionSessionRepositoryDeletePlannedGuardsProtectedRows(t *testing.T) {
	db, mock, cleanup := newPlannerRepoMock(t)
	defer cleanup()
	repo := NewRevisionSessionRepository(db)

	mock.ExpectExec(`DELETE FROM revision_sessions rs\s+WHERE rs.user_id = \$1 AND rs.id = ANY\(\$2\) AND rs.status = 'planned'\s+AND NOT EXISTS`).
		WithArgs("user-1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 2))

	deleted, err := repo.DeletePlannedWithTx(context.Background(), nil, "user-1", []string{"s-1", "s-2", "s-3"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)

	deleted, err = repo.DeletePlannedWithTx(context.Background(), nil, "user-1", nil)
	require.NoError(t, err)
	assert.Zero(t, deleted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRevisionSessionRepositoryBulkCreateWithTx(t *testing.T) {
	db, mock, cleanup := newPlannerRepoMock(t)
	defer cleanup()
	repo := NewRevisionSessionRepository(db)

	date := time.Date(2025, time.January, 6, 0, 0, 0, 0, time.UTC)
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO revision_sessions")).
		WithArgs(sqlmock.AnyArg(), "user-1", "math", date, "08:00", "09:30", "planned", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO revision_sessions")).
		WithArgs(sqlmock.AnyArg(), "user-1", "bio", date, "10:00", "11:30", "planned", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnError(errors.New("unique violation"))
	mock.ExpectRollback()

	tx, err := db.BeginTxx(context.Background(), nil)
	require.NoError(t, err)

	sessions := []models.RevisionSession{
		{UserID: "user-1", SubjectID: "math", SessionDate: date, StartTime: "08:00", EndTime: "09:30"},
		{UserID: "user-1", SubjectID: "bio", SessionDate: date, StartTime: "10:00", EndTime: "11:30"},
	}
	err = repo.BulkCreateWithTx(context.Background(), tx, sessions)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insert revision session")
	assert.NotEmpty(t, sessions[0].ID)
	assert.Equal(t, models.SessionStatusPlanned, sessions[0].Status)
	require.NoError(t, tx.Rollback())

	assert.Error(t, repo.BulkCreateWithTx(context.Background(), nil, sessions))
	assert.NoError(t, mock.ExpectationsWereMet())
}
