package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/classmood/moodgrid-api/internal/models"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestSubmissionRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewSubmissionRepository(db)

	now := time.Now().UTC()
	userID := "u-1"
	sub := &models.MoodSubmission{UserID: &userID, X: 3, Y: 4, ChosenAt: now}

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO mood_submissions")).
		WithArgs(&userID, 3, 4, nil, sub.ChosenAt.UTC(), nil, nil, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(int64(7), now))

	require.NoError(t, repo.Create(context.Background(), sub))
	assert.Equal(t, int64(7), sub.ID)
	assert.Equal(t, now, sub.CreatedAt)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSubmissionRepositoryLatestByUser(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewSubmissionRepository(db)

	now := time.Now().UTC()
	rows := sqlmock.NewRows([]string{"id", "user_id", "x", "y", "label", "chosen_at", "ip", "session_id", "created_at"}).
		AddRow(int64(1), "u-1", 2, 3, nil, now, nil, nil, now)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, user_id, x, y, label, chosen_at, ip, session_id, created_at FROM mood_submissions WHERE user_id = $1 ORDER BY created_at DESC LIMIT 1")).
		WithArgs("u-1").
		WillReturnRows(rows)

	sub, err := repo.LatestByUser(context.Background(), "u-1")
	require.NoError(t, err)
	assert.Equal(t, 2, sub.X)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSubmissionRepositoryListByFilterUser(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewSubmissionRepository(db)

	from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "user_id", "x", "y", "label", "chosen_at", "ip", "session_id", "created_at"}).
		AddRow(int64(1), "u-1", 5, 5, nil, from, nil, nil, from)
	mock.ExpectQuery(regexp.QuoteMeta("FROM mood_submissions s WHERE 1=1 AND s.user_id = $1 AND s.chosen_at >= $2 ORDER BY s.chosen_at ASC, s.id ASC")).
		WithArgs("u-1", from).
		WillReturnRows(rows)

	subs, err := repo.ListByFilter(context.Background(), models.SubmissionFilter{UserID: "u-1", DateFrom: &from})
	require.NoError(t, err)
	require.Len(t, subs, 1)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSubmissionRepositoryListByFilterGroupJoins(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewSubmissionRepository(db)

	rows := sqlmock.NewRows([]string{"id", "user_id", "x", "y", "label", "chosen_at", "ip", "session_id", "created_at"})
	mock.ExpectQuery(regexp.QuoteMeta("JOIN group_members gm ON gm.student_id = s.user_id WHERE 1=1 AND gm.group_id = $1")).
		WithArgs(int64(12)).
		WillReturnRows(rows)

	subs, err := repo.ListByFilter(context.Background(), models.SubmissionFilter{GroupID: 12})
	require.NoError(t, err)
	assert.Empty(t, subs)
	require.NoError(t, mock.ExpectationsWereMet())
}
