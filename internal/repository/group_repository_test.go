package repository

import (
	"context"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/classmood/moodgrid-api/pkg/errors"
)

func TestGroupRepositoryTeacherHasStudent(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewGroupRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS(SELECT 1 FROM group_members gm")).
		WithArgs("t-1", "s-1").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	linked, err := repo.TeacherHasStudent(context.Background(), "t-1", "s-1")
	require.NoError(t, err)
	assert.True(t, linked)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGroupRepositoryAddMemberDuplicateIsConflict(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewGroupRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO group_members")).
		WillReturnError(&pq.Error{Code: "23505"})

	err := repo.AddMember(context.Background(), 4, "s-1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGroupRepositoryIsOwner(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewGroupRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS(SELECT 1 FROM groups WHERE id = $1 AND teacher_id = $2)")).
		WithArgs(int64(4), "t-1").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	owner, err := repo.IsOwner(context.Background(), 4, "t-1")
	require.NoError(t, err)
	assert.False(t, owner)
	require.NoError(t, mock.ExpectationsWereMet())
}
