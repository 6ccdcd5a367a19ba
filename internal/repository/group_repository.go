package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/classmood/moodgrid-api/internal/models"
	appErrors "github.com/classmood/moodgrid-api/pkg/errors"
)

// GroupRepository manages teacher-owned student groups.
type GroupRepository struct {
	db *sqlx.DB
}

// NewGroupRepository instantiates the repository.
func NewGroupRepository(db *sqlx.DB) *GroupRepository {
	return &GroupRepository{db: db}
}

// Create inserts a group and fills in its id.
func (r *GroupRepository) Create(ctx context.Context, group *models.Group) error {
	now := time.Now().UTC()
	query := `INSERT INTO groups (name, teacher_id, created_at, updated_at)
        VALUES ($1, $2, $3, $3) RETURNING id, created_at, updated_at`
	row := r.db.QueryRowxContext(ctx, query, group.Name, group.TeacherID, now)
	if err := row.Scan(&group.ID, &group.CreatedAt, &group.UpdatedAt); err != nil {
		return fmt.Errorf("insert group: %w", err)
	}
	return nil
}

// FindByID fetches a single group.
func (r *GroupRepository) FindByID(ctx context.Context, id int64) (*models.Group, error) {
	var group models.Group
	query := "SELECT id, name, teacher_id, created_at, updated_at FROM groups WHERE id = $1"
	if err := r.db.GetContext(ctx, &group, query, id); err != nil {
		return nil, err
	}
	return &group, nil
}

// ListByTeacher returns the groups a teacher owns, newest first.
func (r *GroupRepository) ListByTeacher(ctx context.Context, teacherID string) ([]models.Group, error) {
	var groups []models.Group
	query := "SELECT id, name, teacher_id, created_at, updated_at FROM groups WHERE teacher_id = $1 ORDER BY created_at DESC"
	if err := r.db.SelectContext(ctx, &groups, query, teacherID); err != nil {
		return nil, fmt.Errorf("list groups: %w", err)
	}
	return groups, nil
}

// AddMember enrols a student. Adding the same student twice is a conflict.
func (r *GroupRepository) AddMember(ctx context.Context, groupID int64, studentID string) error {
	query := "INSERT INTO group_members (group_id, student_id, created_at) VALUES ($1, $2, $3)"
	if _, err := r.db.ExecContext(ctx, query, groupID, studentID, time.Now().UTC()); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation {
			return appErrors.Wrap(err, appErrors.ErrConflict.Code, appErrors.ErrConflict.Status, "student is already a member")
		}
		return fmt.Errorf("add member: %w", err)
	}
	return nil
}

// RemoveMember drops a student from a group.
func (r *GroupRepository) RemoveMember(ctx context.Context, groupID int64, studentID string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM group_members WHERE group_id = $1 AND student_id = $2", groupID, studentID)
	if err != nil {
		return fmt.Errorf("remove member: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return appErrors.ErrNotFound
	}
	return nil
}

// ListMembers returns the students enrolled in a group.
func (r *GroupRepository) ListMembers(ctx context.Context, groupID int64) ([]models.UserInfo, error) {
	var members []models.UserInfo
	query := `SELECT u.id, u.email, u.full_name, u.role FROM users u
        JOIN group_members gm ON gm.student_id = u.id
        WHERE gm.group_id = $1 ORDER BY u.full_name ASC`
	if err := r.db.SelectContext(ctx, &members, query, groupID); err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	return members, nil
}

// IsOwner reports whether teacherID owns groupID.
func (r *GroupRepository) IsOwner(ctx context.Context, groupID int64, teacherID string) (bool, error) {
	var owner bool
	query := "SELECT EXISTS(SELECT 1 FROM groups WHERE id = $1 AND teacher_id = $2)"
	if err := r.db.GetContext(ctx, &owner, query, groupID, teacherID); err != nil {
		return false, fmt.Errorf("check group owner: %w", err)
	}
	return owner, nil
}

// TeacherHasStudent reports whether the student belongs to any group the
// teacher owns.
func (r *GroupRepository) TeacherHasStudent(ctx context.Context, teacherID, studentID string) (bool, error) {
	var linked bool
	query := `SELECT EXISTS(SELECT 1 FROM group_members gm
        JOIN groups g ON g.id = gm.group_id
        WHERE g.teacher_id = $1 AND gm.student_id = $2)`
	if err := r.db.GetContext(ctx, &linked, query, teacherID, studentID); err != nil {
		return false, fmt.Errorf("check teacher student link: %w", err)
	}
	return linked, nil
}
