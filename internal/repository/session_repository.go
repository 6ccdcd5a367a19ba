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

// SessionRepository manages PIN-joinable sessions. Uniqueness of active
// PINs is enforced by a partial unique index; violations surface as a
// conflict so the caller can retry with a fresh code.
type SessionRepository struct {
	db *sqlx.DB
}

// NewSessionRepository instantiates the repository.
func NewSessionRepository(db *sqlx.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

const uniqueViolation = "23505"

// Create inserts an active session and fills in its id.
func (r *SessionRepository) Create(ctx context.Context, session *models.Session) error {
	query := `INSERT INTO sessions (pin, owner_id, active, created_at)
        VALUES ($1, $2, $3, $4) RETURNING id, created_at`
	row := r.db.QueryRowxContext(ctx, query, session.Pin, session.OwnerID, session.Active, time.Now().UTC())
	if err := row.Scan(&session.ID, &session.CreatedAt); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation {
			return appErrors.Wrap(err, appErrors.ErrConflict.Code, appErrors.ErrConflict.Status, "pin already in use")
		}
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

// ActivePinExists reports whether an active session currently holds pin.
func (r *SessionRepository) ActivePinExists(ctx context.Context, pin string) (bool, error) {
	var exists bool
	query := "SELECT EXISTS(SELECT 1 FROM sessions WHERE pin = $1 AND active = TRUE)"
	if err := r.db.GetContext(ctx, &exists, query, pin); err != nil {
		return false, fmt.Errorf("check pin: %w", err)
	}
	return exists, nil
}

// FindActiveByPin resolves a join code to its active session.
func (r *SessionRepository) FindActiveByPin(ctx context.Context, pin string) (*models.Session, error) {
	var session models.Session
	query := "SELECT id, pin, owner_id, active, created_at FROM sessions WHERE pin = $1 AND active = TRUE"
	if err := r.db.GetContext(ctx, &session, query, pin); err != nil {
		return nil, err
	}
	return &session, nil
}

// FindByID fetches a session regardless of its active flag.
func (r *SessionRepository) FindByID(ctx context.Context, id int64) (*models.Session, error) {
	var session models.Session
	query := "SELECT id, pin, owner_id, active, created_at FROM sessions WHERE id = $1"
	if err := r.db.GetContext(ctx, &session, query, id); err != nil {
		return nil, err
	}
	return &session, nil
}

// ListByOwner returns all sessions created by a user, newest first.
func (r *SessionRepository) ListByOwner(ctx context.Context, ownerID string) ([]models.Session, error) {
	var sessions []models.Session
	query := "SELECT id, pin, owner_id, active, created_at FROM sessions WHERE owner_id = $1 ORDER BY created_at DESC"
	if err := r.db.SelectContext(ctx, &sessions, query, ownerID); err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	return sessions, nil
}

// Deactivate retires a session, freeing its pin for reuse.
func (r *SessionRepository) Deactivate(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, "UPDATE sessions SET active = FALSE WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("deactivate session: %w", err)
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
