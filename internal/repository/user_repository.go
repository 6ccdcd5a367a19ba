package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/classmood/moodgrid-api/internal/models"
)

// UserRepository provides access to users and their refresh tokens.
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository instantiates the repository.
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = "id, email, password_hash, full_name, role, active, minigame_solves, last_login, created_at, updated_at"

// FindByEmail looks a user up by email address.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	query := fmt.Sprintf("SELECT %s FROM users WHERE email = $1", userColumns)
	if err := r.db.GetContext(ctx, &user, query, email); err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByID looks a user up by primary key.
func (r *UserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	query := fmt.Sprintf("SELECT %s FROM users WHERE id = $1", userColumns)
	if err := r.db.GetContext(ctx, &user, query, id); err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateLastLogin records the most recent successful login.
func (r *UserRepository) UpdateLastLogin(ctx context.Context, id string, ts time.Time) error {
	_, err := r.db.ExecContext(ctx, "UPDATE users SET last_login = $1, updated_at = $1 WHERE id = $2", ts, id)
	if err != nil {
		return fmt.Errorf("update last login: %w", err)
	}
	return nil
}

// IncrementMinigameSolves bumps the persistent solve counter and returns
// the new total.
func (r *UserRepository) IncrementMinigameSolves(ctx context.Context, id string, delta int64) (int64, error) {
	var total int64
	query := "UPDATE users SET minigame_solves = minigame_solves + $1, updated_at = $2 WHERE id = $3 RETURNING minigame_solves"
	if err := r.db.GetContext(ctx, &total, query, delta, time.Now().UTC(), id); err != nil {
		return 0, fmt.Errorf("increment solves: %w", err)
	}
	return total, nil
}

// MinigameSolves reads a user's persistent solve counter.
func (r *UserRepository) MinigameSolves(ctx context.Context, id string) (int64, error) {
	var total int64
	if err := r.db.GetContext(ctx, &total, "SELECT minigame_solves FROM users WHERE id = $1", id); err != nil {
		return 0, err
	}
	return total, nil
}

// CreateRefreshToken persists a refresh token.
func (r *UserRepository) CreateRefreshToken(ctx context.Context, token *models.RefreshToken) error {
	query := `INSERT INTO refresh_tokens (id, user_id, token, expires_at, created_at, revoked, ip_address, user_agent)
        VALUES (:id, :user_id, :token, :expires_at, :created_at, :revoked, :ip_address, :user_agent)`
	if _, err := r.db.NamedExecContext(ctx, query, token); err != nil {
		return fmt.Errorf("insert refresh token: %w", err)
	}
	return nil
}

// FindRefreshToken looks a refresh token up by its opaque value.
func (r *UserRepository) FindRefreshToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	var stored models.RefreshToken
	query := `SELECT id, user_id, token, expires_at, created_at, revoked, ip_address, user_agent
        FROM refresh_tokens WHERE token = $1`
	if err := r.db.GetContext(ctx, &stored, query, token); err != nil {
		return nil, err
	}
	return &stored, nil
}

// RevokeRefreshToken marks a refresh token as spent.
func (r *UserRepository) RevokeRefreshToken(ctx context.Context, id string, revokedAt time.Time) error {
	_, err := r.db.ExecContext(ctx, "UPDATE refresh_tokens SET revoked = TRUE, revoked_at = $1 WHERE id = $2", revokedAt, id)
	if err != nil {
		return fmt.Errorf("revoke refresh token: %w", err)
	}
	return nil
}
