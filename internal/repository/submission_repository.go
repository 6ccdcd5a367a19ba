package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/classmood/moodgrid-api/internal/models"
)

// SubmissionRepository persists mood submissions.
type SubmissionRepository struct {
	db *sqlx.DB
}

// NewSubmissionRepository instantiates the repository.
func NewSubmissionRepository(db *sqlx.DB) *SubmissionRepository {
	return &SubmissionRepository{db: db}
}

// Create inserts a submission and fills in its id and receipt time.
func (r *SubmissionRepository) Create(ctx context.Context, sub *models.MoodSubmission) error {
	query := `INSERT INTO mood_submissions (user_id, x, y, label, chosen_at, ip, session_id, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id, created_at`
	now := time.Now().UTC()
	row := r.db.QueryRowxContext(ctx, query, sub.UserID, sub.X, sub.Y, sub.Label, sub.ChosenAt.UTC(), sub.IP, sub.SessionID, now)
	if err := row.Scan(&sub.ID, &sub.CreatedAt); err != nil {
		return fmt.Errorf("insert submission: %w", err)
	}
	return nil
}

const submissionColumns = "id, user_id, x, y, label, chosen_at, ip, session_id, created_at"

// LatestByUser returns the most recent submission by server receipt time.
func (r *SubmissionRepository) LatestByUser(ctx context.Context, userID string) (*models.MoodSubmission, error) {
	query := fmt.Sprintf("SELECT %s FROM mood_submissions WHERE user_id = $1 ORDER BY created_at DESC LIMIT 1", submissionColumns)
	var sub models.MoodSubmission
	if err := r.db.GetContext(ctx, &sub, query, userID); err != nil {
		return nil, err
	}
	return &sub, nil
}

// LatestByIP returns the most recent anonymous submission from an address.
func (r *SubmissionRepository) LatestByIP(ctx context.Context, ip string) (*models.MoodSubmission, error) {
	query := fmt.Sprintf("SELECT %s FROM mood_submissions WHERE user_id IS NULL AND ip = $1 ORDER BY created_at DESC LIMIT 1", submissionColumns)
	var sub models.MoodSubmission
	if err := r.db.GetContext(ctx, &sub, query, ip); err != nil {
		return nil, err
	}
	return &sub, nil
}

// ListByFilter fetches submissions for a stats scope with optional date
// bounds on chosen_at. Ordered by chosen_at so downstream tie-breaks are
// chronological.
func (r *SubmissionRepository) ListByFilter(ctx context.Context, filter models.SubmissionFilter) ([]models.MoodSubmission, error) {
	var builder strings.Builder
	builder.WriteString("SELECT s.id, s.user_id, s.x, s.y, s.label, s.chosen_at, s.ip, s.session_id, s.created_at FROM mood_submissions s")
	if filter.GroupID != 0 {
		builder.WriteString(" JOIN group_members gm ON gm.student_id = s.user_id")
	}
	builder.WriteString(" WHERE 1=1")

	var args []interface{}
	if filter.UserID != "" {
		args = append(args, filter.UserID)
		builder.WriteString(fmt.Sprintf(" AND s.user_id = $%d", len(args)))
	}
	if filter.GroupID != 0 {
		args = append(args, filter.GroupID)
		builder.WriteString(fmt.Sprintf(" AND gm.group_id = $%d", len(args)))
	}
	if filter.SessionID != 0 {
		args = append(args, filter.SessionID)
		builder.WriteString(fmt.Sprintf(" AND s.session_id = $%d", len(args)))
	}
	if filter.DateFrom != nil {
		args = append(args, *filter.DateFrom)
		builder.WriteString(fmt.Sprintf(" AND s.chosen_at >= $%d", len(args)))
	}
	if filter.DateTo != nil {
		args = append(args, *filter.DateTo)
		builder.WriteString(fmt.Sprintf(" AND s.chosen_at <= $%d", len(args)))
	}
	builder.WriteString(" ORDER BY s.chosen_at ASC, s.id ASC")

	var subs []models.MoodSubmission
	if err := r.db.SelectContext(ctx, &subs, builder.String(), args...); err != nil {
		return nil, fmt.Errorf("query submissions: %w", err)
	}
	return subs, nil
}
