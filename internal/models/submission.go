package models

import "time"

// GridSize is the fixed width and height of the mood grid.
const GridSize = 10

// MoodSubmission is a single recorded mood. x runs left to right
// (0 = least pleasant), y runs top to bottom (0 = highest energy).
// ChosenAt is the client's local moment reinterpreted as an absolute
// instant; CreatedAt is server receipt time and drives throttling.
type MoodSubmission struct {
	ID        int64     `db:"id" json:"id"`
	UserID    *string   `db:"user_id" json:"user_id,omitempty"`
	X         int       `db:"x" json:"x"`
	Y         int       `db:"y" json:"y"`
	Label     *string   `db:"label" json:"label,omitempty"`
	ChosenAt  time.Time `db:"chosen_at" json:"chosen_at"`
	IP        *string   `db:"ip" json:"-"`
	SessionID *int64    `db:"session_id" json:"session_id,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// InBounds reports whether both coordinates fall inside the grid.
func (m MoodSubmission) InBounds() bool {
	return m.X >= 0 && m.X < GridSize && m.Y >= 0 && m.Y < GridSize
}

// SubmissionFilter captures the scope and optional range filters applied
// before aggregation. TimeFrom/TimeTo are minutes after midnight of the
// UTC rendering of chosen_at and may wrap past midnight.
type SubmissionFilter struct {
	UserID    string
	GroupID   int64
	SessionID int64
	DateFrom  *time.Time
	DateTo    *time.Time
	TimeFrom  *int
	TimeTo    *int
}

// ThrottleDecision is the outcome of the submission cooldown check.
type ThrottleDecision struct {
	Allowed           bool `json:"allowed"`
	RetryAfterSeconds int  `json:"retry_after_seconds"`
}
