package models

import "time"

// PinLength is the number of digits in a session join code.
const PinLength = 6

// Session is an ephemeral group scope joined by PIN. PINs are unique
// among active sessions only; retired sessions keep their historical
// value and stay referenced by old submissions.
type Session struct {
	ID        int64     `db:"id" json:"id"`
	Pin       string    `db:"pin" json:"pin"`
	OwnerID   *string   `db:"owner_id" json:"owner_id,omitempty"`
	Active    bool      `db:"active" json:"active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
