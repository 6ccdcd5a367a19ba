package dto

// JoinSessionRequest identifies a session by its exact join code.
type JoinSessionRequest struct {
	Pin string `json:"pin" validate:"required,len=6,numeric"`
}

// SessionCreated is the response for a freshly created session.
type SessionCreated struct {
	SessionID int64  `json:"session_id"`
	Pin       string `json:"pin"`
}

// SessionJoined is the response for a successful join.
type SessionJoined struct {
	SessionID int64 `json:"session_id"`
}
