package dto

// CreateReportRequest enqueues an asynchronous stats report.
type CreateReportRequest struct {
	Scope     string `json:"scope" validate:"required,oneof=self student group session"`
	StudentID string `json:"student_id"`
	GroupID   int64  `json:"group_id"`
	SessionID int64  `json:"session_id"`
	Format    string `json:"format" validate:"required,oneof=csv pdf"`
}

// MinigameSolveRequest records completed mini-game solves.
type MinigameSolveRequest struct {
	Count int `json:"count" validate:"omitempty,min=1,max=100"`
}

// MinigameCounters reports the caller's gamification counters.
type MinigameCounters struct {
	AllTimeSolves int64 `json:"all_time_solves"`
	SolvesToday   int64 `json:"solves_today"`
}
