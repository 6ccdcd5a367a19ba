package models

import "time"

// ReportJobStatus tracks the lifecycle of an async stats report.
type ReportJobStatus string

const (
	ReportJobPending   ReportJobStatus = "PENDING"
	ReportJobRunning   ReportJobStatus = "RUNNING"
	ReportJobCompleted ReportJobStatus = "COMPLETED"
	ReportJobFailed    ReportJobStatus = "FAILED"
)

// ReportJob describes one queued stats report generation request.
type ReportJob struct {
	ID          string          `json:"id"`
	RequestedBy string          `json:"requested_by"`
	Scope       StatsScope      `json:"scope"`
	Format      string          `json:"format"`
	Status      ReportJobStatus `json:"status"`
	FilePath    string          `json:"-"`
	DownloadURL string          `json:"download_url,omitempty"`
	ExpiresAt   *time.Time      `json:"expires_at,omitempty"`
	Error       string          `json:"error,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}
