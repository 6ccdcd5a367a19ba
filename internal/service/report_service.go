package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/classmood/moodgrid-api/internal/dto"
	"github.com/classmood/moodgrid-api/internal/models"
	appErrors "github.com/classmood/moodgrid-api/pkg/errors"
	"github.com/classmood/moodgrid-api/pkg/export"
	"github.com/classmood/moodgrid-api/pkg/jobs"
	"github.com/classmood/moodgrid-api/pkg/storage"
)

// ReportExporter renders an aggregated result into a downloadable file.
type ReportExporter interface {
	Render(report export.StatsReport) ([]byte, error)
}

// reportPayload travels with the queued job. Claims are carried so the
// worker re-evaluates scope access at generation time.
type reportPayload struct {
	JobID  string
	Claims *models.JWTClaims
	Scope  models.StatsScope
	Format string
	Query  dto.StatsQuery
}

// ReportService generates stats reports asynchronously. Jobs are held in
// memory; a restart forgets unfinished jobs, which callers handle by
// resubmitting.
type ReportService struct {
	stats     *StatsService
	store     *storage.LocalStorage
	signer    *storage.SignedURLSigner
	exporters map[string]ReportExporter
	validator *validator.Validate
	logger    *zap.Logger

	queue *jobs.Queue

	mu   sync.RWMutex
	jobs map[string]*models.ReportJob
}

// NewReportService constructs the service. Call Start before enqueuing.
func NewReportService(stats *StatsService, store *storage.LocalStorage, signer *storage.SignedURLSigner, validate *validator.Validate, logger *zap.Logger, workers, retries int) *ReportService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &ReportService{
		stats:     stats,
		store:     store,
		signer:    signer,
		exporters: statsExporters,
		validator: validate,
		logger:    logger,
		jobs:      make(map[string]*models.ReportJob),
	}
	s.queue = jobs.NewQueue("stats-reports", s.process, jobs.QueueConfig{
		Workers:    workers,
		MaxRetries: retries,
		Logger:     logger,
	})
	return s
}

// Start launches the report workers.
func (s *ReportService) Start(ctx context.Context) {
	s.queue.Start(ctx)
}

// Stop drains the report workers.
func (s *ReportService) Stop() {
	s.queue.Stop()
}

// Create validates the request, checks scope access and enqueues a job.
func (s *ReportService) Create(ctx context.Context, claims *models.JWTClaims, req dto.CreateReportRequest, query dto.StatsQuery) (*models.ReportJob, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid report payload")
	}

	scope, err := scopeFromRequest(req)
	if err != nil {
		return nil, err
	}
	if s.stats != nil && s.stats.authz != nil {
		if err := s.stats.authz.RequireViewStats(ctx, claims, scope); err != nil {
			return nil, err
		}
	}

	now := time.Now().UTC()
	job := &models.ReportJob{
		ID:          uuid.NewString(),
		RequestedBy: claims.UserID,
		Scope:       scope,
		Format:      req.Format,
		Status:      models.ReportJobPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	s.mu.Lock()
	s.jobs[job.ID] = job
	s.mu.Unlock()

	err = s.queue.Enqueue(jobs.Job{
		ID:   job.ID,
		Type: "stats-report",
		Payload: reportPayload{
			JobID:  job.ID,
			Claims: claims,
			Scope:  scope,
			Format: req.Format,
			Query:  query,
		},
	})
	if err != nil {
		s.fail(job.ID, "report queue unavailable")
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to enqueue report")
	}
	return s.snapshot(job.ID), nil
}

// Job returns the state of a report job visible to the caller.
func (s *ReportService) Job(claims *models.JWTClaims, jobID string) (*models.ReportJob, error) {
	job := s.snapshot(jobID)
	if job == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "report job not found")
	}
	if claims.Role != models.RoleSuperAdmin && job.RequestedBy != claims.UserID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "this report belongs to another user")
	}
	return job, nil
}

// ResolveDownload validates a signed token and returns the file path to
// stream plus its format.
func (s *ReportService) ResolveDownload(token string) (string, string, error) {
	jobID, relPath, _, err := s.signer.Parse(token, false)
	if err != nil {
		return "", "", appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid or expired download token")
	}
	job := s.snapshot(jobID)
	if job == nil || job.Status != models.ReportJobCompleted || job.FilePath != relPath {
		return "", "", appErrors.Clone(appErrors.ErrNotFound, "report no longer available")
	}
	return relPath, job.Format, nil
}

// process is the queue handler generating one report.
func (s *ReportService) process(ctx context.Context, job jobs.Job) error {
	payload, ok := job.Payload.(reportPayload)
	if !ok {
		s.logger.Error("report job carried an unexpected payload", zap.String("job_id", job.ID))
		return nil
	}

	s.transition(payload.JobID, models.ReportJobRunning)

	result, _, err := s.stats.Stats(ctx, payload.Claims, payload.Scope, payload.Query)
	if err != nil {
		s.fail(payload.JobID, "failed to aggregate statistics")
		return fmt.Errorf("aggregate stats for report %s: %w", payload.JobID, err)
	}

	exporter, ok := s.exporters[payload.Format]
	if !ok {
		s.fail(payload.JobID, fmt.Sprintf("unsupported format %q", payload.Format))
		return nil
	}

	data, err := exporter.Render(export.StatsReport{
		Title:       "Mood statistics",
		Scope:       scopeDescription(payload.Scope),
		GeneratedAt: time.Now().UTC(),
		Result:      *result,
	})
	if err != nil {
		s.fail(payload.JobID, "failed to render report")
		return fmt.Errorf("render report %s: %w", payload.JobID, err)
	}

	filename := fmt.Sprintf("%s/%s.%s", time.Now().UTC().Format("2006-01-02"), payload.JobID, payload.Format)
	relPath, err := s.store.Save(filename, data)
	if err != nil {
		s.fail(payload.JobID, "failed to store report")
		return fmt.Errorf("store report %s: %w", payload.JobID, err)
	}

	token, expiresAt, err := s.signer.Generate(payload.JobID, relPath)
	if err != nil {
		s.fail(payload.JobID, "failed to sign download link")
		return fmt.Errorf("sign report %s: %w", payload.JobID, err)
	}

	s.mu.Lock()
	if stored, ok := s.jobs[payload.JobID]; ok {
		stored.Status = models.ReportJobCompleted
		stored.FilePath = relPath
		stored.DownloadURL = fmt.Sprintf("/api/v1/reports/download/%s", token)
		stored.ExpiresAt = &expiresAt
		stored.UpdatedAt = time.Now().UTC()
	}
	s.mu.Unlock()
	return nil
}

func (s *ReportService) transition(jobID string, status models.ReportJobStatus) {
	s.mu.Lock()
	if job, ok := s.jobs[jobID]; ok {
		job.Status = status
		job.UpdatedAt = time.Now().UTC()
	}
	s.mu.Unlock()
}

func (s *ReportService) fail(jobID, reason string) {
	s.mu.Lock()
	if job, ok := s.jobs[jobID]; ok {
		job.Status = models.ReportJobFailed
		job.Error = reason
		job.UpdatedAt = time.Now().UTC()
	}
	s.mu.Unlock()
}

func (s *ReportService) snapshot(jobID string) *models.ReportJob {
	s.mu.RLock()
	defer s.mu.RUnlock()
	job, ok := s.jobs[jobID]
	if !ok {
		return nil
	}
	copied := *job
	return &copied
}

func scopeFromRequest(req dto.CreateReportRequest) (models.StatsScope, error) {
	switch req.Scope {
	case "self":
		return models.StatsScope{Kind: models.ScopeSelf}, nil
	case "student":
		if req.StudentID == "" {
			return models.StatsScope{}, appErrors.Clone(appErrors.ErrValidation, "student_id is required for student scope")
		}
		return models.StatsScope{Kind: models.ScopeStudent, StudentID: req.StudentID}, nil
	case "group":
		if req.GroupID == 0 {
			return models.StatsScope{}, appErrors.Clone(appErrors.ErrValidation, "group_id is required for group scope")
		}
		return models.StatsScope{Kind: models.ScopeGroup, GroupID: req.GroupID}, nil
	case "session":
		if req.SessionID == 0 {
			return models.StatsScope{}, appErrors.Clone(appErrors.ErrValidation, "session_id is required for session scope")
		}
		return models.StatsScope{Kind: models.ScopeSession, SessionID: req.SessionID}, nil
	default:
		return models.StatsScope{}, appErrors.Clone(appErrors.ErrValidation, "unknown report scope")
	}
}

func scopeDescription(scope models.StatsScope) string {
	switch scope.Kind {
	case models.ScopeStudent:
		return fmt.Sprintf("student %s", scope.StudentID)
	case models.ScopeGroup:
		return fmt.Sprintf("group %d", scope.GroupID)
	case models.ScopeSession:
		return fmt.Sprintf("session %d", scope.SessionID)
	default:
		return "self"
	}
}
