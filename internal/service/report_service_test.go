package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/classmood/moodgrid-api/internal/dto"
	"github.com/classmood/moodgrid-api/internal/models"
	appErrors "github.com/classmood/moodgrid-api/pkg/errors"
	"github.com/classmood/moodgrid-api/pkg/storage"
)

func newReportTestService(t *testing.T, repo *fakeSubmissionRepo) *ReportService {
	t.Helper()
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	signer := storage.NewSignedURLSigner("report-test-secret", time.Hour)
	stats := NewStatsService(repo, nil, nil, nil, nil, 0)
	return NewReportService(stats, store, signer, nil, nil, 1, 0)
}

func TestReportServiceCompletesCSVJob(t *testing.T) {
	repo := &fakeSubmissionRepo{list: []models.MoodSubmission{
		sub(2, 3, atClock(9, 15)),
		sub(7, 1, atClock(14, 45)),
	}}
	svc := newReportTestService(t, repo)
	svc.Start(context.Background())
	defer svc.Stop()

	claims := &models.JWTClaims{UserID: "u-1", Role: models.RoleStudent}
	job, err := svc.Create(context.Background(), claims, dto.CreateReportRequest{Scope: "self", Format: "csv"}, dto.StatsQuery{})
	require.NoError(t, err)
	require.NotEmpty(t, job.ID)

	require.Eventually(t, func() bool {
		current, err := svc.Job(claims, job.ID)
		return err == nil && current.Status == models.ReportJobCompleted
	}, 3*time.Second, 10*time.Millisecond)

	done, err := svc.Job(claims, job.ID)
	require.NoError(t, err)
	assert.Equal(t, "csv", done.Format)
	assert.NotEmpty(t, done.FilePath)
	require.NotNil(t, done.ExpiresAt)

	const prefix = "/api/v1/reports/download/"
	require.True(t, strings.HasPrefix(done.DownloadURL, prefix))
	token := strings.TrimPrefix(done.DownloadURL, prefix)

	relPath, format, err := svc.ResolveDownload(token)
	require.NoError(t, err)
	assert.Equal(t, done.FilePath, relPath)
	assert.Equal(t, "csv", format)
}

func TestReportServiceRejectsBadScopes(t *testing.T) {
	svc := newReportTestService(t, &fakeSubmissionRepo{})
	claims := &models.JWTClaims{UserID: "u-1", Role: models.RoleTeacher}

	cases := []struct {
		name string
		req  dto.CreateReportRequest
	}{
		{"unknown scope", dto.CreateReportRequest{Scope: "school", Format: "csv"}},
		{"unknown format", dto.CreateReportRequest{Scope: "self", Format: "xlsx"}},
		{"student scope without id", dto.CreateReportRequest{Scope: "student", Format: "pdf"}},
		{"group scope without id", dto.CreateReportRequest{Scope: "group", Format: "csv"}},
		{"session scope without id", dto.CreateReportRequest{Scope: "session", Format: "csv"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), claims, tc.req, dto.StatsQuery{})
			require.Error(t, err)
			assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
		})
	}
}

func TestReportJobVisibility(t *testing.T) {
	repo := &fakeSubmissionRepo{list: []models.MoodSubmission{sub(5, 5, atClock(10, 0))}}
	svc := newReportTestService(t, repo)
	svc.Start(context.Background())
	defer svc.Stop()

	owner := &models.JWTClaims{UserID: "u-1", Role: models.RoleStudent}
	job, err := svc.Create(context.Background(), owner, dto.CreateReportRequest{Scope: "self", Format: "pdf"}, dto.StatsQuery{})
	require.NoError(t, err)

	other := &models.JWTClaims{UserID: "u-2", Role: models.RoleStudent}
	_, err = svc.Job(other, job.ID)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)

	admin := &models.JWTClaims{UserID: "a-1", Role: models.RoleSuperAdmin}
	_, err = svc.Job(admin, job.ID)
	require.NoError(t, err)

	_, err = svc.Job(owner, "missing-job")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestResolveDownloadRejectsForgedTokens(t *testing.T) {
	svc := newReportTestService(t, &fakeSubmissionRepo{})
	_, _, err := svc.ResolveDownload("not-a-real-token")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}
