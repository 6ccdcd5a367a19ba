package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/classmood/moodgrid-api/internal/dto"
	"github.com/classmood/moodgrid-api/internal/models"
	appErrors "github.com/classmood/moodgrid-api/pkg/errors"
)

type fakeSubmissionRepo struct {
	created      []*models.MoodSubmission
	latestUser   *models.MoodSubmission
	latestIP     *models.MoodSubmission
	latestErr    error
	listedFilter models.SubmissionFilter
	list         []models.MoodSubmission
}

func (f *fakeSubmissionRepo) Create(_ context.Context, sub *models.MoodSubmission) error {
	sub.ID = int64(len(f.created) + 1)
	sub.CreatedAt = time.Now().UTC()
	f.created = append(f.created, sub)
	return nil
}

func (f *fakeSubmissionRepo) LatestByUser(context.Context, string) (*models.MoodSubmission, error) {
	if f.latestErr != nil {
		return nil, f.latestErr
	}
	return f.latestUser, nil
}

func (f *fakeSubmissionRepo) LatestByIP(context.Context, string) (*models.MoodSubmission, error) {
	if f.latestErr != nil {
		return nil, f.latestErr
	}
	return f.latestIP, nil
}

func (f *fakeSubmissionRepo) ListByFilter(_ context.Context, filter models.SubmissionFilter) ([]models.MoodSubmission, error) {
	f.listedFilter = filter
	return f.list, nil
}

type fakeSessionResolver struct {
	resolved *int64
	raw      string
}

func (f *fakeSessionResolver) ResolveSessionRef(_ context.Context, raw string) *int64 {
	f.raw = raw
	return f.resolved
}

type fakeLabelSource struct{ label string }

func (f *fakeLabelSource) LabelAt(int, int) string { return f.label }

func intPtr(v int) *int { return &v }

func TestShouldThrottle(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

	t.Run("no previous submission", func(t *testing.T) {
		decision := ShouldThrottle(nil, now, DefaultCooldown)
		assert.True(t, decision.Allowed)
	})

	t.Run("inside cooldown", func(t *testing.T) {
		last := now.Add(-9 * time.Minute)
		decision := ShouldThrottle(&last, now, DefaultCooldown)
		assert.False(t, decision.Allowed)
		assert.Equal(t, 60, decision.RetryAfterSeconds)
	})

	t.Run("outside cooldown", func(t *testing.T) {
		last := now.Add(-11 * time.Minute)
		decision := ShouldThrottle(&last, now, DefaultCooldown)
		assert.True(t, decision.Allowed)
	})

	t.Run("exactly at cutoff", func(t *testing.T) {
		last := now.Add(-DefaultCooldown)
		decision := ShouldThrottle(&last, now, DefaultCooldown)
		assert.True(t, decision.Allowed)
	})

	t.Run("retry seconds round up", func(t *testing.T) {
		last := now.Add(-9*time.Minute - 30*time.Second - 200*time.Millisecond)
		decision := ShouldThrottle(&last, now, DefaultCooldown)
		assert.False(t, decision.Allowed)
		assert.Equal(t, 30, decision.RetryAfterSeconds)
	})
}

func TestResolveChosenAt(t *testing.T) {
	serverNow := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

	t.Run("nil falls back to server clock", func(t *testing.T) {
		assert.Equal(t, serverNow, ResolveChosenAt(nil, nil, serverNow))
	})

	t.Run("second epoch", func(t *testing.T) {
		raw := float64(1700000000)
		got := ResolveChosenAt(&raw, nil, serverNow)
		assert.Equal(t, time.Unix(1700000000, 0).UTC(), got)
	})

	t.Run("millisecond epoch detected by magnitude", func(t *testing.T) {
		raw := float64(1700000000000)
		got := ResolveChosenAt(&raw, nil, serverNow)
		assert.Equal(t, time.Unix(1700000000, 0).UTC(), got)
	})

	t.Run("offset shifts toward the client wall clock", func(t *testing.T) {
		raw := float64(1700000000)
		got := ResolveChosenAt(&raw, intPtr(-420), serverNow)
		want := time.Unix(1700000000, 0).UTC().Add(420 * time.Minute)
		assert.Equal(t, want, got)
	})

	t.Run("absurd magnitude falls back", func(t *testing.T) {
		raw := float64(1e16)
		assert.Equal(t, serverNow, ResolveChosenAt(&raw, nil, serverNow))
	})

	t.Run("out of range year falls back", func(t *testing.T) {
		raw := float64(-63000000000) // well before year 1
		assert.Equal(t, serverNow, ResolveChosenAt(&raw, nil, serverNow))
	})
}

func TestArgCoercion(t *testing.T) {
	assert.Nil(t, floatArg("yesterday"))
	assert.Nil(t, floatArg(nil))
	assert.Nil(t, floatArg(map[string]interface{}{}))

	f := floatArg(float64(12.5))
	require.NotNil(t, f)
	assert.Equal(t, 12.5, *f)

	i := intArg(float64(-420))
	require.NotNil(t, i)
	assert.Equal(t, -420, *i)
	assert.Nil(t, intArg("PST"))
}

func TestRecordValidatesCoordinates(t *testing.T) {
	svc := NewSubmissionService(&fakeSubmissionRepo{}, nil, nil, nil, nil, 0)

	_, err := svc.Record(context.Background(), dto.SubmitMoodRequest{X: intPtr(3)}, nil, "10.0.0.1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	_, err = svc.Record(context.Background(), dto.SubmitMoodRequest{X: intPtr(10), Y: intPtr(0)}, nil, "10.0.0.1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	_, err = svc.Record(context.Background(), dto.SubmitMoodRequest{X: intPtr(0), Y: intPtr(-1)}, nil, "10.0.0.1")
	require.Error(t, err)
}

func TestRecordThrottlesByIdentity(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	repo := &fakeSubmissionRepo{
		latestUser: &models.MoodSubmission{CreatedAt: now.Add(-5 * time.Minute)},
	}
	svc := NewSubmissionService(repo, nil, nil, nil, nil, DefaultCooldown)
	svc.now = func() time.Time { return now }

	claims := &models.JWTClaims{UserID: "u-1", Role: models.RoleStudent}
	_, err := svc.Record(context.Background(), dto.SubmitMoodRequest{X: intPtr(1), Y: intPtr(1)}, claims, "10.0.0.1")
	require.Error(t, err)

	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrRateLimited.Code, appErr.Code)
	assert.Equal(t, 300, appErr.RetryAfter)
	assert.Empty(t, repo.created)
}

func TestRecordAnonymousThrottledPerIP(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	repo := &fakeSubmissionRepo{
		latestIP: &models.MoodSubmission{CreatedAt: now.Add(-2 * time.Minute)},
	}
	svc := NewSubmissionService(repo, nil, nil, nil, nil, DefaultCooldown)
	svc.now = func() time.Time { return now }

	_, err := svc.Record(context.Background(), dto.SubmitMoodRequest{X: intPtr(1), Y: intPtr(1)}, nil, "10.0.0.1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrRateLimited.Code, appErrors.FromError(err).Code)
}

func TestRecordPersistsWithResolvedFields(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	repo := &fakeSubmissionRepo{latestErr: sql.ErrNoRows}
	sessionID := int64(42)
	resolver := &fakeSessionResolver{resolved: &sessionID}
	labels := &fakeLabelSource{label: "content"}

	svc := NewSubmissionService(repo, resolver, labels, nil, nil, DefaultCooldown)
	svc.now = func() time.Time { return now }

	claims := &models.JWTClaims{UserID: "u-1", Role: models.RoleStudent}
	req := dto.SubmitMoodRequest{
		X:               intPtr(6),
		Y:               intPtr(3),
		TS:              float64(1700000000),
		TZOffsetMinutes: float64(0),
		SessionID:       "42",
	}

	sub, err := svc.Record(context.Background(), req, claims, "10.0.0.1")
	require.NoError(t, err)
	require.Len(t, repo.created, 1)

	assert.Equal(t, 6, sub.X)
	assert.Equal(t, 3, sub.Y)
	require.NotNil(t, sub.UserID)
	assert.Equal(t, "u-1", *sub.UserID)
	require.NotNil(t, sub.Label)
	assert.Equal(t, "content", *sub.Label)
	require.NotNil(t, sub.SessionID)
	assert.Equal(t, int64(42), *sub.SessionID)
	assert.Equal(t, "42", resolver.raw)
	assert.Equal(t, time.Unix(1700000000, 0).UTC(), sub.ChosenAt)
}

func TestRecordExplicitLabelWins(t *testing.T) {
	repo := &fakeSubmissionRepo{latestErr: sql.ErrNoRows}
	labels := &fakeLabelSource{label: "from-grid"}
	svc := NewSubmissionService(repo, nil, labels, nil, nil, DefaultCooldown)

	sub, err := svc.Record(context.Background(), dto.SubmitMoodRequest{X: intPtr(0), Y: intPtr(0), Label: "custom"}, nil, "10.0.0.1")
	require.NoError(t, err)
	require.NotNil(t, sub.Label)
	assert.Equal(t, "custom", *sub.Label)
}

func TestRecordNonNumericTimestampFallsBack(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	repo := &fakeSubmissionRepo{latestErr: sql.ErrNoRows}
	svc := NewSubmissionService(repo, nil, nil, nil, nil, DefaultCooldown)
	svc.now = func() time.Time { return now }

	req := dto.SubmitMoodRequest{X: intPtr(2), Y: intPtr(2), TS: "not-a-number"}
	sub, err := svc.Record(context.Background(), req, nil, "10.0.0.1")
	require.NoError(t, err)
	assert.Equal(t, now, sub.ChosenAt)
}

func TestLatestNotFound(t *testing.T) {
	repo := &fakeSubmissionRepo{latestErr: sql.ErrNoRows}
	svc := NewSubmissionService(repo, nil, nil, nil, nil, DefaultCooldown)

	_, err := svc.Latest(context.Background(), nil, "10.0.0.1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
