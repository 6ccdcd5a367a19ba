package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/classmood/moodgrid-api/internal/dto"
	"github.com/classmood/moodgrid-api/internal/models"
	appErrors "github.com/classmood/moodgrid-api/pkg/errors"
)

// DefaultCooldown is the minimum interval between accepted submissions
// from one identity.
const DefaultCooldown = 10 * time.Minute

// Raw client timestamps above this magnitude are millisecond epochs.
const msEpochThreshold = 1e12

// SubmissionRepository is the persistence surface for mood submissions.
type SubmissionRepository interface {
	Create(ctx context.Context, sub *models.MoodSubmission) error
	LatestByUser(ctx context.Context, userID string) (*models.MoodSubmission, error)
	LatestByIP(ctx context.Context, ip string) (*models.MoodSubmission, error)
	ListByFilter(ctx context.Context, filter models.SubmissionFilter) ([]models.MoodSubmission, error)
}

// SessionRefResolver validates optional session references at submission time.
type SessionRefResolver interface {
	ResolveSessionRef(ctx context.Context, raw string) *int64
}

// LabelSource supplies the current label for a grid cell.
type LabelSource interface {
	LabelAt(x, y int) string
}

// SubmissionService records mood submissions: coordinate validation,
// client timestamp normalization, cooldown throttling and optional
// session attachment.
type SubmissionService struct {
	repo     SubmissionRepository
	sessions SessionRefResolver
	labels   LabelSource
	cache    *CacheService
	logger   *zap.Logger
	cooldown time.Duration
	now      func() time.Time
}

// NewSubmissionService constructs a submission service.
func NewSubmissionService(repo SubmissionRepository, sessions SessionRefResolver, labels LabelSource, cache *CacheService, logger *zap.Logger, cooldown time.Duration) *SubmissionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cooldown <= 0 {
		cooldown = DefaultCooldown
	}
	return &SubmissionService{
		repo:     repo,
		sessions: sessions,
		labels:   labels,
		cache:    cache,
		logger:   logger,
		cooldown: cooldown,
		now:      time.Now,
	}
}

// Record validates and persists one submission. Authenticated callers are
// throttled per user id, anonymous callers per client IP. The client
// timestamp and session reference are untrusted and degrade silently;
// the coordinates are not.
func (s *SubmissionService) Record(ctx context.Context, req dto.SubmitMoodRequest, claims *models.JWTClaims, clientIP string) (*models.MoodSubmission, error) {
	if req.X == nil || req.Y == nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "x and y coordinates are required")
	}
	x, y := *req.X, *req.Y
	if x < 0 || x >= models.GridSize || y < 0 || y >= models.GridSize {
		return nil, appErrors.Clone(appErrors.ErrValidation, "coordinates out of grid bounds")
	}

	now := s.now()

	last, err := s.latestForIdentity(ctx, claims, clientIP)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check previous submission")
	}
	var lastAt *time.Time
	if last != nil {
		t := last.CreatedAt
		lastAt = &t
	}
	decision := ShouldThrottle(lastAt, now, s.cooldown)
	if !decision.Allowed {
		return nil, appErrors.WithRetryAfter(appErrors.ErrRateLimited, decision.RetryAfterSeconds)
	}

	chosenAt := ResolveChosenAt(floatArg(req.TS), intArg(req.TZOffsetMinutes), now)

	sub := &models.MoodSubmission{
		X:        x,
		Y:        y,
		ChosenAt: chosenAt,
	}
	if claims != nil {
		id := claims.UserID
		sub.UserID = &id
	}
	if clientIP != "" {
		ip := clientIP
		sub.IP = &ip
	}

	label := req.Label
	if label == "" && s.labels != nil {
		label = s.labels.LabelAt(x, y)
	}
	if label != "" {
		sub.Label = &label
	}

	if s.sessions != nil && req.SessionID != "" {
		sub.SessionID = s.sessions.ResolveSessionRef(ctx, req.SessionID)
	}

	if err := s.repo.Create(ctx, sub); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist submission")
	}

	s.invalidateStats(ctx, sub)

	return sub, nil
}

// Latest returns the caller's most recent submission by server receipt time.
func (s *SubmissionService) Latest(ctx context.Context, claims *models.JWTClaims, clientIP string) (*models.MoodSubmission, error) {
	sub, err := s.latestForIdentity(ctx, claims, clientIP)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch latest submission")
	}
	if sub == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "no submission recorded yet")
	}
	return sub, nil
}

func (s *SubmissionService) latestForIdentity(ctx context.Context, claims *models.JWTClaims, clientIP string) (*models.MoodSubmission, error) {
	var (
		sub *models.MoodSubmission
		err error
	)
	if claims != nil {
		sub, err = s.repo.LatestByUser(ctx, claims.UserID)
	} else if clientIP != "" {
		sub, err = s.repo.LatestByIP(ctx, clientIP)
	}
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return sub, nil
}

func (s *SubmissionService) invalidateStats(ctx context.Context, sub *models.MoodSubmission) {
	if s.cache == nil || !s.cache.Enabled() {
		return
	}
	patterns := []string{"stats:group:*"}
	if sub.UserID != nil {
		patterns = append(patterns,
			fmt.Sprintf("stats:self:%s*", *sub.UserID),
			fmt.Sprintf("stats:student:%s*", *sub.UserID))
	}
	if sub.SessionID != nil {
		patterns = append(patterns, fmt.Sprintf("stats:session:%d*", *sub.SessionID))
	}
	for _, pattern := range patterns {
		if err := s.cache.Invalidate(ctx, pattern); err != nil {
			s.logger.Warn("stats cache invalidation failed", zap.String("pattern", pattern), zap.Error(err))
		}
	}
}

// ShouldThrottle applies the submission cooldown against the server-side
// receipt time of the previous submission. Instants are normalized to
// UTC before any comparison.
func ShouldThrottle(lastCreatedAt *time.Time, now time.Time, cooldown time.Duration) models.ThrottleDecision {
	if lastCreatedAt == nil {
		return models.ThrottleDecision{Allowed: true}
	}
	cutoff := lastCreatedAt.UTC().Add(cooldown)
	nowUTC := now.UTC()
	if !nowUTC.Before(cutoff) {
		return models.ThrottleDecision{Allowed: true}
	}
	retry := int(math.Ceil(cutoff.Sub(nowUTC).Seconds()))
	if retry < 0 {
		retry = 0
	}
	return models.ThrottleDecision{Allowed: false, RetryAfterSeconds: retry}
}

// ResolveChosenAt turns an untrusted client timestamp into an absolute
// instant. Millisecond epochs are detected by magnitude; when an offset
// is supplied the value is read as wall-clock time in that fixed offset.
// Anything unusable falls back to the server clock, never an error.
func ResolveChosenAt(raw *float64, utcOffsetMinutes *int, serverNow time.Time) time.Time {
	if raw == nil || math.IsNaN(*raw) || math.IsInf(*raw, 0) {
		return serverNow
	}
	secs := *raw
	if math.Abs(secs) > msEpochThreshold {
		secs /= 1000
	}
	if math.Abs(secs) > 1e15 {
		return serverNow
	}

	sec := int64(secs)
	nsec := int64((secs - float64(sec)) * 1e9)
	t := time.Unix(sec, nsec).UTC()
	if utcOffsetMinutes != nil {
		t = t.Add(-time.Duration(*utcOffsetMinutes) * time.Minute)
	}
	if year := t.Year(); year < 1 || year > 9999 {
		return serverNow
	}
	return t
}

// floatArg coerces a loosely-typed JSON value into a float, mirroring the
// tolerant reading of client payloads: anything non-numeric is nil.
func floatArg(v interface{}) *float64 {
	switch value := v.(type) {
	case float64:
		return &value
	case float32:
		f := float64(value)
		return &f
	case int:
		f := float64(value)
		return &f
	case int64:
		f := float64(value)
		return &f
	case json.Number:
		if f, err := value.Float64(); err == nil {
			return &f
		}
	}
	return nil
}

func intArg(v interface{}) *int {
	f := floatArg(v)
	if f == nil || math.IsNaN(*f) || math.IsInf(*f, 0) {
		return nil
	}
	i := int(*f)
	return &i
}
