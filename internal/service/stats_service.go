package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/classmood/moodgrid-api/internal/dto"
	"github.com/classmood/moodgrid-api/internal/models"
	appErrors "github.com/classmood/moodgrid-api/pkg/errors"
)

// StatsService serves aggregated mood statistics for a scope, with
// authorization, Redis caching and range filtering in front of the pure
// aggregation pass.
type StatsService struct {
	repo     SubmissionRepository
	authz    *AuthzService
	cache    *CacheService
	metrics  *MetricsService
	logger   *zap.Logger
	cacheTTL time.Duration
}

// NewStatsService constructs a stats service.
func NewStatsService(repo SubmissionRepository, authz *AuthzService, cache *CacheService, metrics *MetricsService, logger *zap.Logger, cacheTTL time.Duration) *StatsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StatsService{repo: repo, authz: authz, cache: cache, metrics: metrics, logger: logger, cacheTTL: cacheTTL}
}

// Stats returns the aggregated statistics for the scope. The boolean
// reports whether the result came from cache.
func (s *StatsService) Stats(ctx context.Context, claims *models.JWTClaims, scope models.StatsScope, query dto.StatsQuery) (*models.StatsResult, bool, error) {
	if s.authz != nil {
		if err := s.authz.RequireViewStats(ctx, claims, scope); err != nil {
			return nil, false, err
		}
	}

	if scope.Kind == models.ScopeSelf && claims != nil {
		scope.StudentID = claims.UserID
	}

	cacheKey := statsCacheKey(scope, query)
	if s.cache != nil {
		var cached models.StatsResult
		if hit, err := s.cache.Get(ctx, cacheKey, &cached); err == nil && hit {
			if s.metrics != nil {
				s.metrics.ObserveStatsRequest(string(scope.Kind), true)
			}
			return &cached, true, nil
		}
	}

	filter := scopeFilter(scope, claims)
	filter.DateFrom = query.DateFrom
	filter.DateTo = query.DateTo

	start := time.Now()
	subs, err := s.repo.ListByFilter(ctx, filter)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch submissions")
	}
	if s.metrics != nil {
		s.metrics.ObserveDBQuery("submissions_by_filter", time.Since(start))
	}

	subs = FilterByTimeOfDay(subs, query.TimeFrom, query.TimeTo)
	result := ComputeStats(subs)

	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, result, s.cacheTTL); err != nil {
			s.logger.Warn("cache stats", zap.Error(err))
		}
	}
	if s.metrics != nil {
		s.metrics.ObserveStatsRequest(string(scope.Kind), false)
	}

	return &result, false, nil
}

// FilterByTimeOfDay keeps submissions whose chosen_at falls inside the
// given minutes-after-midnight window (UTC rendering). The window may
// wrap past midnight. A nil pair returns the input untouched.
func FilterByTimeOfDay(subs []models.MoodSubmission, from, to *int) []models.MoodSubmission {
	if from == nil && to == nil {
		return subs
	}
	lo, hi := 0, 24*60-1
	if from != nil {
		lo = *from
	}
	if to != nil {
		hi = *to
	}

	filtered := make([]models.MoodSubmission, 0, len(subs))
	for _, sub := range subs {
		if sub.ChosenAt.IsZero() {
			continue
		}
		t := sub.ChosenAt.UTC()
		minutes := t.Hour()*60 + t.Minute()
		var keep bool
		if lo <= hi {
			keep = minutes >= lo && minutes <= hi
		} else {
			keep = minutes >= lo || minutes <= hi
		}
		if keep {
			filtered = append(filtered, sub)
		}
	}
	return filtered
}

func scopeFilter(scope models.StatsScope, claims *models.JWTClaims) models.SubmissionFilter {
	filter := models.SubmissionFilter{}
	switch scope.Kind {
	case models.ScopeSelf:
		if claims != nil {
			filter.UserID = claims.UserID
		}
	case models.ScopeStudent:
		filter.UserID = scope.StudentID
	case models.ScopeGroup:
		filter.GroupID = scope.GroupID
	case models.ScopeSession:
		filter.SessionID = scope.SessionID
	}
	return filter
}

func statsCacheKey(scope models.StatsScope, query dto.StatsQuery) string {
	var builder strings.Builder
	builder.WriteString("stats:")
	builder.WriteString(string(scope.Kind))
	builder.WriteByte(':')
	switch scope.Kind {
	case models.ScopeGroup:
		builder.WriteString(fmt.Sprintf("%d", scope.GroupID))
	case models.ScopeSession:
		builder.WriteString(fmt.Sprintf("%d", scope.SessionID))
	default:
		builder.WriteString(scope.StudentID)
	}
	if part := query.CacheKeyPart(); part != "" {
		builder.WriteByte(':')
		builder.WriteString(part)
	}
	return builder.String()
}
