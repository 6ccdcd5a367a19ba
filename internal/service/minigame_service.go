package service

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/classmood/moodgrid-api/internal/dto"
	"github.com/classmood/moodgrid-api/internal/models"
	appErrors "github.com/classmood/moodgrid-api/pkg/errors"
)

// minigameUserStore is the slice of the user repository the mini-game
// counters need.
type minigameUserStore interface {
	IncrementMinigameSolves(ctx context.Context, id string, delta int64) (int64, error)
	MinigameSolves(ctx context.Context, id string) (int64, error)
}

// minigameDailyStore tracks solves for the current UTC day.
type minigameDailyStore interface {
	IncrementDaily(ctx context.Context, userID string, delta int64, now time.Time) (int64, error)
	DailyCount(ctx context.Context, userID string, now time.Time) (int64, error)
}

// MinigameService records solves of the waiting-screen puzzle. The
// all-time counter is durable; the daily counter is best effort and
// resets at UTC midnight.
type MinigameService struct {
	users     minigameUserStore
	daily     minigameDailyStore
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewMinigameService constructs the service.
func NewMinigameService(users minigameUserStore, daily minigameDailyStore, validate *validator.Validate, logger *zap.Logger) *MinigameService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MinigameService{users: users, daily: daily, validator: validate, logger: logger, now: time.Now}
}

// RecordSolves adds solves to both counters. A missing count means one.
func (s *MinigameService) RecordSolves(ctx context.Context, claims *models.JWTClaims, req dto.MinigameSolveRequest) (*dto.MinigameCounters, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid solve payload")
	}
	delta := int64(req.Count)
	if delta == 0 {
		delta = 1
	}

	allTime, err := s.users.IncrementMinigameSolves(ctx, claims.UserID, delta)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record solves")
	}

	today := int64(0)
	if s.daily != nil {
		today, err = s.daily.IncrementDaily(ctx, claims.UserID, delta, s.now())
		if err != nil {
			s.logger.Warn("failed to bump daily solve counter", zap.String("user_id", claims.UserID), zap.Error(err))
			today = 0
		}
	}

	return &dto.MinigameCounters{AllTimeSolves: allTime, SolvesToday: today}, nil
}

// Counters reads both counters for the caller.
func (s *MinigameService) Counters(ctx context.Context, claims *models.JWTClaims) (*dto.MinigameCounters, error) {
	allTime, err := s.users.MinigameSolves(ctx, claims.UserID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load counters")
	}
	today := int64(0)
	if s.daily != nil {
		today, err = s.daily.DailyCount(ctx, claims.UserID, s.now())
		if err != nil {
			s.logger.Warn("failed to read daily solve counter", zap.String("user_id", claims.UserID), zap.Error(err))
			today = 0
		}
	}
	return &dto.MinigameCounters{AllTimeSolves: allTime, SolvesToday: today}, nil
}
