package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// MinigameRepository tracks the rolling daily solve counter in Redis.
// The persistent all-time counter lives on the users table.
type MinigameRepository struct {
	client *redis.Client
}

// NewMinigameRepository constructs the repository.
func NewMinigameRepository(client *redis.Client) *MinigameRepository {
	return &MinigameRepository{client: client}
}

func dailyKey(userID string, day time.Time) string {
	return fmt.Sprintf("minigame:daily:%s:%s", userID, day.UTC().Format("2006-01-02"))
}

// IncrementDaily bumps today's counter and returns the new value. The key
// expires shortly after the next UTC midnight so stale days clean
// themselves up.
func (r *MinigameRepository) IncrementDaily(ctx context.Context, userID string, delta int64, now time.Time) (int64, error) {
	if r.client == nil {
		return 0, nil
	}
	key := dailyKey(userID, now)
	total, err := r.client.IncrBy(ctx, key, delta).Result()
	if err != nil {
		return 0, fmt.Errorf("redis incr %s: %w", key, err)
	}
	midnight := now.UTC().Truncate(24 * time.Hour).Add(24 * time.Hour)
	if err := r.client.ExpireAt(ctx, key, midnight.Add(time.Hour)).Err(); err != nil {
		return total, fmt.Errorf("redis expire %s: %w", key, err)
	}
	return total, nil
}

// DailyCount reads today's counter, zero when absent.
func (r *MinigameRepository) DailyCount(ctx context.Context, userID string, now time.Time) (int64, error) {
	if r.client == nil {
		return 0, nil
	}
	key := dailyKey(userID, now)
	total, err := r.client.Get(ctx, key).Int64()
	if err != nil {
		if err == redis.Nil {
			return 0, nil
		}
		return 0, fmt.Errorf("redis get %s: %w", key, err)
	}
	return total, nil
}
