package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/classmood/moodgrid-api/internal/dto"
	"github.com/classmood/moodgrid-api/internal/models"
)

func atClock(hour, minute int) time.Time {
	return time.Date(2026, 8, 30, hour, minute, 0, 0, time.UTC)
}

func TestFilterByTimeOfDay(t *testing.T) {
	subs := []models.MoodSubmission{
		sub(1, 1, atClock(7, 59)),
		sub(2, 2, atClock(8, 0)),
		sub(3, 3, atClock(12, 30)),
		sub(4, 4, atClock(16, 0)),
		sub(5, 5, atClock(23, 45)),
		{X: 6, Y: 6}, // no timestamp
	}

	t.Run("nil bounds pass everything through", func(t *testing.T) {
		assert.Len(t, FilterByTimeOfDay(subs, nil, nil), len(subs))
	})

	t.Run("inclusive window", func(t *testing.T) {
		from, to := 8*60, 16*60
		got := FilterByTimeOfDay(subs, &from, &to)
		require.Len(t, got, 3)
		assert.Equal(t, 2, got[0].X)
		assert.Equal(t, 4, got[2].X)
	})

	t.Run("window wrapping past midnight", func(t *testing.T) {
		from, to := 22*60, 8*60
		got := FilterByTimeOfDay(subs, &from, &to)
		require.Len(t, got, 3)
		assert.Equal(t, 1, got[0].X)
		assert.Equal(t, 2, got[1].X)
		assert.Equal(t, 5, got[2].X)
	})

	t.Run("missing timestamps drop out once a window applies", func(t *testing.T) {
		from := 0
		got := FilterByTimeOfDay(subs, &from, nil)
		assert.Len(t, got, 5)
	})
}

func TestScopeFilter(t *testing.T) {
	claims := &models.JWTClaims{UserID: "u-1"}

	f := scopeFilter(models.StatsScope{Kind: models.ScopeSelf}, claims)
	assert.Equal(t, "u-1", f.UserID)

	f = scopeFilter(models.StatsScope{Kind: models.ScopeStudent, StudentID: "s-9"}, claims)
	assert.Equal(t, "s-9", f.UserID)

	f = scopeFilter(models.StatsScope{Kind: models.ScopeGroup, GroupID: 4}, claims)
	assert.Equal(t, int64(4), f.GroupID)

	f = scopeFilter(models.StatsScope{Kind: models.ScopeSession, SessionID: 8}, claims)
	assert.Equal(t, int64(8), f.SessionID)
}

func TestStatsCacheKey(t *testing.T) {
	key := statsCacheKey(models.StatsScope{Kind: models.ScopeSelf, StudentID: "u-1"}, dto.StatsQuery{})
	assert.Equal(t, "stats:self:u-1", key)

	key = statsCacheKey(models.StatsScope{Kind: models.ScopeGroup, GroupID: 12}, dto.StatsQuery{})
	assert.Equal(t, "stats:group:12", key)

	from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	withRange := statsCacheKey(models.StatsScope{Kind: models.ScopeSelf, StudentID: "u-1"}, dto.StatsQuery{DateFrom: &from})
	assert.NotEqual(t, key, withRange)
	assert.Contains(t, withRange, "stats:self:u-1:")
}

func TestStatsServiceAggregatesScope(t *testing.T) {
	repo := &fakeSubmissionRepo{
		list: []models.MoodSubmission{
			sub(8, 1, atClock(9, 0)),
			sub(2, 7, atClock(20, 0)),
		},
	}
	svc := NewStatsService(repo, nil, nil, nil, nil, time.Minute)
	claims := &models.JWTClaims{UserID: "u-1", Role: models.RoleStudent}

	result, hit, err := svc.Stats(context.Background(), claims, models.StatsScope{Kind: models.ScopeSelf}, dto.StatsQuery{})
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, "u-1", repo.listedFilter.UserID)
	assert.Equal(t, 2, result.Total)
	require.NotNil(t, result.MostPleasantHour)
	assert.Equal(t, 9, *result.MostPleasantHour)
}

func TestStatsServiceAppliesDateAndTimeFilters(t *testing.T) {
	repo := &fakeSubmissionRepo{
		list: []models.MoodSubmission{
			sub(1, 1, atClock(9, 0)),
			sub(2, 2, atClock(21, 0)),
		},
	}
	svc := NewStatsService(repo, nil, nil, nil, nil, time.Minute)
	claims := &models.JWTClaims{UserID: "u-1", Role: models.RoleStudent}

	from := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	timeFrom, timeTo := 8*60, 12*60
	query := dto.StatsQuery{DateFrom: &from, TimeFrom: &timeFrom, TimeTo: &timeTo}

	result, _, err := svc.Stats(context.Background(), claims, models.StatsScope{Kind: models.ScopeSelf}, query)
	require.NoError(t, err)

	require.NotNil(t, repo.listedFilter.DateFrom)
	assert.Equal(t, from, *repo.listedFilter.DateFrom)
	assert.Equal(t, 1, result.Total, "time window applied after the fetch")
}
