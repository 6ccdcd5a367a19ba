package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/classmood/moodgrid-api/internal/models"
)

func strPtr(s string) *string { return &s }

func sub(x, y int, chosenAt time.Time) models.MoodSubmission {
	return models.MoodSubmission{X: x, Y: y, ChosenAt: chosenAt}
}

func TestComputeStatsEmpty(t *testing.T) {
	res := ComputeStats(nil)

	assert.Equal(t, 0, res.Total)
	assert.Equal(t, 0, res.AvgCount)
	assert.Equal(t, 0, res.MaxCount)
	assert.Nil(t, res.MostCommonMood)
	assert.Nil(t, res.MostPleasantHour)
	assert.Nil(t, res.HighestEnergyDay)
	assert.Nil(t, res.BestHour)
	assert.Nil(t, res.AvgX)
	assert.Nil(t, res.AvgQuadrant)
}

func TestComputeStatsSingleSubmission(t *testing.T) {
	// Monday 2026-03-02 14:30 UTC: hour 14, weekday 0, month 3.
	at := time.Date(2026, 3, 2, 14, 30, 0, 0, time.UTC)
	res := ComputeStats([]models.MoodSubmission{sub(7, 2, at)})

	assert.Equal(t, 1, res.Total)
	assert.Equal(t, 1, res.AvgCount)
	assert.Equal(t, 1, res.Heatmap[2][7])
	assert.Equal(t, 1, res.MaxCount)

	for _, field := range []*int{
		res.MostPleasantHour, res.LeastPleasantHour,
		res.HighestEnergyHour, res.LowestEnergyHour,
		res.BestHour, res.WorstHour,
	} {
		require.NotNil(t, field)
		assert.Equal(t, 14, *field)
	}
	for _, field := range []*int{
		res.MostPleasantDay, res.LeastPleasantDay,
		res.HighestEnergyDay, res.LowestEnergyDay,
		res.BestDay, res.WorstDay,
	} {
		require.NotNil(t, field)
		assert.Equal(t, 0, *field)
	}
	for _, field := range []*int{
		res.MostPleasantMonth, res.LeastPleasantMonth,
		res.HighestEnergyMonth, res.LowestEnergyMonth,
		res.BestMonth, res.WorstMonth,
	} {
		require.NotNil(t, field)
		assert.Equal(t, 3, *field)
	}

	require.NotNil(t, res.AvgX)
	require.NotNil(t, res.AvgY)
	assert.InDelta(t, 7.0, *res.AvgX, 1e-9)
	assert.InDelta(t, 2.0, *res.AvgY, 1e-9)
	assert.InDelta(t, 0.75, *res.AvgTX, 1e-9)
	assert.InDelta(t, 0.25, *res.AvgTY, 1e-9)

	require.NotNil(t, res.AvgQuadrant)
	assert.Equal(t, "yellow", *res.AvgQuadrant)
	assert.Equal(t, "Yellow", *res.AvgQuadrantLabel)
	assert.Equal(t, "high energy, pleasant", *res.AvgMeaning)
}

func TestComputeStatsWeekdayIsMondayBased(t *testing.T) {
	sunday := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	res := ComputeStats([]models.MoodSubmission{sub(4, 4, sunday)})

	require.NotNil(t, res.MostPleasantDay)
	assert.Equal(t, 6, *res.MostPleasantDay)
}

func TestComputeStatsOutOfBoundsCountsTowardTotalOnly(t *testing.T) {
	at := time.Date(2026, 4, 10, 9, 0, 0, 0, time.UTC)
	subs := []models.MoodSubmission{
		sub(1, 1, at),
		sub(1, 1, at),
		sub(8, 3, at),
		sub(12, 1, at), // off grid
	}
	res := ComputeStats(subs)

	assert.Equal(t, 4, res.Total)
	assert.Equal(t, 3, res.AvgCount)

	cells := 0
	for y := 0; y < models.GridSize; y++ {
		for x := 0; x < models.GridSize; x++ {
			cells += res.Heatmap[y][x]
		}
	}
	assert.Equal(t, res.AvgCount, cells)
	assert.Equal(t, 2, res.MaxCount)
	assert.Equal(t, 2, res.Heatmap[1][1])
}

func TestComputeStatsMissingTimestampSkipsTimeGroupings(t *testing.T) {
	subs := []models.MoodSubmission{
		{X: 5, Y: 5},
		{X: 6, Y: 6},
	}
	res := ComputeStats(subs)

	assert.Equal(t, 2, res.Total)
	assert.Equal(t, 2, res.AvgCount)
	assert.Nil(t, res.MostPleasantHour)
	assert.Nil(t, res.HighestEnergyMonth)
	assert.Nil(t, res.BestDay)
	require.NotNil(t, res.AvgX)
	assert.InDelta(t, 5.5, *res.AvgX, 1e-9)
}

func TestComputeStatsExtremumsAcrossHours(t *testing.T) {
	morning := time.Date(2026, 5, 4, 8, 0, 0, 0, time.UTC)
	evening := time.Date(2026, 5, 4, 20, 0, 0, 0, time.UTC)
	subs := []models.MoodSubmission{
		sub(8, 1, morning), // pleasant, energetic
		sub(2, 7, evening), // unpleasant, tired
	}
	res := ComputeStats(subs)

	require.NotNil(t, res.MostPleasantHour)
	assert.Equal(t, 8, *res.MostPleasantHour)
	assert.Equal(t, 20, *res.LeastPleasantHour)

	// Lower y means more energy, so the 8 o'clock bucket wins.
	assert.Equal(t, 8, *res.HighestEnergyHour)
	assert.Equal(t, 20, *res.LowestEnergyHour)

	// Legacy names mirror the pleasantness pair.
	assert.Equal(t, *res.MostPleasantHour, *res.BestHour)
	assert.Equal(t, *res.LeastPleasantHour, *res.WorstHour)
}

func TestComputeStatsExtremumTieKeepsFirstSeen(t *testing.T) {
	first := time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)
	second := time.Date(2026, 6, 1, 15, 0, 0, 0, time.UTC)
	subs := []models.MoodSubmission{
		sub(3, 3, first),
		sub(3, 3, second),
	}
	res := ComputeStats(subs)

	require.NotNil(t, res.MostPleasantHour)
	assert.Equal(t, 9, *res.MostPleasantHour)
	assert.Equal(t, 9, *res.LeastPleasantHour)
	assert.Equal(t, 9, *res.HighestEnergyHour)
	assert.Equal(t, 9, *res.LowestEnergyHour)
}

func TestComputeStatsMostCommonMood(t *testing.T) {
	at := time.Date(2026, 2, 2, 12, 0, 0, 0, time.UTC)
	subs := []models.MoodSubmission{
		{X: 1, Y: 1, Label: strPtr("calm"), ChosenAt: at},
		{X: 2, Y: 2, Label: strPtr("tense"), ChosenAt: at},
		{X: 3, Y: 3, Label: strPtr("calm"), ChosenAt: at},
		{X: 4, Y: 4, ChosenAt: at},
	}
	res := ComputeStats(subs)

	require.NotNil(t, res.MostCommonMood)
	assert.Equal(t, "calm", *res.MostCommonMood)
}

func TestComputeStatsMostCommonMoodTieKeepsFirstSeen(t *testing.T) {
	subs := []models.MoodSubmission{
		{X: 1, Y: 1, Label: strPtr("tense")},
		{X: 2, Y: 2, Label: strPtr("calm")},
	}
	res := ComputeStats(subs)

	require.NotNil(t, res.MostCommonMood)
	assert.Equal(t, "tense", *res.MostCommonMood)
}

func TestClassifyQuadrant(t *testing.T) {
	tests := []struct {
		name string
		x, y float64
		want models.Quadrant
	}{
		{"top left", 4.9, 4.9, models.QuadrantRed},
		{"top right", 5.0, 4.9, models.QuadrantYellow},
		{"bottom left", 4.9, 5.0, models.QuadrantBlue},
		{"bottom right", 5.0, 5.0, models.QuadrantGreen},
		{"origin", 0, 0, models.QuadrantRed},
		{"far corner", 9, 9, models.QuadrantGreen},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, classifyQuadrant(tt.x, tt.y))
		})
	}
}

func TestComputeStatsUsesUTCRendering(t *testing.T) {
	// 23:30 in UTC-5 is 04:30 UTC the next day; the hour bucket follows UTC.
	loc := time.FixedZone("UTC-5", -5*3600)
	at := time.Date(2026, 7, 1, 23, 30, 0, 0, loc)
	res := ComputeStats([]models.MoodSubmission{sub(5, 5, at)})

	require.NotNil(t, res.MostPleasantHour)
	assert.Equal(t, 4, *res.MostPleasantHour)
}
