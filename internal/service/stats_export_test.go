package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/classmood/moodgrid-api/internal/dto"
	"github.com/classmood/moodgrid-api/internal/models"
	appErrors "github.com/classmood/moodgrid-api/pkg/errors"
)

func TestStatsServiceExportCSV(t *testing.T) {
	repo := &fakeSubmissionRepo{
		list: []models.MoodSubmission{
			sub(8, 1, atClock(9, 0)),
			sub(2, 7, atClock(20, 0)),
		},
	}
	svc := NewStatsService(repo, nil, nil, nil, nil, time.Minute)
	claims := &models.JWTClaims{UserID: "u-1", Role: models.RoleStudent}

	data, err := svc.Export(context.Background(), claims, models.StatsScope{Kind: models.ScopeSelf}, dto.StatsQuery{}, "csv")
	require.NoError(t, err)

	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	require.NoError(t, err)

	headerIdx := -1
	for i, record := range records {
		if record[0] == `heatmap y\x` {
			headerIdx = i
			break
		}
	}
	require.GreaterOrEqual(t, headerIdx, 0, "heatmap header present")
	require.Len(t, records, headerIdx+1+models.GridSize, "one heatmap row per grid row")

	assert.Equal(t, []string{"total", "2"}, records[3])
}

func TestStatsServiceExportPDF(t *testing.T) {
	repo := &fakeSubmissionRepo{list: []models.MoodSubmission{sub(5, 5, atClock(12, 0))}}
	svc := NewStatsService(repo, nil, nil, nil, nil, time.Minute)
	claims := &models.JWTClaims{UserID: "u-1", Role: models.RoleStudent}

	data, err := svc.Export(context.Background(), claims, models.StatsScope{Kind: models.ScopeSelf}, dto.StatsQuery{}, "pdf")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))
}

func TestStatsServiceExportRejectsUnknownFormat(t *testing.T) {
	svc := NewStatsService(&fakeSubmissionRepo{}, nil, nil, nil, nil, time.Minute)
	claims := &models.JWTClaims{UserID: "u-1", Role: models.RoleStudent}

	_, err := svc.Export(context.Background(), claims, models.StatsScope{Kind: models.ScopeSelf}, dto.StatsQuery{}, "xlsx")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}
