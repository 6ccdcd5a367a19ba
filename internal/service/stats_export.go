package service

import (
	"context"
	"time"

	"github.com/classmood/moodgrid-api/internal/dto"
	"github.com/classmood/moodgrid-api/internal/models"
	appErrors "github.com/classmood/moodgrid-api/pkg/errors"
	"github.com/classmood/moodgrid-api/pkg/export"
)

// statsExporters maps a requested format to its renderer. Shared by the
// synchronous export endpoint and the asynchronous report workers.
var statsExporters = map[string]ReportExporter{
	"csv": export.NewCSVExporter(),
	"pdf": export.NewPDFExporter(),
}

// Export aggregates the scope like Stats and renders the result into the
// requested format in one request. Large ranges belong in report jobs; this
// path exists for quick one-off downloads from the dashboard.
func (s *StatsService) Export(ctx context.Context, claims *models.JWTClaims, scope models.StatsScope, query dto.StatsQuery, format string) ([]byte, error) {
	exporter, ok := statsExporters[format]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}

	result, _, err := s.Stats(ctx, claims, scope, query)
	if err != nil {
		return nil, err
	}

	data, err := exporter.Render(export.StatsReport{
		Title:       "Mood statistics",
		Scope:       scopeDescription(scope),
		GeneratedAt: time.Now().UTC(),
		Result:      *result,
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}
	return data, nil
}
