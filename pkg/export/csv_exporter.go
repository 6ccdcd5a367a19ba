package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"

	"github.com/classmood/moodgrid-api/internal/models"
)

// CSVExporter renders a stats report into CSV bytes: a summary block,
// the extremum table and the 10x10 heatmap.
type CSVExporter struct{}

// NewCSVExporter builds a CSV exporter.
func NewCSVExporter() *CSVExporter {
	return &CSVExporter{}
}

// Render produces CSV encoded bytes for the report.
func (e *CSVExporter) Render(report StatsReport) ([]byte, error) {
	buf := &bytes.Buffer{}
	writer := csv.NewWriter(buf)

	res := report.Result

	rows := [][]string{
		{"report", report.Title},
		{"scope", report.Scope},
		{"generated_at", report.GeneratedAt.UTC().Format("2006-01-02T15:04:05Z")},
		{"total", strconv.Itoa(res.Total)},
		{"in_bounds", strconv.Itoa(res.AvgCount)},
		{"max_count", strconv.Itoa(res.MaxCount)},
		{"most_common_mood", stringOrDash(res.MostCommonMood)},
		{"avg_quadrant", stringOrDash(res.AvgQuadrant)},
		{"avg_meaning", stringOrDash(res.AvgMeaning)},
		{},
	}
	for _, row := range extremumRows(res) {
		rows = append(rows, []string{row[0], row[1]})
	}
	rows = append(rows, []string{})

	header := make([]string, 0, models.GridSize+1)
	header = append(header, "heatmap y\\x")
	for x := 0; x < models.GridSize; x++ {
		header = append(header, strconv.Itoa(x))
	}
	rows = append(rows, header)
	for y := 0; y < models.GridSize; y++ {
		row := make([]string, 0, models.GridSize+1)
		row = append(row, strconv.Itoa(y))
		for x := 0; x < models.GridSize; x++ {
			row = append(row, strconv.Itoa(res.Heatmap[y][x]))
		}
		rows = append(rows, row)
	}

	for _, row := range rows {
		if len(row) == 0 {
			row = []string{""}
		}
		if err := writer.Write(row); err != nil {
			return nil, fmt.Errorf("write csv row: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}

func stringOrDash(v *string) string {
	if v == nil || *v == "" {
		return "-"
	}
	return *v
}
