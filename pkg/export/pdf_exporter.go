package export

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"github.com/classmood/moodgrid-api/internal/models"
)

// PDFExporter renders a stats report into a printable summary sheet.
type PDFExporter struct{}

// NewPDFExporter constructs a PDF exporter.
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{}
}

// Render creates a one-page PDF with the summary block, the extremum
// table and the heatmap counts.
func (e *PDFExporter) Render(report StatsReport) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 15, 10)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 14)
	pdf.CellFormat(0, 10, strings.ToUpper(report.Title), "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 9)
	pdf.CellFormat(0, 6, fmt.Sprintf("Scope: %s - generated %s", report.Scope, report.GeneratedAt.UTC().Format("2006-01-02 15:04 UTC")), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	res := report.Result

	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(0, 7, "Summary", "", 1, "", false, 0, "")
	pdf.SetFont("Arial", "", 9)
	summary := [][2]string{
		{"Total submissions", strconv.Itoa(res.Total)},
		{"In-bounds submissions", strconv.Itoa(res.AvgCount)},
		{"Busiest cell count", strconv.Itoa(res.MaxCount)},
		{"Most common mood", stringOrDash(res.MostCommonMood)},
		{"Average quadrant", stringOrDash(res.AvgQuadrantLabel)},
		{"Meaning", stringOrDash(res.AvgMeaning)},
	}
	for _, row := range summary {
		pdf.CellFormat(60, 6, row[0], "1", 0, "", false, 0, "")
		pdf.CellFormat(130, 6, row[1], "1", 1, "", false, 0, "")
	}
	pdf.Ln(4)

	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(0, 7, "Best and worst times", "", 1, "", false, 0, "")
	pdf.SetFont("Arial", "", 9)
	for _, row := range extremumRows(res) {
		pdf.CellFormat(60, 6, row[0], "1", 0, "", false, 0, "")
		pdf.CellFormat(130, 6, row[1], "1", 1, "", false, 0, "")
	}
	pdf.Ln(4)

	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(0, 7, "Heatmap", "", 1, "", false, 0, "")
	pdf.SetFont("Arial", "", 8)
	cellWidth := 190.0 / float64(models.GridSize)
	for y := 0; y < models.GridSize; y++ {
		for x := 0; x < models.GridSize; x++ {
			pdf.CellFormat(cellWidth, 6, strconv.Itoa(res.Heatmap[y][x]), "1", 0, "C", false, 0, "")
		}
		pdf.Ln(-1)
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
