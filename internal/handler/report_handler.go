package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/classmood/moodgrid-api/internal/dto"
	"github.com/classmood/moodgrid-api/internal/service"
	appErrors "github.com/classmood/moodgrid-api/pkg/errors"
	"github.com/classmood/moodgrid-api/pkg/response"
	"github.com/classmood/moodgrid-api/pkg/storage"
)

var reportContentTypes = map[string]string{
	"csv": "text/csv",
	"pdf": "application/pdf",
}

// ReportHandler exposes asynchronous stats report generation.
type ReportHandler struct {
	service *service.ReportService
	store   *storage.LocalStorage
}

// NewReportHandler creates a new handler.
func NewReportHandler(svc *service.ReportService, store *storage.LocalStorage) *ReportHandler {
	return &ReportHandler{service: svc, store: store}
}

// Create godoc
// @Summary Request a stats report
// @Description Enqueue generation of a CSV or PDF stats report
// @Tags Reports
// @Accept json
// @Produce json
// @Param payload body dto.CreateReportRequest true "Report payload"
// @Success 202 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /reports [post]
func (h *ReportHandler) Create(c *gin.Context) {
	var req dto.CreateReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid report payload"))
		return
	}

	query := dto.ParseStatsQuery(c.Request.URL.Query())
	job, err := h.service.Create(c.Request.Context(), claimsFromContext(c), req, query)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusAccepted, job, nil)
}

// Status godoc
// @Summary Report job status
// @Description Return the state of a report job, including its download link when ready
// @Tags Reports
// @Produce json
// @Param id path string true "Job id"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /reports/{id} [get]
func (h *ReportHandler) Status(c *gin.Context) {
	job, err := h.service.Job(claimsFromContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, job, nil)
}

// Download godoc
// @Summary Download a report
// @Description Stream a generated report given a valid signed token
// @Tags Reports
// @Produce octet-stream
// @Param token path string true "Signed download token"
// @Success 200 {file} binary
// @Failure 401 {object} response.Envelope
// @Router /reports/download/{token} [get]
func (h *ReportHandler) Download(c *gin.Context) {
	relPath, format, err := h.service.ResolveDownload(c.Param("token"))
	if err != nil {
		response.Error(c, err)
		return
	}

	file, err := h.store.Open(relPath)
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "report file missing"))
		return
	}
	defer file.Close() //nolint:errcheck

	contentType := reportContentTypes[format]
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	info, err := file.Stat()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to stat report"))
		return
	}

	c.DataFromReader(http.StatusOK, info.Size(), contentType, file, map[string]string{
		"Content-Disposition": `attachment; filename="mood-report.` + format + `"`,
	})
}
