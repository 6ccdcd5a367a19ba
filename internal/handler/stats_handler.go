package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/classmood/moodgrid-api/internal/dto"
	"github.com/classmood/moodgrid-api/internal/middleware"
	"github.com/classmood/moodgrid-api/internal/models"
	"github.com/classmood/moodgrid-api/internal/service"
	appErrors "github.com/classmood/moodgrid-api/pkg/errors"
	"github.com/classmood/moodgrid-api/pkg/response"
)

// StatsHandler exposes aggregated statistics per scope.
type StatsHandler struct {
	service *service.StatsService
}

// NewStatsHandler creates a new handler.
func NewStatsHandler(svc *service.StatsService) *StatsHandler {
	return &StatsHandler{service: svc}
}

// Me godoc
// @Summary Own statistics
// @Description Aggregate the caller's mood history
// @Tags Statistics
// @Produce json
// @Param date_from query string false "Range start (RFC3339 or YYYY-MM-DD)"
// @Param date_to query string false "Range end"
// @Param time_from query string false "Time-of-day window start (HH:MM)"
// @Param time_to query string false "Time-of-day window end (HH:MM)"
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /stats/me [get]
func (h *StatsHandler) Me(c *gin.Context) {
	h.serve(c, models.StatsScope{Kind: models.ScopeSelf})
}

// Student godoc
// @Summary Statistics for a student
// @Description Aggregate one student's mood history
// @Tags Statistics
// @Produce json
// @Param id path string true "Student id"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /stats/students/{id} [get]
func (h *StatsHandler) Student(c *gin.Context) {
	h.serve(c, models.StatsScope{Kind: models.ScopeStudent, StudentID: c.Param("id")})
}

// Group godoc
// @Summary Statistics for a group
// @Description Aggregate a group's combined mood history
// @Tags Statistics
// @Produce json
// @Param id path int true "Group id"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /stats/groups/{id} [get]
func (h *StatsHandler) Group(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "group id must be an integer"))
		return
	}
	h.serve(c, models.StatsScope{Kind: models.ScopeGroup, GroupID: id})
}

// Session godoc
// @Summary Statistics for a session
// @Description Aggregate the submissions recorded under a session
// @Tags Statistics
// @Produce json
// @Param id path int true "Session id"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /stats/sessions/{id} [get]
func (h *StatsHandler) Session(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "session id must be an integer"))
		return
	}
	h.serve(c, models.StatsScope{Kind: models.ScopeSession, SessionID: id})
}

// ExportMe godoc
// @Summary Export own statistics
// @Description Download the caller's aggregated statistics as CSV or PDF
// @Tags Statistics
// @Produce octet-stream
// @Param format query string false "csv or pdf" default(csv)
// @Success 200 {file} binary
// @Failure 400 {object} response.Envelope
// @Router /stats/me/export [get]
func (h *StatsHandler) ExportMe(c *gin.Context) {
	h.export(c, models.StatsScope{Kind: models.ScopeSelf})
}

// ExportStudent godoc
// @Summary Export statistics for a student
// @Tags Statistics
// @Produce octet-stream
// @Param id path string true "Student id"
// @Param format query string false "csv or pdf" default(csv)
// @Success 200 {file} binary
// @Router /stats/students/{id}/export [get]
func (h *StatsHandler) ExportStudent(c *gin.Context) {
	h.export(c, models.StatsScope{Kind: models.ScopeStudent, StudentID: c.Param("id")})
}

// ExportGroup godoc
// @Summary Export statistics for a group
// @Tags Statistics
// @Produce octet-stream
// @Param id path int true "Group id"
// @Param format query string false "csv or pdf" default(csv)
// @Success 200 {file} binary
// @Router /stats/groups/{id}/export [get]
func (h *StatsHandler) ExportGroup(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "group id must be an integer"))
		return
	}
	h.export(c, models.StatsScope{Kind: models.ScopeGroup, GroupID: id})
}

// ExportSession godoc
// @Summary Export statistics for a session
// @Tags Statistics
// @Produce octet-stream
// @Param id path int true "Session id"
// @Param format query string false "csv or pdf" default(csv)
// @Success 200 {file} binary
// @Router /stats/sessions/{id}/export [get]
func (h *StatsHandler) ExportSession(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "session id must be an integer"))
		return
	}
	h.export(c, models.StatsScope{Kind: models.ScopeSession, SessionID: id})
}

func (h *StatsHandler) serve(c *gin.Context, scope models.StatsScope) {
	query := dto.ParseStatsQuery(c.Request.URL.Query())
	result, cacheHit, err := h.service.Stats(c.Request.Context(), claimsFromContext(c), scope, query)
	if err != nil {
		response.Error(c, err)
		return
	}

	middleware.SetCacheHit(c, cacheHit)
	response.JSON(c, http.StatusOK, result, nil, middleware.ExtractMeta(c))
}

func (h *StatsHandler) export(c *gin.Context, scope models.StatsScope) {
	format := strings.ToLower(c.DefaultQuery("format", "csv"))
	query := dto.ParseStatsQuery(c.Request.URL.Query())

	data, err := h.service.Export(c.Request.Context(), claimsFromContext(c), scope, query, format)
	if err != nil {
		response.Error(c, err)
		return
	}

	contentType := reportContentTypes[format]
	filename := fmt.Sprintf("mood-stats-%s.%s", time.Now().UTC().Format("2006-01-02"), format)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, contentType, data)
}
