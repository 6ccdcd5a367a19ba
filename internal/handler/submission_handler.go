package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/classmood/moodgrid-api/internal/dto"
	"github.com/classmood/moodgrid-api/internal/service"
	appErrors "github.com/classmood/moodgrid-api/pkg/errors"
	"github.com/classmood/moodgrid-api/pkg/response"
)

// SubmissionHandler exposes mood recording endpoints.
type SubmissionHandler struct {
	service *service.SubmissionService
}

// NewSubmissionHandler creates a new handler.
func NewSubmissionHandler(svc *service.SubmissionService) *SubmissionHandler {
	return &SubmissionHandler{service: svc}
}

// Submit godoc
// @Summary Record a mood
// @Description Record a mood pick on the grid, anonymously or as a logged-in user
// @Tags Moods
// @Accept json
// @Produce json
// @Param payload body dto.SubmitMoodRequest true "Mood payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 429 {object} response.Envelope
// @Router /moods [post]
func (h *SubmissionHandler) Submit(c *gin.Context) {
	var req dto.SubmitMoodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid mood payload"))
		return
	}

	sub, err := h.service.Record(c.Request.Context(), req, claimsFromContext(c), c.ClientIP())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, sub)
}

// Latest godoc
// @Summary Latest mood
// @Description Return the caller's most recent submission
// @Tags Moods
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /moods/latest [get]
func (h *SubmissionHandler) Latest(c *gin.Context) {
	sub, err := h.service.Latest(c.Request.Context(), claimsFromContext(c), c.ClientIP())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, sub, nil)
}
