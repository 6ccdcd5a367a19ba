package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/classmood/moodgrid-api/internal/dto"
	"github.com/classmood/moodgrid-api/internal/service"
	appErrors "github.com/classmood/moodgrid-api/pkg/errors"
	"github.com/classmood/moodgrid-api/pkg/response"
)

// MinigameHandler exposes the waiting-screen puzzle counters.
type MinigameHandler struct {
	service *service.MinigameService
}

// NewMinigameHandler creates a new handler.
func NewMinigameHandler(svc *service.MinigameService) *MinigameHandler {
	return &MinigameHandler{service: svc}
}

// RecordSolves godoc
// @Summary Record puzzle solves
// @Description Add solves to the caller's counters
// @Tags Minigame
// @Accept json
// @Produce json
// @Param payload body dto.MinigameSolveRequest true "Solve payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /minigame/solves [post]
func (h *MinigameHandler) RecordSolves(c *gin.Context) {
	var req dto.MinigameSolveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid solve payload"))
		return
	}

	counters, err := h.service.RecordSolves(c.Request.Context(), claimsFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, counters, nil)
}

// Counters godoc
// @Summary Puzzle counters
// @Description Return the caller's all-time and daily solve counters
// @Tags Minigame
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /minigame/solves [get]
func (h *MinigameHandler) Counters(c *gin.Context) {
	counters, err := h.service.Counters(c.Request.Context(), claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, counters, nil)
}
