package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/classmood/moodgrid-api/internal/service"
	"github.com/classmood/moodgrid-api/pkg/response"
)

// GridHandler serves the mood label grid.
type GridHandler struct {
	grid *service.LabelGridService
}

// NewGridHandler creates a new handler.
func NewGridHandler(grid *service.LabelGridService) *GridHandler {
	return &GridHandler{grid: grid}
}

// Labels godoc
// @Summary Mood label grid
// @Description Return the 10x10 grid of mood names, top row first
// @Tags Grid
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /grid/labels [get]
func (h *GridHandler) Labels(c *gin.Context) {
	grid := h.grid.Current()
	rows := make([][]string, len(grid))
	for y := range grid {
		rows[y] = grid[y][:]
	}
	response.JSON(c, http.StatusOK, gin.H{"labels": rows}, nil)
}
