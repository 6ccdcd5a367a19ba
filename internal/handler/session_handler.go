package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/classmood/moodgrid-api/internal/dto"
	"github.com/classmood/moodgrid-api/internal/service"
	appErrors "github.com/classmood/moodgrid-api/pkg/errors"
	"github.com/classmood/moodgrid-api/pkg/response"
)

// SessionHandler manages PIN-joinable sessions.
type SessionHandler struct {
	service *service.SessionService
}

// NewSessionHandler creates a new handler.
func NewSessionHandler(svc *service.SessionService) *SessionHandler {
	return &SessionHandler{service: svc}
}

// Create godoc
// @Summary Create a session
// @Description Open a new session with a fresh six digit join code
// @Tags Sessions
// @Produce json
// @Success 201 {object} response.Envelope
// @Failure 503 {object} response.Envelope
// @Router /sessions [post]
func (h *SessionHandler) Create(c *gin.Context) {
	claims := claimsFromContext(c)
	var ownerID *string
	if claims != nil {
		ownerID = &claims.UserID
	}

	created, err := h.service.Create(c.Request.Context(), ownerID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, created)
}

// Join godoc
// @Summary Join a session
// @Description Resolve a join code to its active session
// @Tags Sessions
// @Accept json
// @Produce json
// @Param payload body dto.JoinSessionRequest true "Join payload"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /sessions/join [post]
func (h *SessionHandler) Join(c *gin.Context) {
	var req dto.JoinSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid join payload"))
		return
	}

	joined, err := h.service.Join(c.Request.Context(), req.Pin)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, joined, nil)
}

// ListMine godoc
// @Summary List own sessions
// @Description Return the sessions created by the caller
// @Tags Sessions
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /sessions [get]
func (h *SessionHandler) ListMine(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	sessions, err := h.service.ListMine(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, sessions, nil)
}

// Deactivate godoc
// @Summary Close a session
// @Description Retire a session, freeing its join code
// @Tags Sessions
// @Produce json
// @Param id path int true "Session id"
// @Success 204 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /sessions/{id} [delete]
func (h *SessionHandler) Deactivate(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "session id must be an integer"))
		return
	}

	if err := h.service.Deactivate(c.Request.Context(), id, claimsFromContext(c)); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}
