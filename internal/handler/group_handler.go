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

// GroupHandler manages teacher-owned groups.
type GroupHandler struct {
	service *service.GroupService
}

// NewGroupHandler creates a new handler.
func NewGroupHandler(svc *service.GroupService) *GroupHandler {
	return &GroupHandler{service: svc}
}

// Create godoc
// @Summary Create a group
// @Description Create a group owned by the calling teacher
// @Tags Groups
// @Accept json
// @Produce json
// @Param payload body dto.CreateGroupRequest true "Group payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /groups [post]
func (h *GroupHandler) Create(c *gin.Context) {
	var req dto.CreateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid group payload"))
		return
	}

	group, err := h.service.Create(c.Request.Context(), claimsFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, group)
}

// ListMine godoc
// @Summary List own groups
// @Description Return the groups owned by the caller
// @Tags Groups
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /groups [get]
func (h *GroupHandler) ListMine(c *gin.Context) {
	groups, err := h.service.ListMine(c.Request.Context(), claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, groups, nil)
}

// Members godoc
// @Summary Group roster
// @Description Return the students enrolled in a group
// @Tags Groups
// @Produce json
// @Param id path int true "Group id"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /groups/{id}/members [get]
func (h *GroupHandler) Members(c *gin.Context) {
	id, ok := groupID(c)
	if !ok {
		return
	}

	members, err := h.service.Members(c.Request.Context(), claimsFromContext(c), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, members, nil)
}

// AddMember godoc
// @Summary Enrol a student
// @Description Add a student to a group the caller owns
// @Tags Groups
// @Accept json
// @Produce json
// @Param id path int true "Group id"
// @Param payload body dto.AddGroupMemberRequest true "Member payload"
// @Success 204 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /groups/{id}/members [post]
func (h *GroupHandler) AddMember(c *gin.Context) {
	id, ok := groupID(c)
	if !ok {
		return
	}

	var req dto.AddGroupMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid member payload"))
		return
	}

	if err := h.service.AddMember(c.Request.Context(), claimsFromContext(c), id, req); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}

// RemoveMember godoc
// @Summary Remove a student
// @Description Drop a student from a group the caller owns
// @Tags Groups
// @Produce json
// @Param id path int true "Group id"
// @Param studentId path string true "Student id"
// @Success 204 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /groups/{id}/members/{studentId} [delete]
func (h *GroupHandler) RemoveMember(c *gin.Context) {
	id, ok := groupID(c)
	if !ok {
		return
	}

	if err := h.service.RemoveMember(c.Request.Context(), claimsFromContext(c), id, c.Param("studentId")); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}

func groupID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "group id must be an integer"))
		return 0, false
	}
	return id, true
}
