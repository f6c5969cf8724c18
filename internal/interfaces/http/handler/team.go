package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	appteam "github.com/taskfabric/backend/internal/application/team"
)

// TeamHandler exposes the team service over HTTP
type TeamHandler struct {
	BaseHandler
	service *appteam.Service
}

// NewTeamHandler creates a new team handler
func NewTeamHandler(service *appteam.Service) *TeamHandler {
	return &TeamHandler{service: service}
}

// Create handles POST /api/v1/teams
func (h *TeamHandler) Create(c *gin.Context) {
	caller, ok := getCaller(c)
	if !ok {
		return
	}

	var req appteam.CreateTeamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.service.Create(c.Request.Context(), caller, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// Get handles GET /api/v1/teams/:id
func (h *TeamHandler) Get(c *gin.Context) {
	caller, ok := getCaller(c)
	if !ok {
		return
	}
	id, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	resp, err := h.service.GetByID(c.Request.Context(), caller, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// List handles GET /api/v1/teams
func (h *TeamHandler) List(c *gin.Context) {
	caller, ok := getCaller(c)
	if !ok {
		return
	}

	resp, err := h.service.GetAll(c.Request.Context(), caller)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// ListByUser handles GET /api/v1/teams/user/:id
func (h *TeamHandler) ListByUser(c *gin.Context) {
	caller, ok := getCaller(c)
	if !ok {
		return
	}
	userID, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	resp, err := h.service.GetByUser(c.Request.Context(), caller, userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Update handles PUT /api/v1/teams/:id
func (h *TeamHandler) Update(c *gin.Context) {
	caller, ok := getCaller(c)
	if !ok {
		return
	}
	id, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	var req appteam.UpdateTeamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.service.Update(c.Request.Context(), caller, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Delete handles DELETE /api/v1/teams/:id
func (h *TeamHandler) Delete(c *gin.Context) {
	caller, ok := getCaller(c)
	if !ok {
		return
	}
	id, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), caller, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// AddMember handles POST /api/v1/teams/:id/members
func (h *TeamHandler) AddMember(c *gin.Context) {
	caller, ok := getCaller(c)
	if !ok {
		return
	}
	id, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	var req appteam.AddMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.service.AddMember(c.Request.Context(), caller, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// RemoveMember handles DELETE /api/v1/teams/:id/members/:userId
func (h *TeamHandler) RemoveMember(c *gin.Context) {
	caller, ok := getCaller(c)
	if !ok {
		return
	}
	id, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}
	userID, ok := h.parseIDParam(c, "userId")
	if !ok {
		return
	}

	resp, err := h.service.RemoveMember(c.Request.Context(), caller, id, userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// ListMembers handles GET /api/v1/teams/:id/members
func (h *TeamHandler) ListMembers(c *gin.Context) {
	caller, ok := getCaller(c)
	if !ok {
		return
	}
	id, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	resp, err := h.service.GetMembers(c.Request.Context(), caller, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Exists handles GET /internal/exists/:id. The answer is a bare JSON
// boolean; lookup clients depend on this wire shape.
func (h *TeamHandler) Exists(c *gin.Context) {
	id, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	exists, err := h.service.Exists(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, exists)
}

// TeamsForUser handles GET /internal/user/:userId. The answer is the bare
// list of team snapshots; lookup clients depend on this wire shape.
func (h *TeamHandler) TeamsForUser(c *gin.Context) {
	userID, ok := h.parseIDParam(c, "userId")
	if !ok {
		return
	}

	teams, err := h.service.TeamsForUser(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, teams)
}

// HasMember handles GET /internal/:id/members/:userId. The answer is a bare
// JSON boolean; lookup clients depend on this wire shape.
func (h *TeamHandler) HasMember(c *gin.Context) {
	id, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}
	userID, ok := h.parseIDParam(c, "userId")
	if !ok {
		return
	}

	isMember, err := h.service.HasMember(c.Request.Context(), id, userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, isMember)
}
