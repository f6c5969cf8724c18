package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	appproject "github.com/taskfabric/backend/internal/application/project"
)

// ProjectHandler exposes the project service over HTTP
type ProjectHandler struct {
	BaseHandler
	service *appproject.Service
}

// NewProjectHandler creates a new project handler
func NewProjectHandler(service *appproject.Service) *ProjectHandler {
	return &ProjectHandler{service: service}
}

// Create handles POST /api/v1/projects
func (h *ProjectHandler) Create(c *gin.Context) {
	caller, ok := getCaller(c)
	if !ok {
		return
	}

	var req appproject.CreateProjectRequest
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

// Get handles GET /api/v1/projects/:id
func (h *ProjectHandler) Get(c *gin.Context) {
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

// Search handles GET /api/v1/projects with optional name and status filters
func (h *ProjectHandler) Search(c *gin.Context) {
	caller, ok := getCaller(c)
	if !ok {
		return
	}

	var req appproject.SearchRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.service.Search(c.Request.Context(), caller, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// ListByManager handles GET /api/v1/projects/manager/:id
func (h *ProjectHandler) ListByManager(c *gin.Context) {
	caller, ok := getCaller(c)
	if !ok {
		return
	}
	managerID, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	resp, err := h.service.GetByManager(c.Request.Context(), caller, managerID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// ListByTeam handles GET /api/v1/projects/team/:id
func (h *ProjectHandler) ListByTeam(c *gin.Context) {
	caller, ok := getCaller(c)
	if !ok {
		return
	}
	teamID, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	resp, err := h.service.GetByTeam(c.Request.Context(), caller, teamID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Update handles PUT /api/v1/projects/:id
func (h *ProjectHandler) Update(c *gin.Context) {
	caller, ok := getCaller(c)
	if !ok {
		return
	}
	id, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	var req appproject.UpdateProjectRequest
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

// UpdateStatus handles PATCH /api/v1/projects/:id/status
func (h *ProjectHandler) UpdateStatus(c *gin.Context) {
	caller, ok := getCaller(c)
	if !ok {
		return
	}
	id, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	var req appproject.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.service.UpdateStatus(c.Request.Context(), caller, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// AddTeam handles POST /api/v1/projects/:id/teams
func (h *ProjectHandler) AddTeam(c *gin.Context) {
	caller, ok := getCaller(c)
	if !ok {
		return
	}
	id, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	var req appproject.AddTeamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.service.AddTeam(c.Request.Context(), caller, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Delete handles DELETE /api/v1/projects/:id
func (h *ProjectHandler) Delete(c *gin.Context) {
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

// Exists handles GET /internal/exists/:id. The answer is a bare JSON
// boolean; lookup clients depend on this wire shape.
func (h *ProjectHandler) Exists(c *gin.Context) {
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
