package handler

import (
	"github.com/gin-gonic/gin"

	apptask "github.com/taskfabric/backend/internal/application/task"
)

// TaskHandler exposes the task service over HTTP
type TaskHandler struct {
	BaseHandler
	service *apptask.Service
}

// NewTaskHandler creates a new task handler
func NewTaskHandler(service *apptask.Service) *TaskHandler {
	return &TaskHandler{service: service}
}

// Create handles POST /api/v1/tasks
func (h *TaskHandler) Create(c *gin.Context) {
	caller, ok := getCaller(c)
	if !ok {
		return
	}

	var req apptask.CreateTaskRequest
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

// Get handles GET /api/v1/tasks/:id
func (h *TaskHandler) Get(c *gin.Context) {
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

// Search handles GET /api/v1/tasks with optional filters
func (h *TaskHandler) Search(c *gin.Context) {
	caller, ok := getCaller(c)
	if !ok {
		return
	}

	var req apptask.SearchRequest
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

// ListByProject handles GET /api/v1/tasks/project/:id
func (h *TaskHandler) ListByProject(c *gin.Context) {
	caller, ok := getCaller(c)
	if !ok {
		return
	}
	projectID, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	resp, err := h.service.GetByProject(c.Request.Context(), caller, projectID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// ListByAssignee handles GET /api/v1/tasks/assignee/:id
func (h *TaskHandler) ListByAssignee(c *gin.Context) {
	caller, ok := getCaller(c)
	if !ok {
		return
	}
	assigneeID, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	resp, err := h.service.GetByAssignee(c.Request.Context(), caller, assigneeID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Update handles PUT /api/v1/tasks/:id
func (h *TaskHandler) Update(c *gin.Context) {
	caller, ok := getCaller(c)
	if !ok {
		return
	}
	id, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	var req apptask.UpdateTaskRequest
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

// UpdateStatus handles PATCH /api/v1/tasks/:id/status
func (h *TaskHandler) UpdateStatus(c *gin.Context) {
	caller, ok := getCaller(c)
	if !ok {
		return
	}
	id, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	var req apptask.UpdateStatusRequest
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

// Delete handles DELETE /api/v1/tasks/:id
func (h *TaskHandler) Delete(c *gin.Context) {
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

// History handles GET /api/v1/tasks/:id/history
func (h *TaskHandler) History(c *gin.Context) {
	caller, ok := getCaller(c)
	if !ok {
		return
	}
	id, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	resp, err := h.service.GetHistory(c.Request.Context(), caller, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}
