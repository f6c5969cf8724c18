package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	appuser "github.com/taskfabric/backend/internal/application/user"
	"github.com/taskfabric/backend/internal/domain/shared"
)

// UserHandler exposes the user service over HTTP
type UserHandler struct {
	BaseHandler
	service *appuser.Service
}

// NewUserHandler creates a new user handler
func NewUserHandler(service *appuser.Service) *UserHandler {
	return &UserHandler{service: service}
}

// Register handles POST /api/v1/users/register
func (h *UserHandler) Register(c *gin.Context) {
	var req appuser.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.service.Register(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// Login handles POST /api/v1/users/login
func (h *UserHandler) Login(c *gin.Context) {
	var req appuser.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Get handles GET /api/v1/users/:id
func (h *UserHandler) Get(c *gin.Context) {
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

// GetByEmail handles GET /api/v1/users/email/:email
func (h *UserHandler) GetByEmail(c *gin.Context) {
	caller, ok := getCaller(c)
	if !ok {
		return
	}

	resp, err := h.service.GetByEmail(c.Request.Context(), caller, c.Param("email"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// List handles GET /api/v1/users with an optional role query parameter
func (h *UserHandler) List(c *gin.Context) {
	caller, ok := getCaller(c)
	if !ok {
		return
	}

	var role *shared.Role
	if param := c.Query("role"); param != "" {
		r := shared.Role(param)
		role = &r
	}

	resp, err := h.service.ListByRole(c.Request.Context(), caller, role)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Update handles PUT /api/v1/users/:id
func (h *UserHandler) Update(c *gin.Context) {
	caller, ok := getCaller(c)
	if !ok {
		return
	}
	id, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	var req appuser.UpdateUserRequest
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

// Delete handles DELETE /api/v1/users/:id
func (h *UserHandler) Delete(c *gin.Context) {
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

// Exists handles GET /internal/exists/:id. Absence is a clean 200 with a
// bare JSON false, never a 404, so callers can tell it apart from failure.
func (h *UserHandler) Exists(c *gin.Context) {
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

// Snapshot handles GET /internal/:id
func (h *UserHandler) Snapshot(c *gin.Context) {
	id, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	resp, err := h.service.Snapshot(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
