package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"

	"github.com/taskfabric/backend/internal/domain/shared"
	"github.com/taskfabric/backend/internal/infrastructure/auth"
	"github.com/taskfabric/backend/internal/interfaces/http/handler"
	"github.com/taskfabric/backend/internal/interfaces/http/middleware"
)

// NewEngine creates a gin engine with the shared middleware stack
func NewEngine(serviceName string, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	engine.Use(
		middleware.Recovery(logger),
		middleware.RequestID(),
		middleware.RequestLogger(logger),
		otelgin.Middleware(serviceName),
	)

	engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": serviceName})
	})

	registerValidators()
	return engine
}

// registerValidators installs custom binding validators
func registerValidators() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	_ = v.RegisterValidation("role", func(fl validator.FieldLevel) bool {
		return shared.ValidRole(shared.Role(fl.Field().String()))
	})
}

// RegisterUserRoutes mounts the user service's public and internal endpoints
func RegisterUserRoutes(engine *gin.Engine, h *handler.UserHandler, tokens *auth.TokenManager) {
	api := engine.Group("/api/v1/users")
	api.POST("/register", h.Register)
	api.POST("/login", h.Login)

	authed := api.Group("", middleware.Authenticate(tokens))
	authed.GET("", h.List)
	authed.GET("/:id", h.Get)
	authed.GET("/email/:email", h.GetByEmail)
	authed.PUT("/:id", h.Update)
	authed.DELETE("/:id", h.Delete)

	internal := engine.Group("/internal")
	internal.GET("/exists/:id", h.Exists)
	internal.GET("/:id", h.Snapshot)
}

// RegisterTeamRoutes mounts the team service's public and internal endpoints
func RegisterTeamRoutes(engine *gin.Engine, h *handler.TeamHandler, tokens *auth.TokenManager) {
	api := engine.Group("/api/v1/teams", middleware.Authenticate(tokens))
	api.POST("", h.Create)
	api.GET("", h.List)
	api.GET("/:id", h.Get)
	api.GET("/user/:id", h.ListByUser)
	api.PUT("/:id", h.Update)
	api.DELETE("/:id", h.Delete)
	api.GET("/:id/members", h.ListMembers)
	api.POST("/:id/members", h.AddMember)
	api.DELETE("/:id/members/:userId", h.RemoveMember)

	internal := engine.Group("/internal")
	internal.GET("/exists/:id", h.Exists)
	internal.GET("/user/:userId", h.TeamsForUser)
	internal.GET("/:id/members/:userId", h.HasMember)
}

// RegisterProjectRoutes mounts the project service's public and internal endpoints
func RegisterProjectRoutes(engine *gin.Engine, h *handler.ProjectHandler, tokens *auth.TokenManager) {
	api := engine.Group("/api/v1/projects", middleware.Authenticate(tokens))
	api.POST("", h.Create)
	api.GET("", h.Search)
	api.GET("/:id", h.Get)
	api.GET("/manager/:id", h.ListByManager)
	api.GET("/team/:id", h.ListByTeam)
	api.PUT("/:id", h.Update)
	api.PATCH("/:id/status", h.UpdateStatus)
	api.POST("/:id/teams", h.AddTeam)
	api.DELETE("/:id", h.Delete)

	internal := engine.Group("/internal")
	internal.GET("/exists/:id", h.Exists)
}

// RegisterTaskRoutes mounts the task service's endpoints
func RegisterTaskRoutes(engine *gin.Engine, h *handler.TaskHandler, tokens *auth.TokenManager) {
	api := engine.Group("/api/v1/tasks", middleware.Authenticate(tokens))
	api.POST("", h.Create)
	api.GET("", h.Search)
	api.GET("/:id", h.Get)
	api.GET("/project/:id", h.ListByProject)
	api.GET("/assignee/:id", h.ListByAssignee)
	api.PUT("/:id", h.Update)
	api.PATCH("/:id/status", h.UpdateStatus)
	api.DELETE("/:id", h.Delete)
	api.GET("/:id/history", h.History)
}
