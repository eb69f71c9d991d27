package http

import (
	"todo_webapp/internal/http/handlers"
	"todo_webapp/internal/http/middleware"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter builds the gin engine with recovery, request logging and every route
func NewRouter(h *handlers.Handler, health *handlers.HealthHandler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestContext())
	RegisterRoutes(r, h, health)
	return r
}

func RegisterRoutes(r *gin.Engine, h *handlers.Handler, health *handlers.HealthHandler) {
	// Health checks and metrics
	r.GET("/health", health.Health)
	r.GET("/healthz", health.Liveness)
	r.GET("/readyz", health.Readiness)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")

	// Auth (no token required, except for /me and /activity)
	auth := api.Group("/auth")
	{
		auth.POST("/register", h.Register)
		auth.POST("/login", h.Login)
		auth.GET("/me", middleware.JWT(h.Auth), h.Me)
		auth.GET("/activity", middleware.JWT(h.Auth), h.Activity)
	}

	// Todos, always scoped to the token's user
	todos := api.Group("/todos")
	todos.Use(middleware.JWT(h.Auth))
	{
		todos.GET("", h.ListTodos)
		todos.POST("", h.CreateTodo)
		todos.GET("/stats", h.TodoStats)
		todos.PUT("/:id", h.UpdateTodo)
		todos.DELETE("/:id", h.DeleteTodo)
	}
}
