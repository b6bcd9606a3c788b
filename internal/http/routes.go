package http

import (
	"tasktracker/internal/config"
	"tasktracker/internal/http/handlers"
	"tasktracker/internal/http/middleware"
	"tasktracker/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

func RegisterRoutes(r *gin.Engine, db *pgxpool.Pool, tokens *service.TokenService, cfg *config.Config, version string) {
	h := handlers.NewHandler(db, tokens)
	healthHandler := handlers.NewHealthHandler(db, version)

	// Health checks (no rate limiting)
	r.GET("/health", healthHandler.Health)
	r.GET("/healthz", healthHandler.Liveness)
	r.GET("/readyz", healthHandler.Readiness)

	auth := middleware.Auth(tokens)
	writeRL := middleware.WriteRateLimit(cfg.TaskWriteLimit, cfg.TaskWriteWindow)

	api := r.Group("/api")
	api.Use(middleware.RedisRateLimit(cfg.APIRateLimit, cfg.APIRateWindow))

	// Auth endpoints get a stricter limit than the rest of the API
	authRL := middleware.RedisRateLimit(cfg.AuthRateLimit, cfg.AuthRateWindow)
	api.POST("/auth/register", authRL, h.Register)
	api.POST("/auth/login", authRL, h.Login)

	api.GET("/users", auth, h.ListUsers)

	tasks := api.Group("/tasks")
	tasks.Use(auth)
	{
		tasks.GET("", h.ListTasks)
		tasks.POST("", writeRL, h.CreateTask)
		tasks.GET("/:id", h.GetTask)
		tasks.PUT("/:id", writeRL, h.UpdateTask)
		tasks.DELETE("/:id", writeRL, h.DeleteTask)
		tasks.POST("/:id/comments", writeRL, h.AddComment)
	}
}
