package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"todo_webapp/internal/cache"
	"todo_webapp/internal/config"
	"todo_webapp/internal/db"
	httpServer "todo_webapp/internal/http"
	"todo_webapp/internal/http/handlers"
	"todo_webapp/internal/logger"
	"todo_webapp/internal/repository"
	"todo_webapp/internal/repository/memory"
	"todo_webapp/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/rs/cors"
)

func main() {
	cfg := config.Load()
	logger.Init(cfg.LogLevel, cfg.LogFormat)

	var (
		users  service.UserStore
		todos  service.TodoStore
		audits service.AuditStore
		deps   = map[string]handlers.Pinger{}
	)

	switch cfg.StorageDriver {
	case config.StorageDriverMemory:
		logger.Warn("using in-memory storage, data is lost on restart")
		users, todos, audits = memory.NewUserStore(), memory.NewTodoStore(), memory.NewAuditStore()
	default:
		dbPool := db.Connect(cfg.DatabaseURL)
		defer dbPool.Close()
		users = repository.NewUserRepository(dbPool)
		todos = repository.NewTodoRepository(dbPool)
		audits = repository.NewAuditRepository(dbPool)
		deps["database"] = dbPool
	}

	var todoCache service.TodoCache
	if rc := cache.NewRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.CacheTTL); rc != nil {
		defer rc.Close()
		todoCache = rc
		deps["redis"] = rc
	}

	audit := service.NewAuditService(audits)
	auth := service.NewAuthService(users, service.NewBcryptHasher(), service.NewJWTManager(cfg.JWTSecret, cfg.JWTTTL), audit)
	todoService := service.NewTodoService(todos, todoCache, audit)

	if cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := httpServer.NewRouter(handlers.NewHandler(auth, todoService), handlers.NewHealthHandler(deps, cfg.AppVersion))

	// frontend may be served from a different origin
	corsHandler := cors.New(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
		ExposedHeaders: []string{"X-Request-ID"},
	}).Handler(r)

	srv := &http.Server{
		Addr:              ":" + cfg.AppPort,
		Handler:           corsHandler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("server started", "port", cfg.AppPort, "storage", cfg.StorageDriver, "cache", todoCache != nil)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("listen failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		return
	}

	logger.Info("server exited")
}
