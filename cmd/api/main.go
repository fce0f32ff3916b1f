package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"

	httpAdapter "github.com/avela/taskboard-backend/internal/adapters/primary/http"
	mw "github.com/avela/taskboard-backend/internal/adapters/primary/http/middleware"
	"github.com/avela/taskboard-backend/internal/adapters/primary/websocket"
	"github.com/avela/taskboard-backend/internal/adapters/secondary/postgres"
	"github.com/avela/taskboard-backend/internal/auth"
	"github.com/avela/taskboard-backend/internal/config"
	"github.com/avela/taskboard-backend/internal/core/services"
	"github.com/avela/taskboard-backend/internal/infrastructure/logging"
)

func main() {
	// 1. Load Configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// 2. Initialize Structured Logger
	logger := logging.NewLogger(logging.Config{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		Output:      os.Stdout,
		ServiceName: cfg.App.Name,
		Environment: cfg.App.Environment,
	})

	logger.Info("starting service",
		"version", cfg.App.Version,
		"environment", cfg.App.Environment,
	)

	// 3. Initialize Database Pool
	ctx := context.Background()
	poolConfig, err := pgxpool.ParseConfig(cfg.Database.URL)
	if err != nil {
		logger.Error("failed to parse database URL", "error", err)
		os.Exit(1)
	}

	poolConfig.MaxConns = int32(cfg.Database.MaxOpenConns)
	poolConfig.MinConns = int32(cfg.Database.MaxIdleConns)
	poolConfig.MaxConnLifetime = cfg.Database.ConnMaxLifetime
	poolConfig.MaxConnIdleTime = cfg.Database.ConnMaxIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		logger.Error("database ping failed", "error", err)
		os.Exit(1)
	}
	logger.Info("database connection established")

	// 4. Initialize Security & Real-time Components
	tokenManager := auth.NewTokenManager(cfg.JWT.Secret)
	hub := websocket.NewHub(logger)

	// Background sweep for connections that stopped answering pings.
	sweepCtx, stopSweep := context.WithCancel(ctx)
	defer stopSweep()
	go func() {
		ticker := time.NewTicker(cfg.WebSocket.SweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-sweepCtx.Done():
				return
			case <-ticker.C:
				if evicted := hub.EvictStale(cfg.WebSocket.StaleMaxIdle); evicted > 0 {
					logger.Info("evicted stale connections", "count", evicted)
				}
			}
		}
	}()

	// 5. Initialize Rate Limiters
	var generalRateLimiter *mw.RateLimiter
	var broadcastRateLimiter *mw.UserRateLimiter
	if cfg.RateLimit.Enabled {
		generalRateLimiter = mw.NewRateLimiter(mw.RateLimiterConfig{
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			BurstSize:         cfg.RateLimit.BurstSize,
			CleanupInterval:   time.Minute,
			TTL:               3 * time.Minute,
		})
		broadcastRateLimiter = mw.NewUserRateLimiter(
			cfg.RateLimit.BroadcastRPS,
			cfg.RateLimit.BroadcastBurst,
		)
	}

	// 6. Dependency Injection (Wiring the Hexagon)

	// Error Handler
	errorHandler := httpAdapter.NewErrorHandler(logger)

	// Repositories (Secondary Adapters)
	taskRepo := postgres.NewTaskRepository(pool)
	projectRepo := postgres.NewProjectRepository(pool)
	categoryRepo := postgres.NewCategoryRepository(pool)
	activityRepo := postgres.NewActivityRepository(pool)
	userRepo := postgres.NewUserRepository(pool)

	// Services (Core)
	taskService := services.NewTaskService(taskRepo, projectRepo, categoryRepo, activityRepo, hub, logger)
	bulkService := services.NewBulkService(taskRepo, categoryRepo, activityRepo, logger)
	projectService := services.NewProjectService(projectRepo, activityRepo, logger)
	categoryService := services.NewCategoryService(categoryRepo, projectRepo, logger)
	activityService := services.NewActivityService(activityRepo)
	userService := services.NewUserService(userRepo, logger)

	// Handlers (Primary Adapters)
	bulkHandler := httpAdapter.NewBulkHandler(bulkService, errorHandler, logger)
	taskHandler := httpAdapter.NewTaskHandler(taskService, bulkHandler, errorHandler, logger)
	categoryHandler := httpAdapter.NewCategoryHandler(categoryService, errorHandler, logger)
	projectHandler := httpAdapter.NewProjectHandler(projectService, categoryHandler, errorHandler, logger)
	activityHandler := httpAdapter.NewActivityHandler(activityService, errorHandler, logger)
	meHandler := httpAdapter.NewMeHandler(userService, errorHandler, logger)
	realtimeHandler := httpAdapter.NewRealtimeHandler(hub, projectService, cfg.WebSocket.StaleMaxIdle, errorHandler, logger)
	wsHandler := httpAdapter.NewWebSocketHandler(hub, tokenManager, cfg, logger)
	healthHandler := httpAdapter.NewHealthHandler(pool, hub, cfg.App.Version)

	// 7. Setup Router
	r := chi.NewRouter()

	// Global middleware
	r.Use(mw.RequestID)
	r.Use(mw.RequestLogger(logger))
	r.Use(mw.RecoveryLogger(logger))
	r.Use(cors.Handler(corsOptions(cfg)))

	if generalRateLimiter != nil {
		r.Use(generalRateLimiter.Middleware)
	}

	// Health check endpoints (outside /api/v1 for standard probe paths)
	r.Get("/health", healthHandler.HandleHealth)
	r.Get("/health/live", healthHandler.HandleLiveness)
	r.Get("/health/ready", healthHandler.HandleReadiness)

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		// WebSocket route (Authentication is handled inside the handler)
		r.Get("/ws", wsHandler.ServeHTTP)

		// Protected REST routes
		r.Group(func(r chi.Router) {
			r.Use(mw.JWTMiddleware(tokenManager))
			r.Route("/tasks", taskHandler.RegisterRoutes)
			r.Route("/projects", projectHandler.RegisterRoutes)
			r.Mount("/activities", activityHandler.Router())
			r.Mount("/me", meHandler.Router())

			var broadcastMW func(http.Handler) http.Handler
			if broadcastRateLimiter != nil {
				broadcastMW = broadcastRateLimiter.Middleware
			}
			r.Mount("/realtime", realtimeHandler.Router(broadcastMW))
		})
	})

	// 8. Start Server with Graceful Shutdown
	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		logger.Info("server starting", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	logger.Info("shutdown signal received", "signal", sig.String())
	stopSweep()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", "error", err)
		os.Exit(1)
	}

	logger.Info("server shutdown complete")
}

// corsOptions derives the browser CORS policy from the websocket origin
// allowlist so both surfaces trust the same frontends. Development runs
// without an allowlist and accepts any origin.
func corsOptions(cfg *config.Config) cors.Options {
	if cfg.IsDevelopment() && len(cfg.WebSocket.AllowedOrigins) == 0 {
		return cors.Options{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
			ExposedHeaders: []string{"X-Request-ID"},
			MaxAge:         300,
		}
	}
	return cors.Options{
		AllowedOrigins:   cfg.WebSocket.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}
}
