package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/hoopsight/hoopsight/internal/api"
	"github.com/hoopsight/hoopsight/internal/api/handlers"
	"github.com/hoopsight/hoopsight/internal/api/middleware"
	"github.com/hoopsight/hoopsight/internal/features"
	"github.com/hoopsight/hoopsight/internal/ingest"
	"github.com/hoopsight/hoopsight/internal/prediction"
	"github.com/hoopsight/hoopsight/internal/providers"
	"github.com/hoopsight/hoopsight/internal/services"
	"github.com/hoopsight/hoopsight/internal/storage"
	"github.com/hoopsight/hoopsight/pkg/config"
	"github.com/hoopsight/hoopsight/pkg/database"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}

	// Setup logging
	if cfg.IsDevelopment() {
		logrus.SetLevel(logrus.DebugLevel)
		gin.SetMode(gin.DebugMode)
	} else {
		logrus.SetLevel(logrus.InfoLevel)
		gin.SetMode(gin.ReleaseMode)
	}
	logger := logrus.StandardLogger()

	if err := cfg.ValidateCredentials(); err != nil {
		logrus.Warnf("Upstream API credentials missing, online endpoints will fail: %v", err)
	}

	// Connect to Redis
	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		logrus.Fatalf("Failed to parse Redis URL: %v", err)
	}
	redisClient := redis.NewClient(opt)
	ctx := context.Background()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logrus.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisClient.Close()

	// Connect to database. Storage is optional: without it the history
	// endpoint is off and the refresh job cannot run, but predictions
	// still work from live upstream data.
	var store *storage.Store
	db, err := database.NewConnection(cfg.DatabaseURL, cfg.IsDevelopment())
	if err != nil {
		logrus.Warnf("Database unavailable, running without stored game logs: %v", err)
	} else {
		defer db.Close()
		store = storage.NewStore(db.DB, logger)
		if err := store.AutoMigrate(); err != nil {
			logrus.Fatalf("Failed to migrate database: %v", err)
		}
	}

	// Initialize services
	cacheService := services.NewCacheService(redisClient)
	breaker := services.NewCircuitBreakerService(5, 30*time.Second, logger)
	client := providers.NewClient(cfg, logger)
	collector := ingest.NewCollector(client, logger)
	engine := features.NewEngine(logger)
	registry := prediction.NewRegistry(cfg.ModelsDir, logger)
	predictor := prediction.NewService(collector, engine, registry, logger)

	// Scheduled dataset refresh, only when storage is up
	var scheduler *services.RefreshScheduler
	if cfg.EnableRefreshJob && store != nil {
		builder := ingest.NewBuilder(collector, logger, ingest.BuildOptions{
			PlayersPerTeamLimit: cfg.PlayersPerTeamMax,
			SleepInterval:       cfg.PlayerFetchSleep,
			ContinueOnError:     true,
		})
		scheduler = services.NewRefreshScheduler(builder, store, []string{cfg.DefaultSeason}, cfg.RefreshSchedule, logger)
		if err := scheduler.Start(); err != nil {
			logrus.Errorf("Failed to start refresh scheduler: %v", err)
		} else {
			defer scheduler.Stop()
		}
	}

	// Setup Gin router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Logger())
	router.Use(middleware.CORS(cfg.CorsOrigins))

	// Health check endpoint
	healthHandler := handlers.NewHealthHandler(registry, scheduler)
	router.GET("/health", healthHandler.GetHealth)

	// Setup API routes under /api/v1
	limiter := services.NewRequestRateLimiter(cfg.RateLimitPerMinute, time.Minute)
	apiV1 := router.Group("/api/v1")
	apiV1.Use(middleware.RateLimit(limiter))
	api.SetupRoutes(apiV1, api.Deps{
		Client:    client,
		Predictor: predictor,
		Registry:  registry,
		Store:     store,
		Cache:     cacheService,
		Breaker:   breaker,
		Scheduler: scheduler,
		Config:    cfg,
		Logger:    logger,
	})

	// Setup server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logrus.Infof("Starting server on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logrus.Info("Shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logrus.Errorf("Server forced to shutdown: %v", err)
	}

	logrus.Info("Server exited")
}
