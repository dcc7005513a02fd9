package api

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/hoopsight/hoopsight/internal/api/handlers"
	"github.com/hoopsight/hoopsight/internal/prediction"
	"github.com/hoopsight/hoopsight/internal/providers"
	"github.com/hoopsight/hoopsight/internal/services"
	"github.com/hoopsight/hoopsight/internal/storage"
	"github.com/hoopsight/hoopsight/pkg/config"
)

// Deps carries the wired services the routes need.
type Deps struct {
	Client    *providers.Client
	Predictor *prediction.Service
	Registry  *prediction.Registry
	Store     *storage.Store
	Cache     *services.CacheService
	Breaker   *services.CircuitBreakerService
	Scheduler *services.RefreshScheduler
	Config    *config.Config
	Logger    *logrus.Logger
}

// SetupRoutes configures all API routes on the given router group.
func SetupRoutes(group *gin.RouterGroup, deps Deps) {
	playerHandler := handlers.NewPlayerHandler(deps.Client, deps.Predictor, deps.Registry, deps.Store, deps.Cache, deps.Breaker, deps.Config, deps.Logger)
	scheduleHandler := handlers.NewScheduleHandler(deps.Client, deps.Cache, deps.Breaker, deps.Logger)
	healthHandler := handlers.NewHealthHandler(deps.Registry, deps.Scheduler)

	// Player endpoints
	group.GET("/players", playerHandler.SearchPlayers)
	group.GET("/players/:id/prediction", playerHandler.GetPrediction)
	group.GET("/players/:id/history", playerHandler.GetHistory)

	// Schedule endpoint
	group.GET("/schedule", scheduleHandler.GetSchedule)

	// Admin endpoint for triggering a dataset rebuild (should be protected
	// in production)
	group.POST("/admin/refresh", healthHandler.TriggerRefresh)
}
