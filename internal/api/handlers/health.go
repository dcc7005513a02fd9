package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/hoopsight/hoopsight/internal/prediction"
	"github.com/hoopsight/hoopsight/internal/services"
)

type HealthHandler struct {
	registry  *prediction.Registry
	scheduler *services.RefreshScheduler
}

func NewHealthHandler(registry *prediction.Registry, scheduler *services.RefreshScheduler) *HealthHandler {
	return &HealthHandler{
		registry:  registry,
		scheduler: scheduler,
	}
}

// GetHealth returns basic liveness plus which prediction models loaded.
// Always 200 while the server is up; missing models degrade to the
// fallback tier, they do not make the service unhealthy.
func (h *HealthHandler) GetHealth(c *gin.Context) {
	models := make(map[string]bool, len(prediction.Targets))
	for _, target := range prediction.Targets {
		models[string(target)] = h.registry.IsAvailable(target)
	}

	body := gin.H{
		"status":    "ok",
		"service":   "hoopsight",
		"timestamp": time.Now().UTC(),
		"models":    models,
	}
	if h.scheduler != nil {
		body["refresh"] = h.scheduler.GetStatus()
	}

	c.JSON(http.StatusOK, body)
}

// TriggerRefresh kicks off a dataset rebuild outside the cron schedule.
func (h *HealthHandler) TriggerRefresh(c *gin.Context) {
	if h.scheduler == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "refresh scheduler not configured",
		})
		return
	}

	h.scheduler.TriggerNow()
	c.JSON(http.StatusAccepted, gin.H{
		"status": "refresh started",
	})
}
