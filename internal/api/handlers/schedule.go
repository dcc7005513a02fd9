package handlers

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"

	"github.com/hoopsight/hoopsight/internal/providers"
	"github.com/hoopsight/hoopsight/internal/services"
	"github.com/hoopsight/hoopsight/pkg/utils"
)

const scheduleCacheTTL = 20 * time.Second

type ScheduleHandler struct {
	client  *providers.Client
	cache   *services.CacheService
	breaker *services.CircuitBreakerService
	logger  *logrus.Logger
}

func NewScheduleHandler(client *providers.Client, cache *services.CacheService, breaker *services.CircuitBreakerService, logger *logrus.Logger) *ScheduleHandler {
	return &ScheduleHandler{
		client:  client,
		cache:   cache,
		breaker: breaker,
		logger:  logger,
	}
}

// GetSchedule handles GET /schedule?date=YYYY-MM-DD. The upstream game
// payload is passed through untouched; the frontend owns its shape.
func (h *ScheduleHandler) GetSchedule(c *gin.Context) {
	date := c.Query("date")
	if _, err := time.Parse("2006-01-02", date); err != nil {
		utils.SendValidationError(c, "Invalid date", "date must be YYYY-MM-DD")
		return
	}

	ctx := c.Request.Context()
	cacheKey := services.ScheduleCacheKey(date)

	var cached json.RawMessage
	if err := h.cache.Get(ctx, cacheKey, &cached); err == nil {
		utils.SendSuccess(c, cached)
		return
	}

	result, err := h.breaker.Execute("games", func() (interface{}, error) {
		return h.client.FetchGamesByDate(ctx, date)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			utils.SendServiceUnavailable(c, "Upstream API is temporarily unavailable")
			return
		}
		h.logger.WithError(err).WithField("date", date).Error("Schedule fetch failed")
		utils.SendUpstreamError(c, "Failed to fetch schedule")
		return
	}

	games := result.(json.RawMessage)
	if err := h.cache.Set(ctx, cacheKey, games, scheduleCacheTTL); err != nil {
		h.logger.WithError(err).Warn("Failed to cache schedule")
	}

	utils.SendSuccess(c, games)
}
