package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hoopsight/hoopsight/internal/services"
	"github.com/hoopsight/hoopsight/pkg/utils"
)

// RateLimit rejects clients that exceed the per-window request budget,
// keyed by client IP.
func RateLimit(limiter *services.RequestRateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := limiter.Allow(c.ClientIP()); err != nil {
			utils.SendError(c, http.StatusTooManyRequests,
				utils.NewAppError(utils.ErrCodeRateLimited, "Too many requests", err.Error()))
			c.Abort()
			return
		}
		c.Next()
	}
}
