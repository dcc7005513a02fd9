package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Logger emits one structured log line per request.
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		entry := logrus.WithFields(logrus.Fields{
			"method":  c.Request.Method,
			"path":    path,
			"query":   query,
			"status":  c.Writer.Status(),
			"latency": time.Since(start).String(),
			"client":  c.ClientIP(),
		})

		if len(c.Errors) > 0 {
			entry.Error(c.Errors.String())
		} else if c.Writer.Status() >= 500 {
			entry.Error("Request failed")
		} else {
			entry.Info("Request handled")
		}
	}
}
