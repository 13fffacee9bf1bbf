package middleware

import (
	"time"

	"store-ratings/internal/metrics"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// RequestLogger logs one line per request and records HTTP metrics.
func RequestLogger(log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		metrics.RequestStarted()
		defer metrics.RequestFinished()

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()
		route := c.FullPath()
		metrics.ObserveRequest(c.Request.Method, route, status, latency)

		fields := logrus.Fields{
			"method":  c.Request.Method,
			"path":    c.Request.URL.Path,
			"route":   route,
			"status":  status,
			"latency": latency.String(),
		}
		if p := CurrentPrincipal(c); p != nil {
			fields["user_id"] = p.UserID
			fields["role"] = p.Role
		}
		entry := log.WithFields(fields)

		switch {
		case len(c.Errors) > 0:
			entry.WithError(c.Errors.Last().Err).Error("request failed")
		case status >= 500:
			entry.Error("request failed")
		default:
			entry.Info("request")
		}
	}
}
