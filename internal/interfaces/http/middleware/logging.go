package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/RD-Observatory/internal/infrastructure/monitoring/logging"
)

// slowRequestThreshold marks requests worth a warning even when they
// succeed.
const slowRequestThreshold = 3 * time.Second

// skipLogPaths are high-frequency probe paths kept out of the request log.
var skipLogPaths = map[string]struct{}{
	"/healthz": {},
	"/readyz":  {},
	"/metrics": {},
}

// RequestLogging logs one line per request: method, path, status, duration
// and request ID. 5xx log as errors, 4xx and slow requests as warnings.
func RequestLogging(log logging.Logger) gin.HandlerFunc {
	log = log.Named("http")
	return func(c *gin.Context) {
		if _, skip := skipLogPaths[c.Request.URL.Path]; skip {
			c.Next()
			return
		}

		started := time.Now()
		c.Next()
		elapsed := time.Since(started)

		fields := []logging.Field{
			logging.String("method", c.Request.Method),
			logging.String("path", c.Request.URL.Path),
			logging.Int("status", c.Writer.Status()),
			logging.Duration("duration", elapsed),
			logging.String("request_id", GetRequestID(c)),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, logging.String("errors", c.Errors.String()))
		}

		switch {
		case c.Writer.Status() >= 500:
			log.Error("request failed", fields...)
		case c.Writer.Status() >= 400:
			log.Warn("request rejected", fields...)
		case elapsed > slowRequestThreshold:
			log.Warn("slow request", fields...)
		default:
			log.Info("request served", fields...)
		}
	}
}
