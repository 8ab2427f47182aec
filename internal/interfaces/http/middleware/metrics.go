package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/RD-Observatory/internal/infrastructure/monitoring/prometheus"
)

// Metrics records request counts, durations and in-flight gauges. Paths are
// labeled with the route template, not the raw URL, to keep cardinality
// bounded.
func Metrics(metrics *prometheus.AppMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		method := c.Request.Method
		active := metrics.HTTPActiveRequests.WithLabelValues(method)
		active.Inc()
		started := time.Now()

		c.Next()

		active.Dec()
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		metrics.HTTPRequestsTotal.
			WithLabelValues(method, path, strconv.Itoa(c.Writer.Status())).
			Inc()
		metrics.HTTPRequestDuration.
			WithLabelValues(method, path).
			Observe(time.Since(started).Seconds())
	}
}
