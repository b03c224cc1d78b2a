package middleware

import (
	"strconv" // Status label
	"time"    // Latency

	"github.com/gin-gonic/gin" // Gin web framework

	"storefront/internal/metrics" // Prometheus instruments
)

// Metrics records request count and latency per route template
func Metrics(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		handler := c.FullPath()
		if handler == "" {
			handler = "unmatched" // Keep 404 probes out of the label space
		}
		m.Requests.WithLabelValues(handler, strconv.Itoa(c.Writer.Status())).Inc()
		m.LatencyMS.WithLabelValues(handler).Observe(float64(time.Since(start).Microseconds()) / 1000)
	}
}
