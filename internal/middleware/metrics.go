package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"budgettracker/internal/metrics"
)

// Metrics updates the HTTP request collectors. Routes are labeled by their
// pattern to keep path parameters out of the label set.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())
		elapsed := time.Since(start).Seconds()

		metrics.RequestDuration.WithLabelValues(status, c.Request.Method, route).Observe(elapsed)
		metrics.RequestCount.WithLabelValues(status, c.Request.Method, route).Inc()
	}
}
