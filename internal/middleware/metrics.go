package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/classmood/moodgrid-api/internal/service"
)

// Metrics observes every request with its route template so that
// /stats/students/:id counts as one series, not one per student.
// Scrape and probe endpoints are excluded.
func Metrics(metricsSvc *service.MetricsService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if metricsSvc == nil {
			c.Next()
			return
		}

		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		switch path {
		case "/metrics", "/health", "/ready":
			c.Next()
			return
		}

		start := time.Now()
		c.Next()
		metricsSvc.ObserveHTTPRequest(c.Request.Method, path, c.Writer.Status(), time.Since(start))
	}
}
