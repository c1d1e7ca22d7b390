package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sonarsarthak/EDUManager/internal/service"
)

const unmatchedRoute = "unmatched"

// Metrics observes every routed request. Requests that match no route share
// one label so scanners cannot inflate the path cardinality; skip lists
// paths left out entirely, such as the scrape endpoint.
func Metrics(metricsSvc *service.MetricsService, skip ...string) gin.HandlerFunc {
	skipped := make(map[string]struct{}, len(skip))
	for _, path := range skip {
		skipped[path] = struct{}{}
	}
	return func(c *gin.Context) {
		if metricsSvc == nil {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if _, ok := skipped[path]; ok {
			return
		}
		if path == "" {
			path = unmatchedRoute
		}
		metricsSvc.ObserveHTTPRequest(c.Request.Method, path, c.Writer.Status(), time.Since(start))
	}
}
