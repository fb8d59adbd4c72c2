package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/perm-tracker-api/internal/service"
)

// unmatchedRoute labels requests that hit no registered route so raw
// paths never become label values.
const unmatchedRoute = "unmatched"

// Metrics records the latency and status of every request under its route
// template. Routes listed in skip, such as the scrape endpoint itself, are
// not recorded.
func Metrics(metrics *service.MetricsService, skip ...string) gin.HandlerFunc {
	ignored := make(map[string]struct{}, len(skip))
	for _, route := range skip {
		ignored[route] = struct{}{}
	}

	return func(c *gin.Context) {
		if metrics == nil {
			c.Next()
			return
		}
		route := c.FullPath()
		if _, ok := ignored[route]; ok && route != "" {
			c.Next()
			return
		}

		began := time.Now()
		c.Next()

		if route == "" {
			route = unmatchedRoute
		}
		metrics.ObserveHTTPRequest(c.Request.Method, route, c.Writer.Status(), time.Since(began))
	}
}
