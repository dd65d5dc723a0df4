package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/codemaster-backend/internal/observability"
)

const unmatchedRoute = "unmatched"

// Metrics records request counts and latency by route pattern. Scrapes of
// /metrics are not counted, and a nil m disables the middleware.
func Metrics(m *observability.Metrics) gin.HandlerFunc {
	if m == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		if c.Request.URL.Path == "/metrics" {
			c.Next()
			return
		}
		start := time.Now()
		m.APIInflight(1)
		defer m.APIInflight(-1)

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = unmatchedRoute
		}
		m.ObserveAPI(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
