package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/checkia-backend/internal/observability"
)

// Metrics records request counts and latency by route, and counts accepted
// submissions per verification path.
func Metrics(m *observability.Metrics) gin.HandlerFunc {
	if m == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		start := time.Now()
		m.ApiInflightInc()
		defer m.ApiInflightDec()

		c.Next()

		route := c.FullPath()
		switch route {
		case "":
			route = "unknown"
		case "/metrics":
			return
		}
		code := c.Writer.Status()
		m.ObserveAPI(c.Request.Method, route, strconv.Itoa(code), time.Since(start))
		if code >= 200 && code < 300 {
			m.ObserveIntake(intakePath(c.Request.Method, route))
		}
	}
}
