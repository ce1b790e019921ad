package middleware

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/checkia-backend/internal/http/response"
	"github.com/yungbote/checkia-backend/internal/platform/ctxutil"
	"github.com/yungbote/checkia-backend/internal/platform/logger"
	"github.com/yungbote/checkia-backend/internal/verification"
)

// pipelineRoutes maps intake routes to the verification path they start.
var pipelineRoutes = map[string]string{
	"/api/submissions":          verification.PathText,
	"/api/verify-image-content": verification.PathContent,
	"/api/detect-ai-image":      verification.PathAIDetection,
}

// intakePath returns the pipeline path a request submitted to, or "" when it
// did not start a verification.
func intakePath(method, route string) string {
	if method != "POST" {
		return ""
	}
	return pipelineRoutes[route]
}

// RequestLogger logs one line per request. Submissions carry the pipeline
// path with the task and record ids; reads carry the id they looked up.
func RequestLogger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		if log == nil || strings.HasSuffix(c.Request.URL.Path, "/healthcheck") {
			return
		}

		status := c.Writer.Status()
		method := strings.ToUpper(c.Request.Method)
		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}

		fields := []interface{}{
			"method", method,
			"path", route,
			"status", status,
			"duration_ms", time.Since(start).Milliseconds(),
		}
		if p := intakePath(method, route); p != "" {
			fields = append(fields, "pipeline", p)
		}
		if id := c.GetString(response.KeyTaskID); id != "" {
			fields = append(fields, "task_id", id)
		} else if id := c.Param("task_id"); id != "" {
			fields = append(fields, "task_id", id)
		}
		if id := c.GetString(response.KeyRecordID); id != "" {
			fields = append(fields, "record_id", id)
		} else if id := c.Param("id"); id != "" {
			fields = append(fields, "record_id", id)
		}
		if td := ctxutil.GetTraceData(c.Request.Context()); td != nil {
			if td.TraceID != "" {
				fields = append(fields, "trace_id", td.TraceID)
			}
			if td.RequestID != "" {
				fields = append(fields, "request_id", td.RequestID)
			}
		}
		if rd := ctxutil.GetRequestData(c.Request.Context()); rd != nil {
			fields = append(fields, "user_id", rd.UserID.String())
		}

		switch {
		case status >= 500:
			log.Error("HTTP request", fields...)
		case status >= 400:
			log.Warn("HTTP request", fields...)
		default:
			log.Info("HTTP request", fields...)
		}
	}
}
