package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/checkia-backend/internal/http/response"
)

// LimitBody caps the request body. Uploads over the cap fail while the
// multipart form is parsed; a declared length over the cap fails early.
func LimitBody(max int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if max <= 0 {
			c.Next()
			return
		}
		if c.Request.ContentLength > max {
			response.RespondError(c, http.StatusRequestEntityTooLarge, "payload_too_large", errTooLarge)
			c.Abort()
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, max)
		c.Next()
	}
}
