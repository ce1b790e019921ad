package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/checkia-backend/internal/platform/apierr"
)

var errInternal = errors.New("internal error")

// RespondAPIError maps a service error onto the error envelope. Details of
// unexpected errors are not sent to the client.
func RespondAPIError(c *gin.Context, err error) {
	ae := apierr.From(err)
	if ae == nil {
		RespondError(c, http.StatusInternalServerError, "internal_error", errInternal)
		return
	}
	status := ae.Status
	if status == 0 {
		status = http.StatusInternalServerError
	}
	if status >= http.StatusInternalServerError {
		_ = c.Error(err)
		RespondError(c, status, ae.Code, errInternal)
		return
	}
	RespondError(c, status, ae.Code, ae)
}
