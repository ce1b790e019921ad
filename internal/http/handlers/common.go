package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/checkia-backend/internal/http/response"
	"github.com/yungbote/checkia-backend/internal/platform/dbctx"
)

var errInvalidID = errors.New("invalid id")

func dbcOf(c *gin.Context) dbctx.Context {
	return dbctx.Context{Ctx: c.Request.Context()}
}

// parseID reads a uuid path parameter, writing a 400 when it is malformed.
func parseID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil || id == uuid.Nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_id", errInvalidID)
		return uuid.Nil, false
	}
	return id, true
}
