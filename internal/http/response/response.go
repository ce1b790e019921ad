package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Context keys set on job-creating responses and read by the request log.
const (
	KeyTaskID   = "task_id"
	KeyRecordID = "record_id"
)

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

func RespondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.JSON(status, ErrorEnvelope{
		Error: APIError{
			Message: msg,
			Code:    code,
		},
	})
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

// RespondTask answers a submission that started a verification job. body
// gains "task_id" (null when no job was created) and the request is tagged
// with the task and record ids.
func RespondTask(c *gin.Context, status int, recordID uuid.UUID, taskID *uuid.UUID, body gin.H) {
	if body == nil {
		body = gin.H{}
	}
	c.Set(KeyRecordID, recordID.String())
	if taskID != nil {
		c.Set(KeyTaskID, taskID.String())
		body["task_id"] = *taskID
	} else {
		body["task_id"] = nil
	}
	c.JSON(status, body)
}
