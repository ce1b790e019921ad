package handlers

import (
	"encoding/json"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/checkia-backend/internal/http/response"
	"github.com/yungbote/checkia-backend/internal/services"
)

// Poll states as the web client reads them.
const (
	TaskStatePending = "PENDING"
	TaskStateSuccess = "SUCCESS"
	TaskStateFailure = "FAILURE"

	TaskStatusRunning = "EN_COURS"
	TaskStatusDone    = "TERMINÉ"
	TaskStatusError   = "ERREUR"
)

type TaskStatusResponse struct {
	State   string          `json:"state"`
	Status  string          `json:"status"`
	Stage   string          `json:"stage,omitempty"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   string          `json:"error,omitempty"`
	Message string          `json:"message,omitempty"`
}

type TaskHandler struct {
	jobs services.JobService
}

func NewTaskHandler(jobs services.JobService) *TaskHandler {
	return &TaskHandler{jobs: jobs}
}

// GET /api/task-status/:task_id
func (h *TaskHandler) Status(c *gin.Context) {
	id, ok := parseID(c, "task_id")
	if !ok {
		return
	}
	st, err := h.jobs.Poll(dbcOf(c), id)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, TaskStatusOf(st))
}

func TaskStatusOf(st *services.JobStatus) TaskStatusResponse {
	switch st.State {
	case services.JobStateSucceeded:
		out := TaskStatusResponse{State: TaskStateSuccess, Status: TaskStatusDone, Result: st.Result}
		if len(st.Result) == 0 {
			out.Message = "task completed"
		}
		return out
	case services.JobStateFailed:
		msg := st.Error
		if msg == "" {
			msg = "task failed"
		}
		return TaskStatusResponse{State: TaskStateFailure, Status: TaskStatusError, Error: msg}
	default:
		return TaskStatusResponse{State: TaskStatePending, Status: TaskStatusRunning, Stage: st.Stage, Message: "task in progress"}
	}
}
