package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/checkia-backend/internal/http/response"
	"github.com/yungbote/checkia-backend/internal/services"
)

type SubmissionHandler struct {
	submissions services.SubmissionService
}

func NewSubmissionHandler(submissions services.SubmissionService) *SubmissionHandler {
	return &SubmissionHandler{submissions: submissions}
}

// submitRequest accepts the French field name used by the web client.
type submitRequest struct {
	Texte  string `json:"texte"`
	Text   string `json:"text"`
	Source string `json:"source"`
}

// POST /api/submissions
func (h *SubmissionHandler) Create(c *gin.Context) {
	var req submitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	text := req.Texte
	if strings.TrimSpace(text) == "" {
		text = req.Text
	}
	sub, job, err := h.submissions.Submit(dbcOf(c), text, req.Source)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	var taskID *uuid.UUID
	if job != nil {
		taskID = &job.ID
	}
	response.RespondTask(c, http.StatusCreated, sub.ID, taskID, gin.H{"submission": sub})
}

// GET /api/submissions
func (h *SubmissionHandler) List(c *gin.Context) {
	subs, err := h.submissions.ListMine(dbcOf(c))
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, subs)
}

// GET /api/submissions/:id
func (h *SubmissionHandler) Get(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	sub, err := h.submissions.Get(dbcOf(c), id)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, sub)
}
