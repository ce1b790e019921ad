package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	types "github.com/yungbote/checkia-backend/internal/domain"
	"github.com/yungbote/checkia-backend/internal/http/response"
	"github.com/yungbote/checkia-backend/internal/services"
)

const statusInProgress = "EN_COURS"

var (
	errMissingImage  = errors.New("no image provided")
	errImageTooLarge = errors.New("image too large")
)

type ImageVerificationHandler struct {
	images services.ImageVerificationService
}

func NewImageVerificationHandler(images services.ImageVerificationService) *ImageVerificationHandler {
	return &ImageVerificationHandler{images: images}
}

// POST /api/verify-image-content
func (h *ImageVerificationHandler) VerifyContent(c *gin.Context) {
	h.submit(c, types.ImageKindContent, "Image verification started")
}

// POST /api/detect-ai-image
func (h *ImageVerificationHandler) DetectAI(c *gin.Context) {
	h.submit(c, types.ImageKindAIDetection, "AI detection started")
}

func (h *ImageVerificationHandler) submit(c *gin.Context, kind, message string) {
	fh, err := c.FormFile("image")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.RespondError(c, http.StatusRequestEntityTooLarge, "payload_too_large", errImageTooLarge)
			return
		}
		response.RespondError(c, http.StatusBadRequest, "validation_error", errMissingImage)
		return
	}
	if fh.Size > services.MaxImageBytes {
		response.RespondError(c, http.StatusRequestEntityTooLarge, "payload_too_large", errImageTooLarge)
		return
	}
	f, err := fh.Open()
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "validation_error", errMissingImage)
		return
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, services.MaxImageBytes+1))
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}

	rec, job, err := h.images.Submit(dbcOf(c), kind, services.ImageUpload{
		Filename: fh.Filename,
		Data:     data,
		Claim:    c.PostForm("claim_text"),
	})
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	var taskID *uuid.UUID
	if job != nil {
		taskID = &job.ID
	}
	response.RespondTask(c, http.StatusAccepted, rec.ID, taskID, gin.H{
		"message":         message,
		"verification_id": rec.ID,
		"status":          statusInProgress,
	})
}

// GET /api/image-verifications
func (h *ImageVerificationHandler) List(c *gin.Context) {
	rows, err := h.images.ListMine(dbcOf(c))
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, rows)
}

// GET /api/image-verifications/:id
func (h *ImageVerificationHandler) Get(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	rec, err := h.images.Get(dbcOf(c), id)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, rec)
}

// DELETE /api/image-verifications/:id
func (h *ImageVerificationHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.images.Delete(dbcOf(c), id); err != nil {
		response.RespondAPIError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
