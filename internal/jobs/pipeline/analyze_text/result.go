package analyze_text

import (
	"github.com/google/uuid"

	types "github.com/yungbote/checkia-backend/internal/domain"
)

const explanationPreview = 100

func result(id uuid.UUID, status, verdict string, confidence int, explanation string, applied bool) map[string]any {
	r := []rune(explanation)
	if len(r) > explanationPreview {
		explanation = string(r[:explanationPreview]) + "..."
	}
	return map[string]any{
		"success":       verdict != types.VerdictError,
		"submission_id": id.String(),
		"status":        status,
		"verdict":       verdict,
		"confidence":    confidence,
		"explanation":   explanation,
		"applied":       applied,
	}
}
