package verification

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"

	types "github.com/yungbote/checkia-backend/internal/domain"
)

const (
	contentTemperature float32 = 0.3
	visionMaxTokens            = 1500
)

var errNoVisionModel = errors.New("vision model not configured")

type contentReply struct {
	Verdict     string   `json:"verdict"`
	Confidence  *float64 `json:"confidence"`
	Explanation string   `json:"explanation"`
	KeyElements []string `json:"key_elements"`
}

// VisionAnalyzer runs the vision language model for both image paths.
type VisionAnalyzer struct {
	model   ChatModel
	name    string
	timeout time.Duration
}

func NewVisionAnalyzer(model ChatModel, modelName string, timeout time.Duration) *VisionAnalyzer {
	if strings.TrimSpace(modelName) == "" {
		modelName = types.DefaultImageModel
	}
	return &VisionAnalyzer{model: model, name: modelName, timeout: timeout}
}

func (v *VisionAnalyzer) ModelName() string { return v.name }

func (v *VisionAnalyzer) chat(ctx context.Context, imageURL, prompt string, temp float32, schema *ResponseSchema) (string, error) {
	if v == nil || v.model == nil {
		return "", errNoVisionModel
	}
	cctx, cancel := withTimeout(ctx, v.timeout)
	defer cancel()
	return v.model.Chat(cctx, ChatRequest{
		Model:       v.name,
		Prompt:      prompt,
		ImageURL:    imageURL,
		Temperature: temp,
		MaxTokens:   visionMaxTokens,
		Schema:      schema,
	})
}

// VerifyContent checks an image against an optional claim. Without a claim
// the status is always analyzed.
func (v *VisionAnalyzer) VerifyContent(ctx context.Context, imageURL, claim string, now time.Time) ImageVerdict {
	if now.IsZero() {
		now = time.Now()
	}
	claim = strings.TrimSpace(claim)
	schema := &ResponseSchema{Name: "image_content_verification", Schema: &contentSchemaWithClaim}
	if claim == "" {
		schema = &ResponseSchema{Name: "image_content_analysis", Schema: &contentSchemaNoClaim}
	}
	raw, err := v.chat(ctx, imageURL, contentPrompt(claim, now), contentTemperature, schema)
	return decideContent(claim, raw, err, v.ModelName())
}

func decideContent(claim, raw string, callErr error, model string) ImageVerdict {
	details := map[string]any{
		"type":         "content_verification",
		"model":        model,
		"key_elements": []string{},
	}
	if claim != "" {
		details["claim"] = claim
	}
	if callErr != nil {
		details["error"] = callErr.Error()
		return ImageVerdict{
			Status:      types.ImageStatusError,
			Confidence:  0,
			Explanation: "Erreur lors de l'analyse de l'image : " + callErr.Error(),
			Details:     details,
			Model:       model,
			Outcome:     OutcomeFailed,
		}
	}

	var reply contentReply
	status, parsed := "", false
	if decodeObject(raw, &reply) {
		if claim == "" {
			status, parsed = types.ImageStatusAnalyzed, true
		} else if s, ok := normalizeClaimVerdict(reply.Verdict); ok {
			status, parsed = s, true
		}
	}
	if !parsed {
		status = types.ImageStatusUndetermined
		if claim == "" {
			status = types.ImageStatusAnalyzed
		}
		return ImageVerdict{
			Status:      status,
			Confidence:  neutralConfidence,
			Explanation: strings.TrimSpace(raw),
			Details:     details,
			Model:       model,
			Outcome:     OutcomeParseFailed,
		}
	}

	conf := neutralConfidence
	if reply.Confidence != nil {
		conf = ClampConfidence(int(math.Round(*reply.Confidence)))
	}
	if reply.KeyElements != nil {
		details["key_elements"] = reply.KeyElements
	}
	explanation := strings.TrimSpace(reply.Explanation)
	if explanation == "" {
		explanation = strings.TrimSpace(raw)
	}
	return ImageVerdict{
		Status:      status,
		Confidence:  conf,
		Explanation: explanation,
		Details:     details,
		Model:       model,
		Outcome:     OutcomeOK,
	}
}
