package verification

import (
	"context"
	"fmt"
	"math"
	"strings"

	types "github.com/yungbote/checkia-backend/internal/domain"
)

const (
	detectionTemperature float32 = 0.2

	aiDetectedScore = 0.60
	authenticScore  = 0.30
	maxForensicConf = 95
)

type detectionReply struct {
	Verdict            string   `json:"verdict"`
	Confidence         *float64 `json:"confidence"`
	AIProbability      *float64 `json:"ai_probability"`
	Explanation        string   `json:"explanation"`
	SuspiciousElements []string `json:"suspicious_elements"`
	AuthenticElements  []string `json:"authentic_elements"`
}

// forensicPercent truncates, so 0.599 reports 59%. The epsilon absorbs
// float artefacts such as 0.29*100 = 28.999999999999996.
func forensicPercent(p float64) int {
	return int(math.Floor(p*100 + 1e-9))
}

// ForensicVerdict maps a forensic score in [0,1] onto a detection status and
// a confidence that grows with the distance from the 50% boundary.
func ForensicVerdict(p float64) (string, int) {
	status := types.ImageStatusUncertain
	switch {
	case p >= aiDetectedScore:
		status = types.ImageStatusAIDetected
	case p <= authenticScore:
		status = types.ImageStatusAuthentic
	}
	pct := forensicPercent(p)
	dist := pct - 50
	if dist < 0 {
		dist = -dist
	}
	conf := 50 + dist
	if conf > maxForensicConf {
		conf = maxForensicConf
	}
	return status, ClampConfidence(conf)
}

// DetectAI runs the vision model as a forensic expert. When forensic is
// available it alone decides the status and the AI probability.
func (v *VisionAnalyzer) DetectAI(ctx context.Context, imageURL string, forensic ForensicScore) ImageVerdict {
	schema := &ResponseSchema{Name: "ai_image_detection", Schema: &detectionSchema}
	raw, err := v.chat(ctx, imageURL, detectionPrompt(forensic), detectionTemperature, schema)
	return decideDetection(forensic, raw, err, v.ModelName())
}

func decideDetection(forensic ForensicScore, raw string, callErr error, model string) ImageVerdict {
	details := map[string]any{
		"type":                 "ai_detection",
		"model":                model,
		"ai_probability":       nil,
		"suspicious_elements":  []string{},
		"authentic_elements":   []string{},
		"pixel_analyzer_score": nil,
		"llm_ai_probability":   nil,
	}
	var fStatus string
	var fConf int
	if forensic.Available {
		fStatus, fConf = ForensicVerdict(forensic.Score)
		details["pixel_analyzer_score"] = forensicPercent(forensic.Score)
		details["ai_probability"] = forensicPercent(forensic.Score)
	}

	if callErr != nil {
		details["error"] = callErr.Error()
		if forensic.Available {
			return ImageVerdict{
				Status:     fStatus,
				Confidence: fConf,
				Explanation: fmt.Sprintf(
					"L'analyse visuelle détaillée est indisponible (%v). Verdict établi par notre analyseur de pixels : probabilité de génération par IA de %d%%.",
					callErr, forensicPercent(forensic.Score),
				),
				Details: details,
				Model:   model,
				Outcome: OutcomeDegraded,
			}
		}
		return ImageVerdict{
			Status:      types.ImageStatusError,
			Confidence:  0,
			Explanation: "Erreur lors de la détection IA : " + callErr.Error(),
			Details:     details,
			Model:       model,
			Outcome:     OutcomeFailed,
		}
	}

	var reply detectionReply
	llmStatus, parsed := "", false
	if decodeObject(raw, &reply) {
		llmStatus, parsed = normalizeDetectionVerdict(reply.Verdict)
	}
	if !parsed {
		return ImageVerdict{
			Status:      types.ImageStatusUncertain,
			Confidence:  neutralConfidence,
			Explanation: strings.TrimSpace(raw),
			Details:     details,
			Model:       model,
			Outcome:     OutcomeParseFailed,
		}
	}

	if reply.SuspiciousElements != nil {
		details["suspicious_elements"] = reply.SuspiciousElements
	}
	if reply.AuthenticElements != nil {
		details["authentic_elements"] = reply.AuthenticElements
	}
	if reply.AIProbability != nil {
		details["llm_ai_probability"] = ClampConfidence(int(math.Round(*reply.AIProbability)))
	}
	explanation := strings.TrimSpace(reply.Explanation)
	if explanation == "" {
		explanation = strings.TrimSpace(raw)
	}

	if forensic.Available {
		return ImageVerdict{
			Status:      fStatus,
			Confidence:  fConf,
			Explanation: explanation,
			Details:     details,
			Model:       model,
			Outcome:     OutcomeOK,
		}
	}

	conf := neutralConfidence
	if reply.Confidence != nil {
		conf = ClampConfidence(int(math.Round(*reply.Confidence)))
	}
	details["ai_probability"] = details["llm_ai_probability"]
	return ImageVerdict{
		Status:      llmStatus,
		Confidence:  conf,
		Explanation: explanation,
		Details:     details,
		Model:       model,
		Outcome:     OutcomeOK,
	}
}
