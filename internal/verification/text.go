package verification

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	types "github.com/yungbote/checkia-backend/internal/domain"
)

const (
	DefaultTextModel          = "openai/gpt-4o-mini"
	textTemperature   float32 = 0.1
	textMaxTokens             = 700
	maxPrimarySources         = 3
	neutralConfidence         = 50
)

var errNoTextModel = errors.New("text model not configured")

type TextInput struct {
	Claim          string
	Classification Classification
	Retrieval      Retrieval
	Now            time.Time
}

type textReply struct {
	Verdict        string   `json:"verdict"`
	Explanation    string   `json:"explanation"`
	PrimarySources []string `json:"primary_sources"`
	Confidence     *float64 `json:"confidence"`
}

// TextAdjudicator turns classifier and retrieval signals into a claim verdict
// through one language model call.
type TextAdjudicator struct {
	model   ChatModel
	name    string
	timeout time.Duration
}

func NewTextAdjudicator(model ChatModel, modelName string, timeout time.Duration) *TextAdjudicator {
	if strings.TrimSpace(modelName) == "" {
		modelName = DefaultTextModel
	}
	return &TextAdjudicator{model: model, name: modelName, timeout: timeout}
}

func (a *TextAdjudicator) Adjudicate(ctx context.Context, in TextInput) TextVerdict {
	now := in.Now
	if now.IsZero() {
		now = time.Now()
	}
	out := TextVerdict{
		Classification: in.Classification,
		Retrieval:      in.Retrieval,
		CheckedAt:      now.UTC(),
	}
	if out.Retrieval.Sources == nil {
		out.Retrieval.Sources = []Source{}
	}

	raw, err := a.call(ctx, in.Claim, in.Classification, out.Retrieval, now)
	if err != nil {
		return classifierFallback(out, err)
	}
	return decideText(out, raw)
}

func (a *TextAdjudicator) call(ctx context.Context, claim string, c Classification, r Retrieval, now time.Time) (string, error) {
	if a == nil || a.model == nil {
		return "", errNoTextModel
	}
	cctx, cancel := withTimeout(ctx, a.timeout)
	defer cancel()
	return a.model.Chat(cctx, ChatRequest{
		Model:       a.name,
		System:      "You are a rigorous fact-checker. Always reply in French with a single JSON object.",
		Prompt:      textAdjudicationPrompt(claim, c, r, now),
		Temperature: textTemperature,
		MaxTokens:   textMaxTokens,
	})
}

// decideText applies the parse policy to a raw model reply.
func decideText(out TextVerdict, raw string) TextVerdict {
	var reply textReply
	verdict, ok := "", false
	if decodeObject(raw, &reply) {
		verdict, ok = normalizeClaimVerdict(reply.Verdict)
	}
	if !ok {
		out.Outcome = OutcomeParseFailed
		out.Verdict = ScanVerdict(raw)
		out.Explanation = strings.TrimSpace(StripCodeFences(raw))
		if out.Explanation == "" {
			out.Explanation = "Réponse du modèle vide."
		}
		out.PrimarySources = out.Retrieval.Links(maxPrimarySources)
		out.Confidence = neutralConfidence
		return out
	}

	out.Outcome = OutcomeOK
	out.Verdict = verdict
	out.Explanation = strings.TrimSpace(reply.Explanation)
	if out.Explanation == "" {
		out.Explanation = strings.TrimSpace(StripCodeFences(raw))
	}
	out.PrimarySources = primarySources(reply.PrimarySources, out.Retrieval)
	if reply.Confidence != nil {
		out.Confidence = ClampConfidence(int(math.Round(*reply.Confidence)))
	} else {
		out.Confidence = neutralConfidence
	}
	return out
}

func primarySources(reported []string, r Retrieval) []string {
	out := []string{}
	seen := map[string]bool{}
	for _, u := range reported {
		u = strings.TrimSpace(u)
		if u == "" || seen[u] {
			continue
		}
		seen[u] = true
		out = append(out, u)
		if len(out) == maxPrimarySources {
			return out
		}
	}
	if len(out) == 0 {
		return r.Links(maxPrimarySources)
	}
	return out
}

// classifierFallback is the degraded verdict used when the adjudication call
// itself fails.
func classifierFallback(out TextVerdict, err error) TextVerdict {
	out.Outcome = OutcomeDegraded
	if out.Classification.Label == LabelSupports {
		out.Verdict = types.VerdictTrue
	} else {
		out.Verdict = types.VerdictFalse
	}
	out.Confidence = ClampConfidence(int(math.Round(out.Classification.Confidence * 100)))
	out.PrimarySources = out.Retrieval.Links(maxPrimarySources)
	out.Explanation = fmt.Sprintf(
		"Analyse en mode dégradé : l'analyse approfondie a échoué (%v). Verdict basé uniquement sur le classifieur automatique (%s, confiance %d%%).",
		err, out.Classification.Label, out.Confidence,
	)
	return out
}
