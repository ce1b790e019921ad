package verification

import (
	"context"
	"encoding/json"
	"time"
)

// Translator rewrites text between languages.
type Translator interface {
	Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error)
}

// Classifier is the advisory binary claim classifier.
type Classifier interface {
	Classify(ctx context.Context, text string) (Label, float64, error)
}

type SearchResult struct {
	Sources []Source
	Summary string
}

type SourceRetriever interface {
	Search(ctx context.Context, claim string, now time.Time) (*SearchResult, error)
}

// ForensicScorer returns an AI-generation likelihood in [0,1] for an image URL.
type ForensicScorer interface {
	AIScore(ctx context.Context, imageURL string) (float64, error)
}

// ResponseSchema asks the model for strict structured output.
type ResponseSchema struct {
	Name   string
	Schema json.Marshaler
}

type ChatRequest struct {
	Model       string
	System      string
	Prompt      string
	ImageURL    string
	Temperature float32
	MaxTokens   int
	Schema      *ResponseSchema
}

// ChatModel is a (vision capable) language model.
type ChatModel interface {
	Chat(ctx context.Context, req ChatRequest) (string, error)
}

const (
	advisoryConfidenceOnFailure = 0.5
	maxSources                  = 5
)

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}

// classify never fails: a missing or failing classifier reads as a low
// confidence refutation.
func classify(ctx context.Context, c Classifier, text string, timeout time.Duration) Classification {
	if c == nil {
		return Classification{Label: LabelRefutes, Confidence: advisoryConfidenceOnFailure, Outcome: OutcomeUnavailable}
	}
	cctx, cancel := withTimeout(ctx, timeout)
	defer cancel()
	label, conf, err := c.Classify(cctx, text)
	if err != nil {
		return Classification{Label: LabelRefutes, Confidence: advisoryConfidenceOnFailure, Outcome: OutcomeDegraded, Err: err.Error()}
	}
	if label != LabelSupports {
		label = LabelRefutes
	}
	if conf < 0 {
		conf = 0
	}
	if conf > 1 {
		conf = 1
	}
	return Classification{Label: label, Confidence: conf, Outcome: OutcomeOK}
}

// retrieve never fails: transport errors produce an empty result set.
func retrieve(ctx context.Context, r SourceRetriever, claim string, now time.Time, timeout time.Duration) Retrieval {
	if r == nil {
		return Retrieval{Sources: []Source{}, Outcome: OutcomeUnavailable}
	}
	cctx, cancel := withTimeout(ctx, timeout)
	defer cancel()
	res, err := r.Search(cctx, claim, now)
	if err != nil || res == nil {
		msg := "empty search result"
		if err != nil {
			msg = err.Error()
		}
		return Retrieval{Sources: []Source{}, Outcome: OutcomeDegraded, Err: msg}
	}
	return Retrieval{Sources: DedupeSources(res.Sources, maxSources), Summary: res.Summary, Outcome: OutcomeOK}
}

// ScoreImage never fails: a missing or failing scorer is reported unavailable.
func ScoreImage(ctx context.Context, s ForensicScorer, imageURL string, timeout time.Duration) ForensicScore {
	if s == nil {
		return ForensicScore{Outcome: OutcomeUnavailable}
	}
	cctx, cancel := withTimeout(ctx, timeout)
	defer cancel()
	p, err := s.AIScore(cctx, imageURL)
	if err != nil {
		return ForensicScore{Outcome: OutcomeDegraded, Err: err.Error()}
	}
	if !(p >= 0 && p <= 1) {
		return ForensicScore{Outcome: OutcomeDegraded, Err: "score out of range"}
	}
	return ForensicScore{Score: p, Available: true, Outcome: OutcomeOK}
}

// DedupeSources drops sources without a link or with a link already seen and
// keeps at most max entries in their original order.
func DedupeSources(in []Source, max int) []Source {
	out := make([]Source, 0, len(in))
	seen := map[string]bool{}
	for _, s := range in {
		if max > 0 && len(out) >= max {
			break
		}
		if s.Link == "" || seen[s.Link] {
			continue
		}
		seen[s.Link] = true
		out = append(out, s)
	}
	return out
}
