package verification

import (
	"time"
)

// Outcome tags how a stage result was produced. Every fallback path is visible
// here instead of hidden behind a recovered error.
type Outcome string

const (
	OutcomeOK          Outcome = "ok"
	OutcomeDegraded    Outcome = "degraded"
	OutcomeUnavailable Outcome = "unavailable"
	OutcomeParseFailed Outcome = "parse_failed"
	OutcomeFailed      Outcome = "failed"
)

type Label string

const (
	LabelSupports Label = "supports"
	LabelRefutes  Label = "refutes"
)

// Source is one retrieved web document, most relevant first.
type Source struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	Snippet string `json:"snippet,omitempty"`
	Date    string `json:"date,omitempty"`
}

type Classification struct {
	Label      Label   `json:"label"`
	Confidence float64 `json:"confidence"`
	Outcome    Outcome `json:"outcome"`
	Err        string  `json:"error,omitempty"`
}

type Retrieval struct {
	Sources []Source `json:"sources"`
	Summary string   `json:"summary"`
	Outcome Outcome  `json:"outcome"`
	Err     string   `json:"error,omitempty"`
}

// Links returns up to n non-empty source links in rank order.
func (r Retrieval) Links(n int) []string {
	out := []string{}
	for _, s := range r.Sources {
		if len(out) >= n {
			break
		}
		if s.Link != "" {
			out = append(out, s.Link)
		}
	}
	return out
}

// ForensicScore is the pixel-level AI likelihood in [0,1]. Available is false
// when the scorer is not configured or the call failed.
type ForensicScore struct {
	Score     float64 `json:"score"`
	Available bool    `json:"available"`
	Outcome   Outcome `json:"outcome"`
	Err       string  `json:"error,omitempty"`
}

type TextVerdict struct {
	Verdict        string         `json:"verdict"`
	Explanation    string         `json:"explanation"`
	PrimarySources []string       `json:"primary_sources"`
	Confidence     int            `json:"confidence"`
	Outcome        Outcome        `json:"outcome"`
	Classification Classification `json:"classification"`
	Retrieval      Retrieval      `json:"retrieval"`
	TranslatedText string         `json:"translated_text,omitempty"`
	CheckedAt      time.Time      `json:"checked_at"`
}

// ImageVerdict is the terminal write for an image verification record.
type ImageVerdict struct {
	Status      string         `json:"status"`
	Confidence  int            `json:"confidence"`
	Explanation string         `json:"explanation"`
	Details     map[string]any `json:"details"`
	Model       string         `json:"model"`
	Outcome     Outcome        `json:"outcome"`
}

// ClampConfidence keeps confidence inside [0,100].
func ClampConfidence(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
