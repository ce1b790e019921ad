package verification

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	types "github.com/yungbote/checkia-backend/internal/domain"
)

var sampleRetrieval = Retrieval{
	Sources: []Source{
		{Title: "A", Link: "https://a.example"},
		{Title: "B", Link: "https://b.example"},
		{Title: "C", Link: "https://c.example"},
		{Title: "D", Link: "https://d.example"},
	},
	Summary: "Le PSG a gagné 2-0.",
	Outcome: OutcomeOK,
}

func TestTextAdjudicationParsesJSON(t *testing.T) {
	var req ChatRequest
	model := chatFunc(func(_ context.Context, r ChatRequest) (string, error) {
		req = r
		return "```json\n{\"verdict\":\"TRUE\",\"confidence\":88,\"explanation\":\"Score confirmé.\",\"primary_sources\":[\"https://b.example\",\"https://b.example\",\"https://a.example\"]}\n```", nil
	})
	now := time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)
	out := NewTextAdjudicator(model, "", 0).Adjudicate(context.Background(), TextInput{
		Claim:          "Le PSG a gagné hier",
		Classification: Classification{Label: LabelRefutes, Confidence: 0.9, Outcome: OutcomeOK},
		Retrieval:      sampleRetrieval,
		Now:            now,
	})

	assert.Equal(t, types.VerdictTrue, out.Verdict)
	assert.Equal(t, 88, out.Confidence)
	assert.Equal(t, "Score confirmé.", out.Explanation)
	assert.Equal(t, []string{"https://b.example", "https://a.example"}, out.PrimarySources)
	assert.Equal(t, OutcomeOK, out.Outcome)

	assert.Equal(t, DefaultTextModel, req.Model)
	assert.InDelta(t, 0.1, req.Temperature, 1e-6)
	assert.Equal(t, 700, req.MaxTokens)
	assert.Nil(t, req.Schema)
	assert.Contains(t, req.Prompt, "16/10/2026")
	assert.Contains(t, req.Prompt, "refutes")
	assert.Contains(t, req.Prompt, "https://d.example")
}

func TestTextAdjudicationKeywordFallback(t *testing.T) {
	out := NewTextAdjudicator(replyWith("Cette affirmation est FAUSSE selon les sources."), "", 0).
		Adjudicate(context.Background(), TextInput{Claim: "x", Retrieval: sampleRetrieval})

	assert.Equal(t, types.VerdictFalse, out.Verdict)
	assert.Equal(t, OutcomeParseFailed, out.Outcome)
	assert.Equal(t, "Cette affirmation est FAUSSE selon les sources.", out.Explanation)
	assert.Equal(t, []string{"https://a.example", "https://b.example", "https://c.example"}, out.PrimarySources)
	assert.Equal(t, 50, out.Confidence)
}

func TestTextAdjudicationUnknownVerdictFallsBackToScan(t *testing.T) {
	out := NewTextAdjudicator(replyWith(`{"verdict":"MAYBE","explanation":"c'est vrai"}`), "", 0).
		Adjudicate(context.Background(), TextInput{Claim: "x"})
	assert.Equal(t, types.VerdictTrue, out.Verdict)
	assert.Equal(t, []string{}, out.PrimarySources)
}

func TestTextAdjudicationCallFailureUsesClassifier(t *testing.T) {
	in := TextInput{
		Claim:          "x",
		Classification: Classification{Label: LabelSupports, Confidence: 0.734, Outcome: OutcomeOK},
		Retrieval:      sampleRetrieval,
	}
	out := NewTextAdjudicator(failWith("429"), "", 0).Adjudicate(context.Background(), in)
	assert.Equal(t, types.VerdictTrue, out.Verdict)
	assert.Equal(t, 73, out.Confidence)
	assert.Equal(t, OutcomeDegraded, out.Outcome)
	assert.Contains(t, out.Explanation, "mode dégradé")

	in.Classification.Label = LabelRefutes
	out = NewTextAdjudicator(nil, "", 0).Adjudicate(context.Background(), in)
	assert.Equal(t, types.VerdictFalse, out.Verdict)
}

func TestScanVerdict(t *testing.T) {
	cases := []struct {
		raw  string
		want string
	}{
		{"The claim is TRUE.", types.VerdictTrue},
		{"affirmation vérifiée", types.VerdictTrue},
		{"Information ERRONÉE", types.VerdictFalse},
		{"false and also confirmed", types.VerdictTrue},
		{"Untrue? no token here", types.VerdictUndetermined},
		{"", types.VerdictUndetermined},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, ScanVerdict(tc.raw), tc.raw)
	}
}

func TestTextConfidenceBounded(t *testing.T) {
	replies := []string{
		`{"verdict":"TRUE","confidence":-4,"explanation":"a","primary_sources":[]}`,
		`{"verdict":"FALSE","confidence":1e9,"explanation":"a","primary_sources":[]}`,
		"plain text",
	}
	for _, raw := range replies {
		out := NewTextAdjudicator(replyWith(raw), "", 0).Adjudicate(context.Background(), TextInput{Claim: "x"})
		require.GreaterOrEqual(t, out.Confidence, 0)
		require.LessOrEqual(t, out.Confidence, 100)
	}
	out := classifierFallback(TextVerdict{Classification: Classification{Confidence: 7}}, errors.New("x"))
	require.LessOrEqual(t, out.Confidence, 100)
}
