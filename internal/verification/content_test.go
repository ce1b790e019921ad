package verification

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	types "github.com/yungbote/checkia-backend/internal/domain"
)

func TestContentWithoutClaimIsAlwaysAnalyzed(t *testing.T) {
	replies := []string{
		`{"verdict":"TRUE","confidence":80,"explanation":"Une tour.","key_elements":["tour"]}`,
		`{"verdict":"FALSE","confidence":20,"explanation":"x","key_elements":[]}`,
		`{"verdict":"ANALYZED","confidence":70,"explanation":"Une rue.","key_elements":[]}`,
		"pas du json",
	}
	for _, raw := range replies {
		out := NewVisionAnalyzer(replyWith(raw), "", 0).VerifyContent(context.Background(), "u", "   ", time.Now())
		assert.Equal(t, types.ImageStatusAnalyzed, out.Status, raw)
		assert.True(t, types.ValidImageStatus(types.ImageKindContent, out.Status))
	}
}

func TestContentWithClaim(t *testing.T) {
	var req ChatRequest
	model := chatFunc(func(_ context.Context, r ChatRequest) (string, error) {
		req = r
		return "```json\n{\"verdict\":\"FALSE\",\"confidence\":140,\"explanation\":\"La photo date de 2019.\",\"key_elements\":[\"neige\"]}\n```", nil
	})
	now := time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC)
	out := NewVisionAnalyzer(model, "", 0).VerifyContent(context.Background(), "data:image/png;base64,AA", "Paris sous la neige", now)

	assert.Equal(t, types.ImageStatusFalse, out.Status)
	assert.Equal(t, 100, out.Confidence)
	assert.Equal(t, "La photo date de 2019.", out.Explanation)
	assert.Equal(t, []string{"neige"}, out.Details["key_elements"])
	assert.Equal(t, "Paris sous la neige", out.Details["claim"])

	assert.Contains(t, req.Prompt, "Paris sous la neige")
	assert.Contains(t, req.Prompt, "04/03/2026")
	assert.InDelta(t, 0.3, req.Temperature, 1e-6)
	assert.Equal(t, 1500, req.MaxTokens)
	require.NotNil(t, req.Schema)
	assert.Equal(t, "image_content_verification", req.Schema.Name)
}

func TestContentParseFailureWithClaim(t *testing.T) {
	out := NewVisionAnalyzer(replyWith("Impossible de conclure."), "", 0).VerifyContent(context.Background(), "u", "claim", time.Now())
	assert.Equal(t, types.ImageStatusUndetermined, out.Status)
	assert.Equal(t, 50, out.Confidence)
	assert.Equal(t, "Impossible de conclure.", out.Explanation)
}

func TestContentCallFailure(t *testing.T) {
	out := NewVisionAnalyzer(failWith("boom"), "", 0).VerifyContent(context.Background(), "u", "claim", time.Now())
	assert.Equal(t, types.ImageStatusError, out.Status)
	assert.Equal(t, 0, out.Confidence)
	assert.Equal(t, OutcomeFailed, out.Outcome)

	out = NewVisionAnalyzer(nil, "", 0).VerifyContent(context.Background(), "u", "", time.Now())
	assert.Equal(t, types.ImageStatusError, out.Status)
}
