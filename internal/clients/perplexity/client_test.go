package perplexity

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/checkia-backend/internal/platform/httpx"
	"github.com/yungbote/checkia-backend/internal/platform/logger"
)

const endpoint = "https://api.perplexity.ai/chat/completions"

func newTestClient(t *testing.T) (*Client, *httpmock.MockTransport) {
	t.Helper()
	mt := httpmock.NewMockTransport()
	c, err := New(logger.Nop(), Config{
		APIKey:     "pk",
		RatePerSec: 100,
		Retry:      httpx.RetryPolicy{MaxAttempts: 2, BaseBackoff: time.Millisecond, MaxBackoff: time.Millisecond},
	}, &http.Client{Transport: mt})
	require.NoError(t, err)
	return c, mt
}

func TestSearchParsesResults(t *testing.T) {
	c, mt := newTestClient(t)
	mt.RegisterResponder(http.MethodPost, endpoint, func(r *http.Request) (*http.Response, error) {
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "sonar-pro", body["model"])
		assert.Equal(t, "month", body["search_recency_filter"])
		assert.Equal(t, "Bearer pk", r.Header.Get("Authorization"))
		return httpmock.NewJsonResponse(http.StatusOK, map[string]any{
			"choices": []any{map[string]any{"message": map[string]any{
				"role":    "assistant",
				"content": "<think>reasoning</think>Le <b>PSG</b> a gagné 2-0.",
			}}},
			"search_results": []any{
				map[string]any{"title": "Match", "url": "https://a", "date": "2026-10-15", "snippet": "<p>Victoire 2-0</p>"},
				map[string]any{"title": "Dup", "url": "https://a", "snippet": "x"},
				map[string]any{"title": "Other", "url": "https://b"},
			},
		})
	})

	res, err := c.Search(context.Background(), "Le PSG a gagné", time.Now())
	require.NoError(t, err)
	require.Len(t, res.Sources, 2)
	assert.Equal(t, "Victoire 2-0", res.Sources[0].Snippet)
	assert.Equal(t, "2026-10-15", res.Sources[0].Date)
	assert.Equal(t, "https://b", res.Sources[1].Link)
	assert.NotContains(t, res.Summary, "reasoning")
	assert.NotContains(t, res.Summary, "<b>")
	assert.Contains(t, res.Summary, "Le PSG a gagné 2-0.")
	assert.Contains(t, res.Summary, "Match (2026-10-15) : Victoire 2-0")
}

func TestSearchFallsBackToCitations(t *testing.T) {
	c, mt := newTestClient(t)
	mt.RegisterResponder(http.MethodPost, endpoint, httpmock.NewStringResponder(http.StatusOK,
		`{"choices":[{"message":{"role":"assistant","content":"ok"}}],"citations":["https://1","https://2","https://1","https://3","https://4","https://5","https://6"]}`))

	res, err := c.Search(context.Background(), "x", time.Now())
	require.NoError(t, err)
	assert.Len(t, res.Sources, 5)
	assert.Equal(t, "ok", res.Summary)
}

func TestSearchTransportError(t *testing.T) {
	c, mt := newTestClient(t)
	mt.RegisterResponder(http.MethodPost, endpoint, httpmock.NewStringResponder(http.StatusBadGateway, "bad gateway"))

	_, err := c.Search(context.Background(), "x", time.Now())
	require.Error(t, err)
	var se *httpx.StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusBadGateway, se.Status)
	assert.Equal(t, 2, mt.GetTotalCallCount())
}
