package huggingface

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
	"github.com/yungbote/checkia-backend/internal/verification"
)

const endpoint = "https://api-inference.huggingface.co/models/" + DefaultModel

func newTestClient(t *testing.T) (*Client, *httpmock.MockTransport) {
	t.Helper()
	mt := httpmock.NewMockTransport()
	c, err := New(logger.Nop(), Config{
		Token: "hf",
		Retry: httpx.RetryPolicy{MaxAttempts: 2, BaseBackoff: time.Millisecond, MaxBackoff: time.Millisecond},
	}, &http.Client{Transport: mt})
	require.NoError(t, err)
	return c, mt
}

func TestClassifyNestedResponse(t *testing.T) {
	c, mt := newTestClient(t)
	mt.RegisterResponder(http.MethodPost, endpoint, func(r *http.Request) (*http.Response, error) {
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "<title> Title <content> Paris is in France <end>", body["inputs"])
		assert.Equal(t, "Bearer hf", r.Header.Get("Authorization"))
		return httpmock.NewStringResponse(http.StatusOK, `[[{"label":"FAKE","score":0.12},{"label":"TRUE","score":0.88}]]`), nil
	})

	label, conf, err := c.Classify(context.Background(), "  Paris is in France ")
	require.NoError(t, err)
	assert.Equal(t, verification.LabelSupports, label)
	assert.InDelta(t, 0.88, conf, 1e-9)
}

func TestClassifyFlatResponse(t *testing.T) {
	c, mt := newTestClient(t)
	mt.RegisterResponder(http.MethodPost, endpoint,
		httpmock.NewStringResponder(http.StatusOK, `[{"label":"LABEL_0","score":0.7},{"label":"LABEL_1","score":0.3}]`))

	label, conf, err := c.Classify(context.Background(), "x")
	require.NoError(t, err)
	assert.Equal(t, verification.LabelRefutes, label)
	assert.InDelta(t, 0.7, conf, 1e-9)
}

func TestClassifyRetriesWarmup(t *testing.T) {
	c, mt := newTestClient(t)
	mt.RegisterResponder(http.MethodPost, endpoint,
		httpmock.NewStringResponder(http.StatusServiceUnavailable, `{"error":"Model is currently loading"}`))

	_, _, err := c.Classify(context.Background(), "x")
	require.Error(t, err)
	assert.Equal(t, 2, mt.GetTotalCallCount())
}

func TestClassifyErrorBody(t *testing.T) {
	c, mt := newTestClient(t)
	mt.RegisterResponder(http.MethodPost, endpoint, httpmock.NewStringResponder(http.StatusOK, `{"error":"bad input"}`))
	_, _, err := c.Classify(context.Background(), "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad input")
}

func TestMapLabel(t *testing.T) {
	for _, l := range []string{"TRUE", "real", "LABEL_1"} {
		assert.Equal(t, verification.LabelSupports, MapLabel(l), l)
	}
	for _, l := range []string{"FAKE", "LABEL_0", ""} {
		assert.Equal(t, verification.LabelRefutes, MapLabel(l), l)
	}
}
