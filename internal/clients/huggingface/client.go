package huggingface

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/yungbote/checkia-backend/internal/platform/httpx"
	"github.com/yungbote/checkia-backend/internal/platform/logger"
	"github.com/yungbote/checkia-backend/internal/verification"
)

const (
	DefaultBaseURL = "https://api-inference.huggingface.co/models"
	DefaultModel   = "hamzab/roberta-fake-news-classification"
)

type Config struct {
	Token   string
	BaseURL string
	Model   string
	Retry   httpx.RetryPolicy
}

// Client calls a hosted text classification model. It implements
// verification.Classifier.
type Client struct {
	log     *logger.Logger
	hc      *http.Client
	cfg     Config
	limiter *rate.Limiter
}

func New(log *logger.Logger, cfg Config, hc *http.Client) (*Client, error) {
	if strings.TrimSpace(cfg.Token) == "" {
		return nil, fmt.Errorf("missing HUGGINGFACE_API_TOKEN")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Retry.MaxAttempts == 0 {
		// the hosted model answers 503 while it warms up
		cfg.Retry = httpx.RetryPolicy{MaxAttempts: 4, BaseBackoff: 2 * time.Second, MaxBackoff: 10 * time.Second}
	}
	if hc == nil {
		hc = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		log:     log.With("client", "huggingface", "model", cfg.Model),
		hc:      hc,
		cfg:     cfg,
		limiter: rate.NewLimiter(rate.Limit(5), 5),
	}, nil
}

type labelScore struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// FrameInput wraps the claim the way the classifier was fine tuned.
func FrameInput(text string) string {
	return "<title> Title <content> " + strings.TrimSpace(text) + " <end>"
}

func (c *Client) Classify(ctx context.Context, text string) (verification.Label, float64, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", 0, err
	}
	payload, err := json.Marshal(map[string]any{
		"inputs":  FrameInput(text),
		"options": map[string]any{"wait_for_model": true},
	})
	if err != nil {
		return "", 0, err
	}
	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/" + c.cfg.Model
	body, err := httpx.Do(ctx, c.hc, "huggingface", c.cfg.Retry, func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+c.cfg.Token)
		req.Header.Set("Content-Type", "application/json")
		return req, nil
	})
	if err != nil {
		return "", 0, err
	}
	scores, err := decodeScores(body)
	if err != nil {
		return "", 0, err
	}
	best := scores[0]
	for _, s := range scores[1:] {
		if s.Score > best.Score {
			best = s
		}
	}
	return MapLabel(best.Label), best.Score, nil
}

// decodeScores accepts both [[{label,score}]] and [{label,score}].
func decodeScores(body []byte) ([]labelScore, error) {
	var nested [][]labelScore
	if err := json.Unmarshal(body, &nested); err == nil && len(nested) > 0 && len(nested[0]) > 0 {
		return nested[0], nil
	}
	var flat []labelScore
	if err := json.Unmarshal(body, &flat); err == nil && len(flat) > 0 {
		return flat, nil
	}
	var apiErr struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Error != "" {
		return nil, fmt.Errorf("huggingface: %s", apiErr.Error)
	}
	return nil, fmt.Errorf("huggingface: unexpected response")
}

func MapLabel(label string) verification.Label {
	switch strings.ToUpper(strings.TrimSpace(label)) {
	case "TRUE", "REAL", "LABEL_1":
		return verification.LabelSupports
	default:
		return verification.LabelRefutes
	}
}
