package sightengine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/yungbote/checkia-backend/internal/platform/httpx"
	"github.com/yungbote/checkia-backend/internal/platform/logger"
)

const DefaultBaseURL = "https://api.sightengine.com/1.0"

var ErrNotConfigured = errors.New("sightengine: credentials not configured")

type Config struct {
	APIUser   string
	APISecret string
	BaseURL   string
	Retry     httpx.RetryPolicy
}

// Client scores images with the genai model. It implements
// verification.ForensicScorer.
type Client struct {
	log *logger.Logger
	hc  *http.Client
	cfg Config
}

func New(log *logger.Logger, cfg Config, hc *http.Client) (*Client, error) {
	if strings.TrimSpace(cfg.APIUser) == "" || strings.TrimSpace(cfg.APISecret) == "" {
		return nil, ErrNotConfigured
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Retry.MaxAttempts == 0 {
		cfg.Retry = httpx.RetryPolicy{MaxAttempts: 2, BaseBackoff: time.Second, MaxBackoff: 3 * time.Second}
	}
	if hc == nil {
		hc = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{log: log.With("client", "sightengine"), hc: hc, cfg: cfg}, nil
}

type checkResponse struct {
	Status string `json:"status"`
	Type   struct {
		AIGenerated *float64 `json:"ai_generated"`
	} `json:"type"`
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

func (c *Client) AIScore(ctx context.Context, imageURL string) (float64, error) {
	q := url.Values{}
	q.Set("url", imageURL)
	q.Set("models", "genai")
	q.Set("api_user", c.cfg.APIUser)
	q.Set("api_secret", c.cfg.APISecret)
	base := strings.TrimRight(c.cfg.BaseURL, "/") + "/check.json"
	endpoint := base + "?" + q.Encode()

	body, err := httpx.Do(ctx, c.hc, "sightengine", c.cfg.Retry, func(ctx context.Context) (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	})
	if err != nil {
		return 0, stripQuery(err, base)
	}
	var resp checkResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return 0, fmt.Errorf("sightengine: decode: %w", err)
	}
	if resp.Status != "success" {
		msg := resp.Error.Message
		if msg == "" {
			msg = "status " + resp.Status
		}
		return 0, fmt.Errorf("sightengine: %s", msg)
	}
	if resp.Type.AIGenerated == nil {
		return 0, errors.New("sightengine: missing ai_generated score")
	}
	c.log.Debug("genai score", "score", *resp.Type.AIGenerated)
	return *resp.Type.AIGenerated, nil
}

// stripQuery rewrites transport errors so the credential-bearing query string
// never reaches logs or stored job errors.
func stripQuery(err error, base string) error {
	var ue *url.Error
	if !errors.As(err, &ue) {
		return err
	}
	return fmt.Errorf("sightengine: %s %q: %w", ue.Op, base, ue.Err)
}
