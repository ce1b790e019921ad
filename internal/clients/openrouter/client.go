package openrouter

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/yungbote/checkia-backend/internal/platform/logger"
	"github.com/yungbote/checkia-backend/internal/verification"
)

const (
	DefaultBaseURL = "https://openrouter.ai/api/v1"
	DefaultSiteURL = "https://check-ia.app"
	DefaultAppName = "Check-IA"
)

var ErrEmptyResponse = errors.New("openrouter: empty response")

type Config struct {
	APIKey  string
	BaseURL string
	SiteURL string
	AppName string
	Timeout time.Duration
}

// Client is an OpenAI compatible chat client pointed at OpenRouter. It
// implements verification.ChatModel.
type Client struct {
	log *logger.Logger
	api *openai.Client
}

type headerTransport struct {
	base    http.RoundTripper
	headers map[string]string
}

func (t headerTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	r = r.Clone(r.Context())
	for k, v := range t.headers {
		if v != "" {
			r.Header.Set(k, v)
		}
	}
	return t.base.RoundTrip(r)
}

func New(log *logger.Logger, cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("missing OPENROUTER_API_KEY")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.SiteURL == "" {
		cfg.SiteURL = DefaultSiteURL
	}
	if cfg.AppName == "" {
		cfg.AppName = DefaultAppName
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 90 * time.Second
	}

	oc := openai.DefaultConfig(cfg.APIKey)
	oc.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	oc.HTTPClient = &http.Client{
		Timeout: cfg.Timeout,
		Transport: headerTransport{
			base: http.DefaultTransport,
			headers: map[string]string{
				"HTTP-Referer": cfg.SiteURL,
				"X-Title":      cfg.AppName,
			},
		},
	}
	return &Client{
		log: log.With("client", "openrouter"),
		api: openai.NewClientWithConfig(oc),
	}, nil
}

func (c *Client) Chat(ctx context.Context, req verification.ChatRequest) (string, error) {
	msgs := make([]openai.ChatCompletionMessage, 0, 2)
	if strings.TrimSpace(req.System) != "" {
		msgs = append(msgs, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: req.System})
	}
	user := openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser}
	if req.ImageURL != "" {
		user.MultiContent = []openai.ChatMessagePart{
			{Type: openai.ChatMessagePartTypeText, Text: req.Prompt},
			{Type: openai.ChatMessagePartTypeImageURL, ImageURL: &openai.ChatMessageImageURL{
				URL:    req.ImageURL,
				Detail: openai.ImageURLDetailHigh,
			}},
		}
	} else {
		user.Content = req.Prompt
	}
	msgs = append(msgs, user)

	creq := openai.ChatCompletionRequest{
		Model:       req.Model,
		Messages:    msgs,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	}
	if req.Schema != nil && req.Schema.Schema != nil {
		creq.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
				Name:   req.Schema.Name,
				Schema: req.Schema.Schema,
				Strict: true,
			},
		}
	}

	start := time.Now()
	resp, err := c.api.CreateChatCompletion(ctx, creq)
	if err != nil {
		c.log.Warn("chat completion failed", "model", req.Model, "duration_ms", time.Since(start).Milliseconds(), "error", err)
		return "", fmt.Errorf("openrouter: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyResponse
	}
	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return "", ErrEmptyResponse
	}
	c.log.Debug("chat completion", "model", req.Model, "duration_ms", time.Since(start).Milliseconds(), "total_tokens", resp.Usage.TotalTokens)
	return content, nil
}
