package perplexity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/time/rate"

	"github.com/yungbote/checkia-backend/internal/platform/httpx"
	"github.com/yungbote/checkia-backend/internal/platform/logger"
	"github.com/yungbote/checkia-backend/internal/verification"
)

const (
	DefaultBaseURL = "https://api.perplexity.ai"
	DefaultModel   = "sonar-pro"

	maxSources     = 5
	recencyFilter  = "month"
	snippetMaxRune = 500
)

var thinkBlock = regexp.MustCompile(`(?s)<think>.*?</think>`)

type Config struct {
	APIKey      string
	BaseURL     string
	Model       string
	RatePerSec  float64
	Burst       int
	HTTPTimeout time.Duration
	Retry       httpx.RetryPolicy
}

// Client is the web source retriever backed by Perplexity's search grounded
// chat completions.
type Client struct {
	log       *logger.Logger
	hc        *http.Client
	cfg       Config
	limiter   *rate.Limiter
	sanitizer *bluemonday.Policy
}

func New(log *logger.Logger, cfg Config, hc *http.Client) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("missing PERPLEXITY_API_KEY")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.RatePerSec <= 0 {
		cfg.RatePerSec = 2
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 4
	}
	if cfg.Retry.MaxAttempts == 0 {
		cfg.Retry = httpx.DefaultRetryPolicy()
	}
	if hc == nil {
		timeout := cfg.HTTPTimeout
		if timeout <= 0 {
			timeout = 60 * time.Second
		}
		hc = &http.Client{Timeout: timeout}
	}
	return &Client{
		log:       log.With("client", "perplexity"),
		hc:        hc,
		cfg:       cfg,
		limiter:   rate.NewLimiter(rate.Limit(cfg.RatePerSec), cfg.Burst),
		sanitizer: bluemonday.StrictPolicy(),
	}, nil
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type request struct {
	Model               string    `json:"model"`
	Messages            []message `json:"messages"`
	SearchRecencyFilter string    `json:"search_recency_filter,omitempty"`
	Temperature         float64   `json:"temperature"`
}

type searchResult struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Date    string `json:"date"`
	Snippet string `json:"snippet"`
}

type response struct {
	Choices []struct {
		Message message `json:"message"`
	} `json:"choices"`
	SearchResults []searchResult `json:"search_results"`
	Citations     []string       `json:"citations"`
}

func searchPrompts(claim string, now time.Time) (string, string) {
	today := now.Format("02/01/2006")
	system := fmt.Sprintf(`You are a fact-checking research assistant. Today is %s.
Search the web for the most recent and reliable information about the user's claim.
Prefer official sources, established media and primary documents. Prefer the most recent events when several match.
Summarise in French what the sources say about the claim, with precise facts (dates, figures, names, results).`, today)
	user := fmt.Sprintf("Claim to research: %s", claim)
	return system, user
}

// Search implements verification.SourceRetriever.
func (c *Client) Search(ctx context.Context, claim string, now time.Time) (*verification.SearchResult, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("perplexity: rate limit wait: %w", err)
	}
	system, user := searchPrompts(claim, now)
	payload, err := json.Marshal(request{
		Model:               c.cfg.Model,
		Messages:            []message{{Role: "system", Content: system}, {Role: "user", Content: user}},
		SearchRecencyFilter: recencyFilter,
		Temperature:         0.2,
	})
	if err != nil {
		return nil, err
	}

	start := time.Now()
	body, err := httpx.Do(ctx, c.hc, "perplexity", c.cfg.Retry, func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, strings.TrimRight(c.cfg.BaseURL, "/")+"/chat/completions", bytes.NewReader(payload))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
		req.Header.Set("Content-Type", "application/json")
		return req, nil
	})
	if err != nil {
		return nil, err
	}

	var resp response
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("perplexity: decode: %w", err)
	}
	out := c.toResult(resp)
	c.log.Debug("search done", "sources", len(out.Sources), "duration_ms", time.Since(start).Milliseconds())
	return out, nil
}

func (c *Client) clean(s string) string {
	s = thinkBlock.ReplaceAllString(s, "")
	s = c.sanitizer.Sanitize(s)
	s = strings.ReplaceAll(s, "&#39;", "'")
	s = strings.ReplaceAll(s, "&amp;", "&")
	s = strings.ReplaceAll(s, "&#34;", "\"")
	return strings.TrimSpace(s)
}

func (c *Client) toResult(resp response) *verification.SearchResult {
	summary := ""
	if len(resp.Choices) > 0 {
		summary = c.clean(resp.Choices[0].Message.Content)
	}

	sources := make([]verification.Source, 0, maxSources)
	for _, r := range resp.SearchResults {
		snippet := c.clean(r.Snippet)
		if n := []rune(snippet); len(n) > snippetMaxRune {
			snippet = string(n[:snippetMaxRune]) + "…"
		}
		sources = append(sources, verification.Source{
			Title:   c.clean(r.Title),
			Link:    strings.TrimSpace(r.URL),
			Snippet: snippet,
			Date:    strings.TrimSpace(r.Date),
		})
	}
	if len(sources) == 0 {
		for _, u := range resp.Citations {
			sources = append(sources, verification.Source{Title: u, Link: strings.TrimSpace(u)})
		}
	}
	sources = verification.DedupeSources(sources, maxSources)

	return &verification.SearchResult{Sources: sources, Summary: enrichSummary(summary, sources)}
}

// enrichSummary appends each source snippet so the adjudicator sees the raw
// evidence next to the synthesized answer.
func enrichSummary(summary string, sources []verification.Source) string {
	var b strings.Builder
	b.WriteString(summary)
	wrote := false
	for _, s := range sources {
		if s.Snippet == "" {
			continue
		}
		if !wrote {
			b.WriteString("\n\nExtraits des sources :")
			wrote = true
		}
		fmt.Fprintf(&b, "\n- %s", s.Title)
		if s.Date != "" {
			fmt.Fprintf(&b, " (%s)", s.Date)
		}
		fmt.Fprintf(&b, " : %s", s.Snippet)
	}
	return strings.TrimSpace(b.String())
}
