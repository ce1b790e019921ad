package translate

import (
	"context"
	"fmt"
	"html"
	"strings"
	"time"

	translatev2 "google.golang.org/api/translate/v2"

	"github.com/yungbote/checkia-backend/internal/platform/cache"
	"github.com/yungbote/checkia-backend/internal/platform/gcp"
	"github.com/yungbote/checkia-backend/internal/platform/logger"
)

// Backend performs one uncached translation call.
type Backend interface {
	Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error)
}

type googleBackend struct {
	svc *translatev2.Service
}

func (g *googleBackend) Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
	call := g.svc.Translations.List([]string{text}, targetLang).Format("text").Context(ctx)
	if sourceLang != "" {
		call = call.Source(sourceLang)
	}
	resp, err := call.Do()
	if err != nil {
		return "", fmt.Errorf("google translate: %w", err)
	}
	if len(resp.Translations) == 0 {
		return "", fmt.Errorf("google translate: empty response")
	}
	return html.UnescapeString(resp.Translations[0].TranslatedText), nil
}

// Service is the cached translator. It implements verification.Translator.
type Service struct {
	log     *logger.Logger
	backend Backend
	cache   *cache.MemoryCache
}

func NewGoogle(ctx context.Context, log *logger.Logger, c *cache.MemoryCache) (*Service, error) {
	svc, err := translatev2.NewService(ctx, gcp.TranslateOptionsFromEnv()...)
	if err != nil {
		return nil, fmt.Errorf("translate service: %w", err)
	}
	return New(log, &googleBackend{svc: svc}, c), nil
}

func New(log *logger.Logger, backend Backend, c *cache.MemoryCache) *Service {
	if c == nil {
		c = cache.NewMemoryCache(6*time.Hour, 30*time.Minute)
	}
	return &Service{log: log.With("client", "translate"), backend: backend, cache: c}
}

func cacheKey(text, sourceLang, targetLang string) string {
	return "tr:" + sourceLang + ":" + targetLang + ":" + text
}

func (s *Service) Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" || strings.EqualFold(sourceLang, targetLang) {
		return text, nil
	}
	key := cacheKey(text, sourceLang, targetLang)
	if out, ok := s.cache.GetString(key); ok {
		return out, nil
	}
	out, err := s.backend.Translate(ctx, text, sourceLang, targetLang)
	if err != nil {
		return "", err
	}
	out = strings.TrimSpace(out)
	s.cache.SetString(key, out, 0)
	return out, nil
}
