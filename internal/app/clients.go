package app

import (
	"context"
	"net/http"
	"time"

	temporalsdkclient "go.temporal.io/sdk/client"

	"github.com/yungbote/checkia-backend/internal/clients/huggingface"
	"github.com/yungbote/checkia-backend/internal/clients/openrouter"
	"github.com/yungbote/checkia-backend/internal/clients/perplexity"
	"github.com/yungbote/checkia-backend/internal/clients/sightengine"
	"github.com/yungbote/checkia-backend/internal/clients/translate"
	"github.com/yungbote/checkia-backend/internal/platform/cache"
	"github.com/yungbote/checkia-backend/internal/platform/gcp"
	"github.com/yungbote/checkia-backend/internal/platform/logger"
	"github.com/yungbote/checkia-backend/internal/services"
	"github.com/yungbote/checkia-backend/internal/temporalx"
	"github.com/yungbote/checkia-backend/internal/verification"
)

// Clients holds the external adapters. A nil field means the capability is
// unavailable; the analyzer folds that into the verdict outcome.
type Clients struct {
	Translator verification.Translator
	Classifier verification.Classifier
	Retriever  verification.SourceRetriever
	Forensic   verification.ForensicScorer
	LLM        verification.ChatModel
	Bucket     gcp.BucketService
	Evidence   gcp.VisionEvidenceService
	EventBus   services.EventBus
	Temporal   temporalsdkclient.Client
}

func wireClients(ctx context.Context, log *logger.Logger, cfg Config) (Clients, error) {
	log.Info("Wiring clients...")
	var out Clients
	hc := &http.Client{Timeout: 60 * time.Second}

	// LLM
	if c, err := openrouter.New(log, openrouter.Config{
		APIKey:  cfg.OpenRouterAPIKey,
		BaseURL: cfg.OpenRouterBaseURL,
		SiteURL: cfg.OpenRouterSiteURL,
		AppName: cfg.OpenRouterAppName,
		Timeout: cfg.StageTimeout,
	}); err != nil {
		log.Warn("LLM unavailable", "error", err)
	} else {
		out.LLM = c
	}

	// Retrieval
	if c, err := perplexity.New(log, perplexity.Config{
		APIKey:      cfg.PerplexityAPIKey,
		Model:       cfg.PerplexityModel,
		RatePerSec:  cfg.PerplexityRate,
		HTTPTimeout: cfg.StageTimeout,
	}, hc); err != nil {
		log.Warn("source retriever unavailable", "error", err)
	} else {
		out.Retriever = c
	}

	// Classifier
	if c, err := huggingface.New(log, huggingface.Config{
		Token: cfg.HuggingFaceToken,
		Model: cfg.ClassifierModel,
	}, hc); err != nil {
		log.Warn("classifier unavailable", "error", err)
	} else {
		out.Classifier = c
	}

	// Forensic scorer
	if c, err := sightengine.New(log, sightengine.Config{
		APIUser:   cfg.SightengineUser,
		APISecret: cfg.SightengineSecret,
	}, hc); err != nil {
		log.Warn("forensic scorer unavailable", "error", err)
	} else {
		out.Forensic = c
	}

	// Translation
	if cfg.TranslateEnabled {
		translations := cache.NewMemoryCache(6*time.Hour, 30*time.Minute)
		if t, err := translate.NewGoogle(ctx, log, translations); err != nil {
			log.Warn("translator unavailable", "error", err)
		} else {
			out.Translator = t
		}
	}

	// Gcs
	if cfg.ObjectStorageErr != nil {
		log.Warn("object storage unavailable", "error", cfg.ObjectStorageErr)
	} else if b, err := gcp.NewBucketServiceWithConfig(log, cfg.ObjectStorage); err != nil {
		log.Warn("object storage unavailable", "error", err)
	} else {
		out.Bucket = b
	}

	// Vision evidence
	if cfg.VisionEvidenceEnabled {
		if v, err := gcp.NewVisionEvidenceService(ctx, log); err != nil {
			log.Warn("vision evidence unavailable", "error", err)
		} else {
			out.Evidence = v
		}
	}

	// Redis
	if cfg.RedisAddr != "" {
		bus, err := services.NewRedisEventBus(log, services.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			Channel:  cfg.RedisChannel,
		})
		if err != nil {
			log.Warn("job event bus unavailable", "error", err)
		} else {
			out.EventBus = bus
		}
	}

	// Temporal
	tc, err := temporalx.NewClient(log, cfg.Temporal)
	if err != nil {
		out.Close()
		return Clients{}, err
	}
	out.Temporal = tc

	return out, nil
}

func (c Clients) Close() {
	if c.Temporal != nil {
		c.Temporal.Close()
	}
	if c.EventBus != nil {
		_ = c.EventBus.Close()
	}
	if c.Evidence != nil {
		_ = c.Evidence.Close()
	}
	if c.Bucket != nil {
		_ = c.Bucket.Close()
	}
}
