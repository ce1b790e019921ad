package app

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	dbpkg "github.com/yungbote/checkia-backend/internal/data/db"
	"github.com/yungbote/checkia-backend/internal/platform/gcp"
	"github.com/yungbote/checkia-backend/internal/temporalx"
)

type Config struct {
	LogMode     string
	Port        string
	Environment string
	Version     string

	Postgres dbpkg.PostgresConfig

	JWTSecret   string
	JWTAudience string
	CORSOrigins []string

	OpenRouterAPIKey  string
	OpenRouterBaseURL string
	OpenRouterSiteURL string
	OpenRouterAppName string
	TextModel         string
	VisionModel       string

	PerplexityAPIKey  string
	PerplexityModel   string
	PerplexityRate    float64
	HuggingFaceToken  string
	ClassifierModel   string
	SightengineUser   string
	SightengineSecret string

	TranslateEnabled      bool
	VisionEvidenceEnabled bool
	ObjectStorage         gcp.ObjectStorageConfig
	// ObjectStorageErr leaves image uploads unavailable instead of failing startup.
	ObjectStorageErr error

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisChannel  string

	Temporal temporalx.Config

	WorkerConcurrency int
	WorkerMaxAttempts int
	StageTimeout      time.Duration

	SentryDSN         string
	SentryEnvironment string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log_mode", "development")
	v.SetDefault("port", "8080")
	v.SetDefault("environment", "development")

	v.SetDefault("postgres_host", "localhost")
	v.SetDefault("postgres_port", "5432")
	v.SetDefault("postgres_user", "postgres")
	v.SetDefault("postgres_name", "checkia")

	v.SetDefault("supabase_jwt_audience", "authenticated")

	v.SetDefault("openrouter_base_url", "https://openrouter.ai/api/v1")
	v.SetDefault("openrouter_app_name", "checkia")
	v.SetDefault("text_model", "openai/gpt-4o-mini")
	v.SetDefault("vision_model", "openai/gpt-4.1-mini")
	v.SetDefault("perplexity_model", "sonar-pro")
	v.SetDefault("perplexity_rate_per_sec", 2.0)
	v.SetDefault("classifier_model", "hamzab/roberta-fake-news-classification")

	v.SetDefault("google_translate_enabled", true)
	v.SetDefault("vision_evidence_enabled", false)

	v.SetDefault("redis_channel", "checkia.jobs")

	v.SetDefault("temporal_namespace", temporalx.DefaultNamespace)
	v.SetDefault("temporal_task_queue", temporalx.DefaultNamespace)
	v.SetDefault("temporal_namespace_retention_days", 7)
	v.SetDefault("temporal_dial_timeout_seconds", 5)
	v.SetDefault("temporal_dial_max_wait_seconds", 60)

	v.SetDefault("worker_concurrency", 4)
	v.SetDefault("worker_max_attempts", 5)
	v.SetDefault("stage_timeout_seconds", 60)
}

// NewViper reads configuration from the environment and, when configFile is
// set, from that file. Keys are the lower-cased environment names.
func NewViper(configFile string) (*viper.Viper, error) {
	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()
	if strings.TrimSpace(configFile) != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", configFile, err)
		}
	}
	return v, nil
}

func LoadConfig(v *viper.Viper) (Config, error) {
	str := func(key string) string { return strings.TrimSpace(v.GetString(key)) }

	storage, storageErr := gcp.ResolveObjectStorageConfig(func(key string) string {
		return v.GetString(strings.ToLower(key))
	})

	cfg := Config{
		LogMode:     str("log_mode"),
		Port:        str("port"),
		Environment: str("environment"),
		Version:     str("version"),

		Postgres: dbpkg.PostgresConfig{
			URL:      str("database_url"),
			Host:     str("postgres_host"),
			Port:     str("postgres_port"),
			User:     str("postgres_user"),
			Password: v.GetString("postgres_password"),
			Name:     str("postgres_name"),
		},

		JWTSecret:   v.GetString("supabase_jwt_secret"),
		JWTAudience: str("supabase_jwt_audience"),
		CORSOrigins: splitList(v.GetString("cors_allowed_origins")),

		OpenRouterAPIKey:  str("openrouter_api_key"),
		OpenRouterBaseURL: str("openrouter_base_url"),
		OpenRouterSiteURL: str("openrouter_site_url"),
		OpenRouterAppName: str("openrouter_app_name"),
		TextModel:         str("text_model"),
		VisionModel:       str("vision_model"),

		PerplexityAPIKey:  str("perplexity_api_key"),
		PerplexityModel:   str("perplexity_model"),
		PerplexityRate:    v.GetFloat64("perplexity_rate_per_sec"),
		HuggingFaceToken:  str("huggingface_api_token"),
		ClassifierModel:   str("classifier_model"),
		SightengineUser:   str("sightengine_api_user"),
		SightengineSecret: str("sightengine_api_secret"),

		TranslateEnabled:      v.GetBool("google_translate_enabled"),
		VisionEvidenceEnabled: v.GetBool("vision_evidence_enabled"),
		ObjectStorage:         storage,
		ObjectStorageErr:      storageErr,

		RedisAddr:     str("redis_addr"),
		RedisPassword: v.GetString("redis_password"),
		RedisDB:       v.GetInt("redis_db"),
		RedisChannel:  str("redis_channel"),

		Temporal: temporalx.Config{
			Address:               str("temporal_address"),
			Namespace:             str("temporal_namespace"),
			TaskQueue:             str("temporal_task_queue"),
			ClientCertPath:        str("temporal_client_cert_path"),
			ClientKeyPath:         str("temporal_client_key_path"),
			ClientCAPath:          str("temporal_client_ca_path"),
			AutoRegisterNamespace: v.GetBool("temporal_auto_register_namespace"),
			RetentionDays:         v.GetInt("temporal_namespace_retention_days"),
			DialTimeout:           time.Duration(v.GetInt("temporal_dial_timeout_seconds")) * time.Second,
			DialMaxWait:           time.Duration(v.GetInt("temporal_dial_max_wait_seconds")) * time.Second,
		},

		WorkerConcurrency: v.GetInt("worker_concurrency"),
		WorkerMaxAttempts: v.GetInt("worker_max_attempts"),
		StageTimeout:      time.Duration(v.GetInt("stage_timeout_seconds")) * time.Second,

		SentryDSN:         str("sentry_dsn"),
		SentryEnvironment: str("sentry_environment"),
	}
	if cfg.SentryEnvironment == "" {
		cfg.SentryEnvironment = cfg.Environment
	}
	return cfg, cfg.validate()
}

func (c Config) validate() error {
	if c.Postgres.URL == "" && (c.Postgres.Host == "" || c.Postgres.Name == "") {
		return fmt.Errorf("DATABASE_URL or POSTGRES_HOST/POSTGRES_NAME is required")
	}
	if c.StageTimeout <= 0 {
		return fmt.Errorf("STAGE_TIMEOUT_SECONDS must be positive")
	}
	return nil
}

// validateAPI holds the checks only the HTTP server needs.
func (c Config) validateAPI() error {
	if strings.TrimSpace(c.JWTSecret) == "" {
		return fmt.Errorf("SUPABASE_JWT_SECRET is required")
	}
	return nil
}

// splitList accepts comma or whitespace separated values.
func splitList(raw string) []string {
	fields := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\n' || r == '\t'
	})
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}
