package app

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("SUPABASE_JWT_SECRET", "s3cret")
	t.Setenv("IMAGE_GCS_BUCKET_NAME", "")

	v, err := NewViper("")
	if err != nil {
		t.Fatalf("NewViper: %v", err)
	}
	cfg, err := LoadConfig(v)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.TextModel != "openai/gpt-4o-mini" || cfg.VisionModel != "openai/gpt-4.1-mini" {
		t.Fatalf("models: %q %q", cfg.TextModel, cfg.VisionModel)
	}
	if cfg.PerplexityModel != "sonar-pro" {
		t.Fatalf("perplexity model: %q", cfg.PerplexityModel)
	}
	if cfg.StageTimeout != 60*time.Second {
		t.Fatalf("stage timeout: %v", cfg.StageTimeout)
	}
	if cfg.Temporal.Enabled() {
		t.Fatalf("temporal should be disabled without an address")
	}
	if cfg.ObjectStorageErr == nil {
		t.Fatalf("expected object storage to be unavailable without a bucket")
	}
	if err := cfg.validateAPI(); err != nil {
		t.Fatalf("validateAPI: %v", err)
	}
}

func TestLoadConfigFileAndEnvPrecedence(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "checkia.yaml")
	body := "port: \"9000\"\nstage_timeout_seconds: 15\ncors_allowed_origins: https://a.example, https://b.example\nimage_gcs_bucket_name: images\n"
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("PORT", "9100")

	v, err := NewViper(path)
	if err != nil {
		t.Fatalf("NewViper: %v", err)
	}
	cfg, err := LoadConfig(v)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Port != "9100" {
		t.Fatalf("env should win over file, got port %q", cfg.Port)
	}
	if cfg.StageTimeout != 15*time.Second {
		t.Fatalf("stage timeout from file: %v", cfg.StageTimeout)
	}
	want := []string{"https://a.example", "https://b.example"}
	if !reflect.DeepEqual(cfg.CORSOrigins, want) {
		t.Fatalf("cors origins: %v", cfg.CORSOrigins)
	}
	if cfg.ObjectStorageErr != nil || cfg.ObjectStorage.ImageBucket != "images" {
		t.Fatalf("object storage: %+v err=%v", cfg.ObjectStorage, cfg.ObjectStorageErr)
	}
}

func TestValidate(t *testing.T) {
	cfg := Config{StageTimeout: time.Second}
	if err := cfg.validate(); err == nil {
		t.Fatalf("expected error without postgres settings")
	}
	cfg.Postgres.URL = "postgres://localhost/checkia"
	if err := cfg.validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	if err := cfg.validateAPI(); err == nil {
		t.Fatalf("expected error without jwt secret")
	}
}

func TestNewViperMissingFile(t *testing.T) {
	if _, err := NewViper(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatalf("expected error for missing config file")
	}
}

func TestSplitList(t *testing.T) {
	got := splitList(" a, b\n c ,, ")
	if !reflect.DeepEqual(got, []string{"a", "b", "c"}) {
		t.Fatalf("splitList: %v", got)
	}
	if len(splitList("")) != 0 {
		t.Fatalf("expected empty list")
	}
}
