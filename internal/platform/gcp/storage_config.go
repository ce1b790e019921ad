package gcp

import (
	"fmt"
	"net/url"
	"os"
	"strings"
)

type ObjectStorageMode string

const (
	ObjectStorageModeGCS         ObjectStorageMode = "gcs"
	ObjectStorageModeGCSEmulator ObjectStorageMode = "gcs_emulator"
)

// ObjectStorageConfig describes where uploaded images live.
type ObjectStorageConfig struct {
	Mode                  ObjectStorageMode
	EmulatorHost          string
	CompatibilityFallback bool

	ImageBucket    string
	ImageCDNDomain string
	PublicBaseURL  string
}

func (cfg ObjectStorageConfig) IsEmulatorMode() bool {
	return cfg.Mode == ObjectStorageModeGCSEmulator
}

func (cfg ObjectStorageConfig) ModeSource() string {
	if cfg.CompatibilityFallback {
		return "compatibility_fallback"
	}
	return "explicit_or_default"
}

type ObjectStorageConfigErrorCode string

const (
	ObjectStorageConfigErrorInvalidMode         ObjectStorageConfigErrorCode = "invalid_mode"
	ObjectStorageConfigErrorMissingEmulatorHost ObjectStorageConfigErrorCode = "missing_emulator_host"
	ObjectStorageConfigErrorInvalidURL          ObjectStorageConfigErrorCode = "invalid_url"
	ObjectStorageConfigErrorMissingBucket       ObjectStorageConfigErrorCode = "missing_bucket"
)

type ObjectStorageConfigError struct {
	Code  ObjectStorageConfigErrorCode
	Field string
	Value string
	Cause error
}

func (e *ObjectStorageConfigError) Error() string {
	if e == nil {
		return "invalid object storage config"
	}
	switch e.Code {
	case ObjectStorageConfigErrorInvalidMode:
		return fmt.Sprintf("invalid OBJECT_STORAGE_MODE=%q (allowed: %q, %q)", e.Value, ObjectStorageModeGCS, ObjectStorageModeGCSEmulator)
	case ObjectStorageConfigErrorMissingEmulatorHost:
		return fmt.Sprintf("OBJECT_STORAGE_MODE=%q requires STORAGE_EMULATOR_HOST to be set", ObjectStorageModeGCSEmulator)
	case ObjectStorageConfigErrorInvalidURL:
		return fmt.Sprintf("invalid %s=%q; expected absolute URL like http://fake-gcs:4443", e.Field, e.Value)
	case ObjectStorageConfigErrorMissingBucket:
		return "missing env var IMAGE_GCS_BUCKET_NAME"
	default:
		return "invalid object storage config"
	}
}

func (e *ObjectStorageConfigError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// ResolveObjectStorageConfigFromEnv reads OBJECT_STORAGE_MODE, STORAGE_EMULATOR_HOST,
// IMAGE_GCS_BUCKET_NAME, IMAGE_CDN_DOMAIN and OBJECT_STORAGE_PUBLIC_BASE_URL.
// An unset mode with an emulator host selects the emulator.
func ResolveObjectStorageConfigFromEnv() (ObjectStorageConfig, error) {
	return ResolveObjectStorageConfig(os.Getenv)
}

// ResolveObjectStorageConfig is ResolveObjectStorageConfigFromEnv over an
// arbitrary key lookup.
func ResolveObjectStorageConfig(getenv func(string) string) (ObjectStorageConfig, error) {
	cfg := ObjectStorageConfig{
		EmulatorHost:   strings.TrimRight(strings.TrimSpace(getenv("STORAGE_EMULATOR_HOST")), "/"),
		ImageBucket:    strings.TrimSpace(getenv("IMAGE_GCS_BUCKET_NAME")),
		ImageCDNDomain: strings.TrimSpace(getenv("IMAGE_CDN_DOMAIN")),
		PublicBaseURL:  strings.TrimRight(strings.TrimSpace(getenv("OBJECT_STORAGE_PUBLIC_BASE_URL")), "/"),
	}

	rawMode := strings.TrimSpace(getenv("OBJECT_STORAGE_MODE"))
	switch mode := ObjectStorageMode(strings.ToLower(rawMode)); mode {
	case "":
		if cfg.EmulatorHost != "" {
			cfg.Mode = ObjectStorageModeGCSEmulator
			cfg.CompatibilityFallback = true
		} else {
			cfg.Mode = ObjectStorageModeGCS
		}
	case ObjectStorageModeGCS, ObjectStorageModeGCSEmulator:
		cfg.Mode = mode
	default:
		return cfg, &ObjectStorageConfigError{Code: ObjectStorageConfigErrorInvalidMode, Value: rawMode}
	}

	if cfg.IsEmulatorMode() && cfg.PublicBaseURL == "" {
		cfg.PublicBaseURL = cfg.EmulatorHost
	}
	return cfg, ValidateObjectStorageConfig(cfg)
}

func ValidateObjectStorageConfig(cfg ObjectStorageConfig) error {
	switch cfg.Mode {
	case ObjectStorageModeGCS, ObjectStorageModeGCSEmulator:
	default:
		return &ObjectStorageConfigError{Code: ObjectStorageConfigErrorInvalidMode, Value: string(cfg.Mode)}
	}
	if cfg.ImageBucket == "" {
		return &ObjectStorageConfigError{Code: ObjectStorageConfigErrorMissingBucket}
	}
	if cfg.IsEmulatorMode() {
		if cfg.EmulatorHost == "" {
			return &ObjectStorageConfigError{Code: ObjectStorageConfigErrorMissingEmulatorHost}
		}
		if err := validateAbsoluteURL(cfg.EmulatorHost); err != nil {
			return &ObjectStorageConfigError{Code: ObjectStorageConfigErrorInvalidURL, Field: "STORAGE_EMULATOR_HOST", Value: cfg.EmulatorHost, Cause: err}
		}
	}
	if cfg.PublicBaseURL != "" {
		if err := validateAbsoluteURL(cfg.PublicBaseURL); err != nil {
			return &ObjectStorageConfigError{Code: ObjectStorageConfigErrorInvalidURL, Field: "OBJECT_STORAGE_PUBLIC_BASE_URL", Value: cfg.PublicBaseURL, Cause: err}
		}
	}
	return nil
}

func validateAbsoluteURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if strings.TrimSpace(u.Scheme) == "" || strings.TrimSpace(u.Host) == "" {
		return fmt.Errorf("not an absolute url")
	}
	return nil
}
