package gcp

import (
	"os"
	"strings"

	"google.golang.org/api/option"
)

// Credentials selects how the storage, vision and translate clients
// authenticate. Empty means application default credentials.
type Credentials struct {
	JSON         string
	File         string
	QuotaProject string
	// TranslateAPIKey lets Translate v2 run on an API key while the other
	// clients keep a service account.
	TranslateAPIKey string
}

// ResolveCredentials reads GOOGLE_APPLICATION_CREDENTIALS_JSON (inline) or
// GOOGLE_APPLICATION_CREDENTIALS (a path, or inline JSON starting with "{"),
// GOOGLE_CLOUD_QUOTA_PROJECT and GOOGLE_TRANSLATE_API_KEY.
func ResolveCredentials(getenv func(string) string) Credentials {
	c := Credentials{
		QuotaProject:    strings.TrimSpace(getenv("GOOGLE_CLOUD_QUOTA_PROJECT")),
		TranslateAPIKey: strings.TrimSpace(getenv("GOOGLE_TRANSLATE_API_KEY")),
	}
	raw := strings.TrimSpace(getenv("GOOGLE_APPLICATION_CREDENTIALS_JSON"))
	if raw == "" {
		raw = strings.TrimSpace(getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}
	if strings.HasPrefix(raw, "{") {
		c.JSON = raw
	} else {
		c.File = raw
	}
	return c
}

func (c Credentials) ClientOptions() []option.ClientOption {
	var opts []option.ClientOption
	switch {
	case c.JSON != "":
		opts = append(opts, option.WithCredentialsJSON([]byte(c.JSON)))
	case c.File != "":
		opts = append(opts, option.WithCredentialsFile(c.File))
	}
	if c.QuotaProject != "" {
		opts = append(opts, option.WithQuotaProject(c.QuotaProject))
	}
	return opts
}

// TranslateOptions prefers the translate API key over the shared credentials.
func (c Credentials) TranslateOptions() []option.ClientOption {
	if c.TranslateAPIKey != "" {
		return []option.ClientOption{option.WithAPIKey(c.TranslateAPIKey)}
	}
	return c.ClientOptions()
}

func ClientOptionsFromEnv() []option.ClientOption {
	return ResolveCredentials(os.Getenv).ClientOptions()
}

func TranslateOptionsFromEnv() []option.ClientOption {
	return ResolveCredentials(os.Getenv).TranslateOptions()
}
