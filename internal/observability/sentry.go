package observability

import (
	"strings"
	"time"

	"github.com/getsentry/sentry-go"

	"github.com/yungbote/checkia-backend/internal/platform/logger"
)

type SentryConfig struct {
	DSN         string
	Environment string
	Release     string
	// Transport overrides the HTTP transport; tests pass a recording one.
	Transport sentry.Transport
}

// InitSentry configures the global Sentry hub. It reports false and does
// nothing when no DSN or transport is configured.
func InitSentry(log *logger.Logger, cfg SentryConfig) bool {
	dsn := strings.TrimSpace(cfg.DSN)
	if dsn == "" && cfg.Transport == nil {
		return false
	}
	env := strings.TrimSpace(cfg.Environment)
	if env == "" {
		env = "production"
	}
	err := sentry.Init(sentry.ClientOptions{
		Dsn:              dsn,
		Environment:      env,
		Release:          cfg.Release,
		SampleRate:       1.0,
		AttachStacktrace: true,
		Transport:        cfg.Transport,
		BeforeSend: func(event *sentry.Event, hint *sentry.EventHint) *sentry.Event {
			// Claims and user identities stay out of the error tracker.
			event.User = sentry.User{ID: event.User.ID}
			event.Request = nil
			event.ServerName = ""
			return event
		},
	})
	if err != nil {
		if log != nil {
			log.Warn("sentry init failed (continuing)", "error", err)
		}
		return false
	}
	if log != nil {
		log.Info("sentry initialized", "environment", env)
	}
	return true
}

// CaptureError reports err with tags. It is a no-op before InitSentry.
func CaptureError(err error, tags map[string]string) {
	if err == nil {
		return
	}
	hub := sentry.CurrentHub()
	if hub == nil || hub.Client() == nil {
		return
	}
	hub.WithScope(func(scope *sentry.Scope) {
		for k, v := range tags {
			scope.SetTag(k, v)
		}
		hub.CaptureException(err)
	})
}

func FlushSentry(timeout time.Duration) {
	if sentry.CurrentHub().Client() == nil {
		return
	}
	sentry.Flush(timeout)
}
