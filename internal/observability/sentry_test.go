package observability

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/getsentry/sentry-go"
)

type recordingTransport struct {
	mu     sync.Mutex
	events []*sentry.Event
}

func (t *recordingTransport) Configure(sentry.ClientOptions) {}

func (t *recordingTransport) SendEvent(event *sentry.Event) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.events = append(t.events, event)
}

func (t *recordingTransport) Flush(time.Duration) bool              { return true }
func (t *recordingTransport) FlushWithContext(context.Context) bool { return true }
func (t *recordingTransport) Close()                                {}

func (t *recordingTransport) Events() []*sentry.Event {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]*sentry.Event(nil), t.events...)
}

func TestInitSentryRequiresDSN(t *testing.T) {
	if InitSentry(nil, SentryConfig{}) {
		t.Fatalf("expected sentry to stay disabled without a DSN")
	}
}

func TestCaptureErrorTagsEvent(t *testing.T) {
	tr := &recordingTransport{}
	if !InitSentry(nil, SentryConfig{Environment: "test", Transport: tr}) {
		t.Fatalf("expected sentry init with a transport")
	}
	t.Cleanup(func() { sentry.CurrentHub().BindClient(nil) })

	CaptureError(errors.New("vision timeout"), map[string]string{"job_type": "detect_ai_image", "stage": "panic"})
	FlushSentry(time.Second)

	events := tr.Events()
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	if events[0].Tags["job_type"] != "detect_ai_image" || events[0].Tags["stage"] != "panic" {
		t.Fatalf("unexpected tags: %v", events[0].Tags)
	}
	if events[0].Environment != "test" {
		t.Fatalf("unexpected environment %q", events[0].Environment)
	}
}
