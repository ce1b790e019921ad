package verification

import (
	"context"
	"errors"
	"sync"
	"time"
)

type chatFunc func(ctx context.Context, req ChatRequest) (string, error)

func (f chatFunc) Chat(ctx context.Context, req ChatRequest) (string, error) { return f(ctx, req) }

func replyWith(raw string) chatFunc {
	return func(context.Context, ChatRequest) (string, error) { return raw, nil }
}

func failWith(msg string) chatFunc {
	return func(context.Context, ChatRequest) (string, error) { return "", errors.New(msg) }
}

type fakeClassifier struct {
	label Label
	conf  float64
	err   error

	mu   sync.Mutex
	seen []string
}

func (f *fakeClassifier) Classify(_ context.Context, text string) (Label, float64, error) {
	f.mu.Lock()
	f.seen = append(f.seen, text)
	f.mu.Unlock()
	return f.label, f.conf, f.err
}

type fakeRetriever struct {
	res *SearchResult
	err error

	mu   sync.Mutex
	seen []string
}

func (f *fakeRetriever) Search(_ context.Context, claim string, _ time.Time) (*SearchResult, error) {
	f.mu.Lock()
	f.seen = append(f.seen, claim)
	f.mu.Unlock()
	return f.res, f.err
}

type fakeTranslator struct {
	out string
	err error
}

func (f fakeTranslator) Translate(context.Context, string, string, string) (string, error) {
	return f.out, f.err
}

type fakeScorer struct {
	score float64
	err   error
}

func (f fakeScorer) AIScore(context.Context, string) (float64, error) { return f.score, f.err }

type recordingObserver struct {
	mu     sync.Mutex
	stages map[string]Outcome
}

func (o *recordingObserver) ObserveStage(path, stage string, outcome Outcome, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.stages == nil {
		o.stages = map[string]Outcome{}
	}
	o.stages[path+"/"+stage] = outcome
}
