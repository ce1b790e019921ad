package app

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	types "github.com/yungbote/checkia-backend/internal/domain"
	"github.com/yungbote/checkia-backend/internal/jobs/pipeline/ai_detect"
	"github.com/yungbote/checkia-backend/internal/jobs/pipeline/analyze_text"
	"github.com/yungbote/checkia-backend/internal/jobs/pipeline/image_content"
	"github.com/yungbote/checkia-backend/internal/jobs/pipeline/imageinput"
	jobrt "github.com/yungbote/checkia-backend/internal/jobs/runtime"
	"github.com/yungbote/checkia-backend/internal/jobs/worker"
	"github.com/yungbote/checkia-backend/internal/observability"
	"github.com/yungbote/checkia-backend/internal/platform/logger"
	"github.com/yungbote/checkia-backend/internal/temporalx/temporalworker"
)

// JobTransport runs claimed jobs until its context is done.
type JobTransport interface {
	Start(ctx context.Context) error
	Wait()
}

func wireRegistry(db *gorm.DB, log *logger.Logger, repos Repos, clients Clients, svc Services, metrics *observability.Metrics) (*jobrt.Registry, error) {
	input := imageinput.New(log, svc.Images, clients.Evidence)
	reg := jobrt.NewRegistry()
	for _, h := range []jobrt.Handler{
		analyze_text.New(db, log, repos.Submission, svc.Analyzer, svc.Verdicts, metrics),
		image_content.New(db, log, repos.ImageVerification, input, svc.Analyzer, svc.Verdicts, metrics),
		ai_detect.New(db, log, repos.ImageVerification, input, svc.Analyzer, svc.Verdicts, metrics),
	} {
		if err := reg.Register(h); err != nil {
			return nil, fmt.Errorf("register job handler: %w", err)
		}
	}
	if err := reg.Require(types.JobTypes...); err != nil {
		return nil, err
	}
	log.Info("job handlers registered", "job_types", reg.Types())
	return reg, nil
}

func wireExecutor(db *gorm.DB, log *logger.Logger, cfg Config, repos Repos, reg *jobrt.Registry, svc Services, metrics *observability.Metrics) *jobrt.Executor {
	return &jobrt.Executor{
		DB:          db,
		Log:         log,
		Repo:        repos.JobRun,
		Registry:    reg,
		Notify:      svc.Notifier,
		MaxAttempts: cfg.WorkerMaxAttempts,
		Report:      observability.CaptureError,
		Observer:    metrics,
	}
}

// wireTransport picks Temporal when a client is configured and the DB-poll
// worker otherwise. Never both: each would claim the same job_run rows.
func wireTransport(log *logger.Logger, cfg Config, clients Clients, exec *jobrt.Executor) (JobTransport, error) {
	if clients.Temporal != nil {
		r, err := temporalworker.NewRunner(log, clients.Temporal, cfg.Temporal, exec, cfg.WorkerConcurrency)
		if err != nil {
			return nil, fmt.Errorf("init temporal worker: %w", err)
		}
		return &temporalTransport{runner: r}, nil
	}
	return &pollTransport{w: worker.NewWorker(log, exec, worker.Config{
		Concurrency: cfg.WorkerConcurrency,
		MaxAttempts: cfg.WorkerMaxAttempts,
	})}, nil
}

type pollTransport struct {
	w *worker.Worker
}

func (p *pollTransport) Start(ctx context.Context) error {
	p.w.Start(ctx)
	return nil
}

func (p *pollTransport) Wait() { p.w.Wait() }

type temporalTransport struct {
	runner *temporalworker.Runner
	done   chan struct{}
}

func (t *temporalTransport) Start(ctx context.Context) error {
	if err := t.runner.Start(ctx); err != nil {
		return err
	}
	t.done = make(chan struct{})
	go func() {
		<-ctx.Done()
		close(t.done)
	}()
	return nil
}

func (t *temporalTransport) Wait() {
	if t.done != nil {
		<-t.done
	}
}
