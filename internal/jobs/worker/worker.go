package worker

import (
	"context"
	"sync"
	"time"

	"github.com/yungbote/checkia-backend/internal/jobs/runtime"
	"github.com/yungbote/checkia-backend/internal/platform/dbctx"
	"github.com/yungbote/checkia-backend/internal/platform/logger"
)

type Config struct {
	Concurrency  int
	MaxAttempts  int
	RetryDelay   time.Duration
	StaleRunning time.Duration
	PollInterval time.Duration
}

func (c Config) withDefaults() Config {
	if c.Concurrency < 1 {
		c.Concurrency = 4
	}
	if c.MaxAttempts < 1 {
		c.MaxAttempts = 5
	}
	if c.RetryDelay <= 0 {
		c.RetryDelay = 30 * time.Second
	}
	if c.StaleRunning <= 0 {
		c.StaleRunning = 30 * time.Minute
	}
	if c.PollInterval <= 0 {
		c.PollInterval = time.Second
	}
	return c
}

// Worker polls job_run for runnable jobs. It is the job transport when
// Temporal is not configured.
type Worker struct {
	log  *logger.Logger
	exec *runtime.Executor
	cfg  Config
	wg   sync.WaitGroup
}

func NewWorker(baseLog *logger.Logger, exec *runtime.Executor, cfg Config) *Worker {
	cfg = cfg.withDefaults()
	if exec.MaxAttempts < 1 {
		exec.MaxAttempts = cfg.MaxAttempts
	}
	return &Worker{
		log:  baseLog.With("component", "JobWorker"),
		exec: exec,
		cfg:  cfg,
	}
}

func (w *Worker) Start(ctx context.Context) {
	w.log.Info("Starting job worker pool", "concurrency", w.cfg.Concurrency, "max_attempts", w.cfg.MaxAttempts)
	for i := 0; i < w.cfg.Concurrency; i++ {
		workerID := i + 1
		w.wg.Add(1)
		go func() {
			defer w.wg.Done()
			w.runLoop(ctx, workerID)
		}()
	}
}

// Wait blocks until every loop has observed cancellation.
func (w *Worker) Wait() { w.wg.Wait() }

func (w *Worker) runLoop(ctx context.Context, workerID int) {
	ticker := time.NewTicker(w.cfg.PollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			w.log.Info("Worker loop stopped", "worker_id", workerID)
			return
		case <-ticker.C:
			// Drain everything runnable before waiting for the next tick.
			for ctx.Err() == nil {
				ran, err := w.ProcessNext(ctx)
				if err != nil {
					w.log.Warn("ClaimNextRunnable failed", "worker_id", workerID, "error", err)
					break
				}
				if !ran {
					break
				}
			}
		}
	}
}

// ProcessNext claims and runs at most one job. It reports whether a job ran.
func (w *Worker) ProcessNext(ctx context.Context) (bool, error) {
	job, err := w.exec.Repo.ClaimNextRunnable(dbctx.Context{Ctx: ctx}, w.cfg.MaxAttempts, w.cfg.RetryDelay, w.cfg.StaleRunning)
	if err != nil {
		return false, err
	}
	if job == nil {
		return false, nil
	}
	jc := w.exec.Execute(ctx, job)
	w.log.Debug("Job finished", "job_id", job.ID, "job_type", job.JobType, "status", jc.Job.Status, "attempt", job.Attempts)
	return true, nil
}
