package runtime

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"

	"github.com/yungbote/checkia-backend/internal/data/repos"
	types "github.com/yungbote/checkia-backend/internal/domain"
	"github.com/yungbote/checkia-backend/internal/observability"
	"github.com/yungbote/checkia-backend/internal/platform/dbctx"
	"github.com/yungbote/checkia-backend/internal/platform/logger"
	"github.com/yungbote/checkia-backend/internal/services"
)

// Finalizer is implemented by handlers that own a record which must never be
// left in progress. Abandon runs once the job cannot be retried anymore.
type Finalizer interface {
	Abandon(jc *Context, cause error) error
}

// JobObserver records the status each attempt ended in.
type JobObserver interface {
	ObserveJob(jobType, status string, d time.Duration)
}

// ErrorReporter forwards unexpected failures (panics, abandoned jobs) to an
// error tracker.
type ErrorReporter func(err error, tags map[string]string)

// Executor runs one claimed job through its handler. The polling worker and
// the Temporal activity share it so both transports apply the same recovery
// and finalization rules.
type Executor struct {
	DB          *gorm.DB
	Log         *logger.Logger
	Repo        repos.JobRunRepo
	Registry    *Registry
	Notify      services.JobNotifier
	MaxAttempts int
	Report      ErrorReporter
	Observer    JobObserver

	HeartbeatEvery time.Duration
	// OnHeartbeat runs on every heartbeat tick in addition to the DB heartbeat.
	OnHeartbeat func(ctx context.Context)
}

type MissingHandlerError struct{ JobType string }

func (e *MissingHandlerError) Error() string {
	return "no handler registered for job_type=" + e.JobType
}

type PanicError struct{ Val any }

func (e *PanicError) Error() string { return fmt.Sprintf("panic: %v", e.Val) }

// AttemptLimit is MaxAttempts with the default applied.
func (e *Executor) AttemptLimit() int {
	if e.MaxAttempts < 1 {
		return 5
	}
	return e.MaxAttempts
}

// Exhausted reports whether a failed job will not be picked up again.
func Exhausted(job *types.JobRun, maxAttempts int) bool {
	if job == nil {
		return true
	}
	return !job.Retryable || job.Attempts >= maxAttempts
}

// Execute runs job, which the caller has already marked running. It returns
// the job context so callers can read the final in-memory state.
func (e *Executor) Execute(ctx context.Context, job *types.JobRun) *Context {
	start := time.Now()
	ctx, span := observability.StartSpan(ctx, "job."+job.JobType,
		attribute.String("job.id", job.ID.String()),
		attribute.Int("job.attempt", job.Attempts),
	)
	defer span.End()

	jc := NewContext(ctx, e.DB, job, e.Repo, e.Notify)
	defer func() {
		span.SetAttributes(attribute.String("job.status", jc.Job.Status))
		if e.Observer != nil {
			e.Observer.ObserveJob(job.JobType, jc.Job.Status, time.Since(start))
		}
	}()
	log := e.Log.With("job_id", job.ID, "job_type", job.JobType, "attempt", job.Attempts)

	h, ok := e.Registry.Get(job.JobType)
	if !ok {
		err := &MissingHandlerError{JobType: job.JobType}
		log.Warn("No handler registered for job_type")
		jc.FailPermanent("dispatch", err)
		e.report(err, job, "dispatch")
		return jc
	}

	stop := e.startHeartbeat(jc)
	runErr := e.invoke(h, jc, log)
	stop()

	status := jc.Job.Status
	switch {
	case runErr != nil && status != types.JobStatusFailed:
		// Most handlers call jc.Fail themselves; this is a safety net.
		jc.Fail("run", runErr)
	case runErr == nil && status == types.JobStatusRunning:
		log.Warn("Handler returned without a terminal status; marking succeeded", "stage", jc.Job.Stage)
		jc.Succeed("done", nil)
	}

	if jc.Job.Status == types.JobStatusFailed && Exhausted(jc.Job, e.AttemptLimit()) {
		e.finalize(h, jc, runErr, log)
	}
	return jc
}

func (e *Executor) invoke(h Handler, jc *Context, log *logger.Logger) (err error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error("Job handler panic", "panic", r)
			err = &PanicError{Val: r}
			e.report(err, jc.Job, "panic")
			jc.FailPermanent("panic", err)
		}
	}()
	return h.Run(jc)
}

func (e *Executor) finalize(h Handler, jc *Context, cause error, log *logger.Logger) {
	if cause == nil {
		cause = errors.New(strings.TrimSpace(jc.Job.Error))
		if cause.Error() == "" {
			cause = errors.New("job failed")
		}
	}
	if f, ok := h.(Finalizer); ok {
		if err := f.Abandon(jc, cause); err != nil {
			log.Error("Abandon failed", "error", err)
			e.report(err, jc.Job, "abandon")
		}
	}
	if jc.Job.Retryable {
		jc.FailPermanent(jc.Job.Stage, cause)
	}
	log.Warn("Job abandoned", "stage", jc.Job.Stage, "error", cause)
}

func (e *Executor) report(err error, job *types.JobRun, stage string) {
	if e.Report == nil || err == nil {
		return
	}
	tags := map[string]string{"stage": stage}
	if job != nil {
		tags["job_id"] = job.ID.String()
		tags["job_type"] = job.JobType
	}
	e.Report(err, tags)
}

func (e *Executor) startHeartbeat(jc *Context) func() {
	every := e.HeartbeatEvery
	if every <= 0 {
		every = 30 * time.Second
	}
	done := make(chan struct{})
	go func() {
		t := time.NewTicker(every)
		defer t.Stop()
		for {
			select {
			case <-done:
				return
			case <-jc.ctx().Done():
				return
			case <-t.C:
				if e.OnHeartbeat != nil {
					e.OnHeartbeat(jc.ctx())
				}
				if jc.canWrite() {
					_ = e.Repo.Heartbeat(dbctx.Context{Ctx: jc.ctx()}, jc.Job.ID)
				}
			}
		}
	}()
	return func() { close(done) }
}
