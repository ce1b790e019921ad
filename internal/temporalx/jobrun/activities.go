package jobrun

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	types "github.com/yungbote/checkia-backend/internal/domain"
	jobrt "github.com/yungbote/checkia-backend/internal/jobs/runtime"
	"github.com/yungbote/checkia-backend/internal/platform/dbctx"
)

type Activities struct {
	Exec *jobrt.Executor
}

// Tick runs one attempt of the job unless it is already settled. Settled jobs
// are reported back without touching the handler so a replayed workflow never
// redoes finished work.
func (a *Activities) Tick(ctx context.Context, jobID string) (TickResult, error) {
	res := TickResult{JobID: strings.TrimSpace(jobID)}
	if a == nil || a.Exec == nil || a.Exec.DB == nil || a.Exec.Repo == nil || a.Exec.Registry == nil {
		return res, fmt.Errorf("jobrun: activity not configured")
	}

	parsedJobID, err := uuid.Parse(res.JobID)
	if err != nil || parsedJobID == uuid.Nil {
		return res, fmt.Errorf("jobrun: invalid job_id")
	}

	job, err := a.loadJob(ctx, parsedJobID)
	if err != nil {
		return res, err
	}
	if job == nil {
		return res, fmt.Errorf("jobrun: job not found")
	}

	limit := a.Exec.AttemptLimit()
	if Settled(job, limit) {
		return fill(res, job, limit), nil
	}

	now := time.Now().UTC()
	marked, err := a.Exec.Repo.UpdateFieldsUnlessStatus(dbctx.Context{Ctx: ctx}, parsedJobID,
		[]string{types.JobStatusCanceled, types.JobStatusSucceeded},
		map[string]interface{}{
			"status":       types.JobStatusRunning,
			"attempts":     job.Attempts + 1,
			"locked_at":    now,
			"heartbeat_at": now,
			"updated_at":   now,
		})
	if err != nil {
		return res, err
	}
	if !marked {
		// Canceled or finished between the read and the write.
		if latest, lerr := a.loadJob(ctx, parsedJobID); lerr == nil && latest != nil {
			job = latest
		}
		return fill(res, job, limit), nil
	}
	job.Status = types.JobStatusRunning
	job.Attempts++
	job.LockedAt = &now
	job.HeartbeatAt = &now
	job.UpdatedAt = now

	jc := a.Exec.Execute(ctx, job)
	return fill(res, jc.Job, limit), nil
}

// Settled reports whether a job needs no further attempts.
func Settled(job *types.JobRun, maxAttempts int) bool {
	switch job.Status {
	case types.JobStatusSucceeded, types.JobStatusCanceled:
		return true
	case types.JobStatusFailed:
		return jobrt.Exhausted(job, maxAttempts)
	default:
		return false
	}
}

func fill(res TickResult, job *types.JobRun, maxAttempts int) TickResult {
	res.JobType = job.JobType
	res.EntityType = job.EntityType
	if job.EntityID != nil {
		res.EntityID = job.EntityID.String()
	}
	res.Status = job.Status
	res.Stage = job.Stage
	res.Attempts = job.Attempts
	res.Message = job.Message
	res.Retryable = job.Status == types.JobStatusFailed && !jobrt.Exhausted(job, maxAttempts)
	return res
}

func (a *Activities) loadJob(ctx context.Context, jobID uuid.UUID) (*types.JobRun, error) {
	rows, err := a.Exec.Repo.GetByIDs(dbctx.Context{Ctx: ctx}, []uuid.UUID{jobID})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 || rows[0] == nil {
		return nil, nil
	}
	return rows[0], nil
}
