package jobrun

import (
	"fmt"
	"strings"
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	types "github.com/yungbote/checkia-backend/internal/domain"
)

const (
	pollInterval         = 2 * time.Second
	retryInterval        = 30 * time.Second
	continueTickLimit    = 2000
	continueHistoryLimit = 15000
)

// Workflow drives a job_run row to a settled state. The workflow ID is the job ID.
func Workflow(ctx workflow.Context) error {
	jobID := strings.TrimSpace(workflow.GetInfo(ctx).WorkflowExecution.ID)
	if jobID == "" {
		return fmt.Errorf("jobrun: missing job_id")
	}

	ctx = workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Minute,
		HeartbeatTimeout:    30 * time.Second,
		// Transport errors only; handler failures are retried by the loop below.
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    time.Second,
			BackoffCoefficient: 2,
			MaximumInterval:    time.Minute,
			MaximumAttempts:    5,
		},
	})

	for tick := 1; ; tick++ {
		var out TickResult
		if err := workflow.ExecuteActivity(ctx, ActivityTick, jobID).Get(ctx, &out); err != nil {
			return err
		}

		if Outcome(out) {
			workflow.GetLogger(ctx).Info("job settled",
				"job_type", out.JobType,
				"entity_type", out.EntityType,
				"entity_id", out.EntityID,
				"status", out.Status,
				"attempts", out.Attempts,
			)
			return nil
		}

		wait := pollInterval
		if out.Status == types.JobStatusFailed {
			wait = retryInterval
		}
		if err := workflow.Sleep(ctx, wait); err != nil {
			return err
		}
		if shouldContinueAsNew(ctx, tick) {
			return workflow.NewContinueAsNewError(ctx, Workflow)
		}
	}
}

// Outcome reports whether the workflow is finished. A failed job that cannot
// be retried ends the workflow cleanly: its failure already lives on the
// job_run row and the record it owns.
func Outcome(out TickResult) (done bool) {
	switch out.Status {
	case types.JobStatusSucceeded, types.JobStatusCanceled:
		return true
	case types.JobStatusFailed:
		return !out.Retryable
	default:
		return false
	}
}

func shouldContinueAsNew(ctx workflow.Context, ticks int) bool {
	if ticks >= continueTickLimit {
		return true
	}
	info := workflow.GetInfo(ctx)
	if info == nil {
		return false
	}
	return info.GetCurrentHistoryLength() >= continueHistoryLimit
}
