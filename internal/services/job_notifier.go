package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	types "github.com/yungbote/checkia-backend/internal/domain"
	"github.com/yungbote/checkia-backend/internal/platform/logger"
)

type JobNotifier interface {
	JobCreated(userID uuid.UUID, job *types.JobRun)
	JobProgress(userID uuid.UUID, job *types.JobRun, stage string, progress int, message string)
	JobFailed(userID uuid.UUID, job *types.JobRun, stage string, errorMessage string)
	JobDone(userID uuid.UUID, job *types.JobRun)
}

// jobNotifier publishes job transitions on the event bus. Without a bus it
// only logs them.
type jobNotifier struct {
	log *logger.Logger
	bus EventBus
}

func NewJobNotifier(baseLog *logger.Logger, bus EventBus) JobNotifier {
	return &jobNotifier{log: baseLog.With("service", "JobNotifier"), bus: bus}
}

func (n *jobNotifier) publish(userID uuid.UUID, job *types.JobRun, ev JobEvent) {
	ev.UserID = userID.String()
	ev.Timestamp = time.Now().UTC()
	if job != nil {
		ev.JobID = job.ID.String()
		ev.JobType = job.JobType
		if job.EntityID != nil {
			ev.EntityID = job.EntityID.String()
		}
	}
	n.log.Debug("job event", "event", ev.Event, "job_id", ev.JobID, "stage", ev.Stage)
	if n.bus == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := n.bus.Publish(ctx, ev); err != nil {
		n.log.Warn("job event publish failed", "event", ev.Event, "job_id", ev.JobID, "error", err)
	}
}

func (n *jobNotifier) JobCreated(userID uuid.UUID, job *types.JobRun) {
	n.publish(userID, job, JobEvent{Event: EventJobCreated, Stage: job.Stage})
}

func (n *jobNotifier) JobProgress(userID uuid.UUID, job *types.JobRun, stage string, progress int, message string) {
	n.publish(userID, job, JobEvent{Event: EventJobProgress, Stage: stage, Progress: progress, Message: message})
}

func (n *jobNotifier) JobFailed(userID uuid.UUID, job *types.JobRun, stage string, errorMessage string) {
	n.publish(userID, job, JobEvent{Event: EventJobFailed, Stage: stage, Error: errorMessage})
}

func (n *jobNotifier) JobDone(userID uuid.UUID, job *types.JobRun) {
	n.publish(userID, job, JobEvent{Event: EventJobDone, Stage: job.Stage, Progress: 100})
}
