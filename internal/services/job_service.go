package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.temporal.io/api/enums/v1"
	"go.temporal.io/api/serviceerror"
	temporalsdkclient "go.temporal.io/sdk/client"
	"go.temporal.io/sdk/temporal"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/checkia-backend/internal/data/repos"
	types "github.com/yungbote/checkia-backend/internal/domain"
	"github.com/yungbote/checkia-backend/internal/platform/ctxutil"
	"github.com/yungbote/checkia-backend/internal/platform/dbctx"
	"github.com/yungbote/checkia-backend/internal/platform/logger"
)

const (
	JobWorkflowName  = "job_run"
	DefaultTaskQueue = "checkia"
)

type JobState string

const (
	JobStatePending   JobState = "pending"
	JobStateSucceeded JobState = "succeeded"
	JobStateFailed    JobState = "failed"
)

// JobStatus is the poll view of one job run.
type JobStatus struct {
	JobID      uuid.UUID       `json:"job_id"`
	JobType    string          `json:"job_type"`
	EntityType string          `json:"entity_type"`
	EntityID   *uuid.UUID      `json:"entity_id,omitempty"`
	State      JobState        `json:"state"`
	Stage      string          `json:"stage"`
	Progress   int             `json:"progress"`
	Result     json.RawMessage `json:"result,omitempty"`
	Error      string          `json:"error,omitempty"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

type JobService interface {
	Enqueue(dbc dbctx.Context, ownerUserID uuid.UUID, jobType string, entityType string, entityID *uuid.UUID, payload map[string]any) (*types.JobRun, error)
	Dispatch(dbc dbctx.Context, jobID uuid.UUID) error
	GetByIDForRequestUser(dbc dbctx.Context, jobID uuid.UUID) (*types.JobRun, error)
	Poll(dbc dbctx.Context, jobID uuid.UUID) (*JobStatus, error)
}

type JobServiceConfig struct {
	TaskQueue   string
	MaxAttempts int
}

type jobService struct {
	db     *gorm.DB
	log    *logger.Logger
	repo   repos.JobRunRepo
	notify JobNotifier

	temporal          temporalsdkclient.Client
	temporalTaskQueue string
	maxAttempts       int
}

// NewJobService builds the job transport. A nil Temporal client leaves queued
// jobs to the database polling worker.
func NewJobService(
	db *gorm.DB,
	baseLog *logger.Logger,
	repo repos.JobRunRepo,
	notify JobNotifier,
	tc temporalsdkclient.Client,
	cfg JobServiceConfig,
) JobService {
	tq := strings.TrimSpace(cfg.TaskQueue)
	if tq == "" {
		tq = DefaultTaskQueue
	}
	maxAttempts := cfg.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 5
	}
	return &jobService{
		db:                db,
		log:               baseLog.With("service", "JobService"),
		repo:              repo,
		notify:            notify,
		temporal:          tc,
		temporalTaskQueue: tq,
		maxAttempts:       maxAttempts,
	}
}

func (s *jobService) Enqueue(dbc dbctx.Context, ownerUserID uuid.UUID, jobType string, entityType string, entityID *uuid.UUID, payload map[string]any) (*types.JobRun, error) {
	if ownerUserID == uuid.Nil {
		return nil, fmt.Errorf("missing owner_user_id")
	}
	if jobType == "" {
		return nil, fmt.Errorf("missing job_type")
	}
	if payload == nil {
		payload = map[string]any{}
	}
	if td := ctxutil.GetTraceData(dbc.Ctx); td != nil {
		if td.TraceID != "" {
			if _, ok := payload["trace_id"]; !ok {
				payload["trace_id"] = td.TraceID
			}
		}
		if td.RequestID != "" {
			if _, ok := payload["request_id"]; !ok {
				payload["request_id"] = td.RequestID
			}
		}
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode payload: %w", err)
	}

	now := time.Now().UTC()
	job := &types.JobRun{
		ID:          uuid.New(),
		OwnerUserID: ownerUserID,
		JobType:     jobType,
		EntityType:  entityType,
		EntityID:    entityID,
		Status:      types.JobStatusQueued,
		Stage:       types.JobStatusQueued,
		Message:     "Queued",
		Retryable:   true,
		Payload:     datatypes.JSON(b),
		Result:      datatypes.JSON([]byte(`{}`)),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if _, err := s.repo.Create(dbctx.Context{Ctx: dbc.Ctx, Tx: dbc.DB(s.db)}, []*types.JobRun{job}); err != nil {
		return nil, fmt.Errorf("create job: %w", err)
	}
	if s.notify != nil {
		s.notify.JobCreated(ownerUserID, job)
	}

	// Inside a real transaction the caller dispatches after commit.
	if isDBTransaction(dbc.Tx) {
		s.log.Debug("Job enqueued inside transaction; awaiting dispatch after commit", "job_id", job.ID, "job_type", job.JobType)
		return job, nil
	}
	if err := s.Dispatch(dbctx.Context{Ctx: dbc.Ctx}, job.ID); err != nil {
		return job, err
	}
	return job, nil
}

type txCommitter interface {
	Commit() error
	Rollback() error
}

// isDBTransaction checks the connection pool rather than pointer identity
// because gorm clones *gorm.DB on every WithContext/Session.
func isDBTransaction(db *gorm.DB) bool {
	if db == nil || db.Statement == nil || db.Statement.ConnPool == nil {
		return false
	}
	_, ok := db.Statement.ConnPool.(txCommitter)
	return ok
}

func (s *jobService) Dispatch(dbc dbctx.Context, jobID uuid.UUID) error {
	if jobID == uuid.Nil {
		return fmt.Errorf("missing job id")
	}
	if s.temporal == nil {
		s.log.Debug("Temporal disabled; job left for the polling worker", "job_id", jobID)
		return nil
	}
	ctx := ctxutil.Default(dbc.Ctx)

	err := s.startWorkflow(ctx, jobID)
	if err == nil {
		return nil
	}
	var already *serviceerror.WorkflowExecutionAlreadyStarted
	if errors.As(err, &already) {
		return nil
	}

	now := time.Now().UTC()
	// The polling worker never retries a dispatch failure, so it is permanent.
	_ = s.repo.UpdateFields(dbctx.Context{Ctx: ctx}, jobID, map[string]interface{}{
		"status":        types.JobStatusFailed,
		"stage":         "dispatch",
		"message":       "",
		"error":         err.Error(),
		"retryable":     false,
		"last_error_at": now,
		"locked_at":     nil,
		"updated_at":    now,
	})
	if s.notify != nil {
		if rows, rerr := s.repo.GetByIDs(dbctx.Context{Ctx: ctx}, []uuid.UUID{jobID}); rerr == nil && len(rows) > 0 && rows[0] != nil {
			j := rows[0]
			s.notify.JobFailed(j.OwnerUserID, j, "dispatch", err.Error())
		}
	}
	return fmt.Errorf("start temporal workflow: %w", err)
}

func (s *jobService) startWorkflow(ctx context.Context, jobID uuid.UUID) error {
	opts := temporalsdkclient.StartWorkflowOptions{
		ID:                    jobID.String(),
		TaskQueue:             s.temporalTaskQueue,
		WorkflowIDReusePolicy: enums.WORKFLOW_ID_REUSE_POLICY_REJECT_DUPLICATE,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    30 * time.Second,
			BackoffCoefficient: 1.0,
			MaximumInterval:    30 * time.Second,
			MaximumAttempts:    int32(s.maxAttempts),
		},
	}
	_, err := s.temporal.ExecuteWorkflow(ctx, opts, JobWorkflowName)
	return err
}

func (s *jobService) GetByIDForRequestUser(dbc dbctx.Context, jobID uuid.UUID) (*types.JobRun, error) {
	rd := ctxutil.GetRequestData(dbc.Ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, ErrNotAuthenticated
	}
	if jobID == uuid.Nil {
		return nil, ErrNotFound
	}
	rows, err := s.repo.GetByIDs(dbctx.Context{Ctx: dbc.Ctx, Tx: dbc.DB(s.db)}, []uuid.UUID{jobID})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 || rows[0] == nil || rows[0].OwnerUserID != rd.UserID {
		return nil, ErrNotFound
	}
	return rows[0], nil
}

func (s *jobService) Poll(dbc dbctx.Context, jobID uuid.UUID) (*JobStatus, error) {
	job, err := s.GetByIDForRequestUser(dbc, jobID)
	if err != nil {
		return nil, err
	}
	return StatusOf(job, s.maxAttempts), nil
}

// StatusOf collapses a job run onto pending/succeeded/failed. A failed run
// stays pending while a retry is still possible.
func StatusOf(job *types.JobRun, maxAttempts int) *JobStatus {
	st := &JobStatus{
		JobID:      job.ID,
		JobType:    job.JobType,
		EntityType: job.EntityType,
		EntityID:   job.EntityID,
		State:      JobStatePending,
		Stage:      job.Stage,
		Progress:   job.Progress,
		UpdatedAt:  job.UpdatedAt,
	}
	switch job.Status {
	case types.JobStatusSucceeded:
		st.State = JobStateSucceeded
		if len(job.Result) > 0 && string(job.Result) != "null" {
			st.Result = json.RawMessage(job.Result)
		}
	case types.JobStatusCanceled:
		st.State = JobStateFailed
		st.Error = "canceled"
	case types.JobStatusFailed:
		if !job.Retryable || job.Attempts >= maxAttempts {
			st.State = JobStateFailed
			st.Error = job.Error
		}
	}
	return st
}
