package runtime

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/yungbote/checkia-backend/internal/data/repos"
	"github.com/yungbote/checkia-backend/internal/data/repos/testutil"
	types "github.com/yungbote/checkia-backend/internal/domain"
	"github.com/yungbote/checkia-backend/internal/platform/dbctx"
)

type stubHandler struct {
	run       func(jc *Context) error
	abandoned []error
}

func (h *stubHandler) Type() string          { return "stub" }
func (h *stubHandler) Run(jc *Context) error { return h.run(jc) }
func (h *stubHandler) Abandon(jc *Context, cause error) error {
	h.abandoned = append(h.abandoned, cause)
	return nil
}

func newExecutor(t *testing.T, h Handler, maxAttempts int) (*Executor, repos.JobRunRepo) {
	t.Helper()
	db := testutil.DB(t)
	repo := repos.NewJobRunRepo(db, testutil.Logger(t))
	reg := NewRegistry()
	if h != nil {
		if err := reg.Register(h); err != nil {
			t.Fatalf("Register: %v", err)
		}
	}
	return &Executor{
		DB:          db,
		Log:         testutil.Logger(t),
		Repo:        repo,
		Registry:    reg,
		MaxAttempts: maxAttempts,
	}, repo
}

func runningJob(t *testing.T, repo repos.JobRunRepo, jobType string, attempts int) *types.JobRun {
	t.Helper()
	now := time.Now().UTC()
	job := &types.JobRun{
		ID:          uuid.New(),
		OwnerUserID: uuid.New(),
		JobType:     jobType,
		Status:      types.JobStatusRunning,
		Stage:       types.JobStatusRunning,
		Attempts:    attempts,
		Retryable:   true,
		Payload:     datatypes.JSON([]byte(`{}`)),
		Result:      datatypes.JSON([]byte(`{}`)),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if _, err := repo.Create(dbctx.Context{Ctx: context.Background()}, []*types.JobRun{job}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	return job
}

func reload(t *testing.T, repo repos.JobRunRepo, id uuid.UUID) *types.JobRun {
	t.Helper()
	rows, err := repo.GetByIDs(dbctx.Context{Ctx: context.Background()}, []uuid.UUID{id})
	if err != nil || len(rows) != 1 {
		t.Fatalf("GetByIDs: err=%v len=%d", err, len(rows))
	}
	return rows[0]
}

func TestExecuteMissingHandlerIsPermanent(t *testing.T) {
	exec, repo := newExecutor(t, nil, 3)
	job := runningJob(t, repo, "unknown", 1)

	exec.Execute(context.Background(), job)

	got := reload(t, repo, job.ID)
	if got.Status != types.JobStatusFailed || got.Retryable {
		t.Fatalf("expected permanent failure, got status=%s retryable=%v", got.Status, got.Retryable)
	}
}

func TestExecuteRetryableFailureBeforeLastAttempt(t *testing.T) {
	h := &stubHandler{run: func(jc *Context) error { return errors.New("transient") }}
	exec, repo := newExecutor(t, h, 3)
	job := runningJob(t, repo, "stub", 1)

	exec.Execute(context.Background(), job)

	got := reload(t, repo, job.ID)
	if got.Status != types.JobStatusFailed || !got.Retryable {
		t.Fatalf("expected retryable failure, got status=%s retryable=%v", got.Status, got.Retryable)
	}
	if got.Error != "transient" {
		t.Fatalf("expected error recorded, got %q", got.Error)
	}
	if len(h.abandoned) != 0 {
		t.Fatalf("expected no abandon before the last attempt")
	}
}

func TestExecuteLastAttemptAbandons(t *testing.T) {
	h := &stubHandler{run: func(jc *Context) error {
		jc.Fail("persist", errors.New("db down"))
		return nil
	}}
	exec, repo := newExecutor(t, h, 3)
	job := runningJob(t, repo, "stub", 3)

	exec.Execute(context.Background(), job)

	if len(h.abandoned) != 1 || h.abandoned[0].Error() != "db down" {
		t.Fatalf("expected one abandon with the recorded error, got %v", h.abandoned)
	}
	got := reload(t, repo, job.ID)
	if got.Retryable {
		t.Fatalf("expected abandoned job to be permanent")
	}
}

func TestExecutePanicIsPermanentAndReported(t *testing.T) {
	h := &stubHandler{run: func(jc *Context) error { panic("nil map") }}
	exec, repo := newExecutor(t, h, 5)
	var reported []map[string]string
	exec.Report = func(err error, tags map[string]string) { reported = append(reported, tags) }
	job := runningJob(t, repo, "stub", 1)

	exec.Execute(context.Background(), job)

	got := reload(t, repo, job.ID)
	if got.Status != types.JobStatusFailed || got.Retryable || got.Stage != "panic" {
		t.Fatalf("expected permanent panic failure, got status=%s retryable=%v stage=%s", got.Status, got.Retryable, got.Stage)
	}
	if len(h.abandoned) != 1 {
		t.Fatalf("expected abandon after panic, got %d", len(h.abandoned))
	}
	if len(reported) != 1 || reported[0]["stage"] != "panic" {
		t.Fatalf("expected one panic report, got %v", reported)
	}
}

func TestExecuteNilReturnWithoutTerminalSucceeds(t *testing.T) {
	h := &stubHandler{run: func(jc *Context) error { return nil }}
	exec, repo := newExecutor(t, h, 3)
	job := runningJob(t, repo, "stub", 1)

	jc := exec.Execute(context.Background(), job)

	if jc.Job.Status != types.JobStatusSucceeded {
		t.Fatalf("expected in-memory succeeded, got %s", jc.Job.Status)
	}
	if got := reload(t, repo, job.ID); got.Status != types.JobStatusSucceeded {
		t.Fatalf("expected succeeded, got %s", got.Status)
	}
}
