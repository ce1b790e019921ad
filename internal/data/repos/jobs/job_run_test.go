package jobs

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/yungbote/checkia-backend/internal/data/repos/testutil"
	types "github.com/yungbote/checkia-backend/internal/domain"
	"github.com/yungbote/checkia-backend/internal/platform/dbctx"
)

func newJob(owner uuid.UUID, status string, created time.Time) *types.JobRun {
	entityID := uuid.New()
	return &types.JobRun{
		ID:          uuid.New(),
		OwnerUserID: owner,
		JobType:     types.JobTypeAnalyzeSubmissionText,
		EntityType:  types.EntitySubmission,
		EntityID:    &entityID,
		Status:      status,
		Stage:       status,
		Retryable:   true,
		Payload:     datatypes.JSON([]byte("{}")),
		Result:      datatypes.JSON([]byte("{}")),
		CreatedAt:   created,
		UpdatedAt:   created,
	}
}

func TestJobRunRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	dbc := dbctx.Context{Ctx: context.Background(), Tx: tx}
	repo := NewJobRunRepo(db, testutil.Logger(t))

	now := time.Now().UTC()
	ownerUserID := uuid.New()

	queued := newJob(ownerUserID, types.JobStatusQueued, now.Add(-3*time.Hour))
	failed := newJob(ownerUserID, types.JobStatusFailed, now.Add(-2*time.Hour))
	failed.LastErrorAt = testutil.PtrTime(now.Add(-2 * time.Hour))
	staleRunning := newJob(ownerUserID, types.JobStatusRunning, now.Add(-1*time.Hour))
	staleRunning.HeartbeatAt = testutil.PtrTime(now.Add(-10 * time.Hour))

	created, err := repo.Create(dbc, []*types.JobRun{queued, failed, staleRunning})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if len(created) != 3 {
		t.Fatalf("Create: expected 3, got %d", len(created))
	}

	if rows, err := repo.GetByIDs(dbc, []uuid.UUID{queued.ID, failed.ID, staleRunning.ID}); err != nil || len(rows) != 3 {
		t.Fatalf("GetByIDs: err=%v len=%d", err, len(rows))
	}

	// GetLatestByEntity
	entityID := uuid.New()
	older := newJob(ownerUserID, types.JobStatusSucceeded, now.Add(-5*time.Hour))
	older.EntityID = &entityID
	newer := newJob(ownerUserID, types.JobStatusSucceeded, now.Add(-4*time.Hour))
	newer.EntityID = &entityID
	if _, err := repo.Create(dbc, []*types.JobRun{older, newer}); err != nil {
		t.Fatalf("seed latest: %v", err)
	}
	latest, err := repo.GetLatestByEntity(dbc, ownerUserID, types.EntitySubmission, entityID, types.JobTypeAnalyzeSubmissionText)
	if err != nil {
		t.Fatalf("GetLatestByEntity: %v", err)
	}
	if latest == nil || latest.ID != newer.ID {
		t.Fatalf("GetLatestByEntity: expected %v got %v", newer.ID, latest)
	}

	// ClaimNextRunnable should walk the runnable set in created_at ASC order.
	claim1, err := repo.ClaimNextRunnable(dbc, 3, 1*time.Hour, 1*time.Hour)
	if err != nil {
		t.Fatalf("ClaimNextRunnable #1: %v", err)
	}
	if claim1 == nil || claim1.ID != queued.ID {
		t.Fatalf("ClaimNextRunnable #1: expected %v got %v", queued.ID, claim1)
	}
	if claim1.Status != types.JobStatusRunning || claim1.Attempts != 1 {
		t.Fatalf("ClaimNextRunnable #1: expected running/1, got %s/%d", claim1.Status, claim1.Attempts)
	}

	claim2, err := repo.ClaimNextRunnable(dbc, 3, 1*time.Hour, 1*time.Hour)
	if err != nil {
		t.Fatalf("ClaimNextRunnable #2: %v", err)
	}
	if claim2 == nil || claim2.ID != failed.ID {
		t.Fatalf("ClaimNextRunnable #2: expected %v got %v", failed.ID, claim2)
	}

	claim3, err := repo.ClaimNextRunnable(dbc, 3, 1*time.Hour, 1*time.Hour)
	if err != nil {
		t.Fatalf("ClaimNextRunnable #3: %v", err)
	}
	if claim3 == nil || claim3.ID != staleRunning.ID {
		t.Fatalf("ClaimNextRunnable #3: expected %v got %v", staleRunning.ID, claim3)
	}

	claim4, err := repo.ClaimNextRunnable(dbc, 3, 1*time.Hour, 1*time.Hour)
	if err != nil {
		t.Fatalf("ClaimNextRunnable #4: %v", err)
	}
	if claim4 != nil {
		t.Fatalf("ClaimNextRunnable #4: expected nil, got %v", claim4)
	}

	// Heartbeat only touches running jobs.
	if err := repo.Heartbeat(dbc, failed.ID); err != nil {
		t.Fatalf("Heartbeat: %v", err)
	}

	// UpdateFieldsUnlessStatus refuses to overwrite a disallowed status.
	if err := repo.UpdateFields(dbc, queued.ID, map[string]interface{}{"status": types.JobStatusCanceled}); err != nil {
		t.Fatalf("UpdateFields: %v", err)
	}
	ok, err := repo.UpdateFieldsUnlessStatus(dbc, queued.ID, []string{types.JobStatusCanceled}, map[string]interface{}{"status": types.JobStatusSucceeded})
	if err != nil {
		t.Fatalf("UpdateFieldsUnlessStatus: %v", err)
	}
	if ok {
		t.Fatalf("UpdateFieldsUnlessStatus: expected no rows updated for canceled job")
	}

	// HasRunnableForEntity
	has, err := repo.HasRunnableForEntity(dbc, ownerUserID, types.EntitySubmission, *staleRunning.EntityID, types.JobTypeAnalyzeSubmissionText)
	if err != nil {
		t.Fatalf("HasRunnableForEntity: %v", err)
	}
	if !has {
		t.Fatalf("HasRunnableForEntity: expected true")
	}
	has, err = repo.HasRunnableForEntity(dbc, ownerUserID, types.EntitySubmission, entityID, types.JobTypeAnalyzeSubmissionText)
	if err != nil {
		t.Fatalf("HasRunnableForEntity (succeeded): %v", err)
	}
	if has {
		t.Fatalf("HasRunnableForEntity (succeeded): expected false")
	}
}

func TestClaimNextRunnableSkipsPermanentFailures(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	dbc := dbctx.Context{Ctx: context.Background(), Tx: tx}
	repo := NewJobRunRepo(db, testutil.Logger(t))

	now := time.Now().UTC()
	job := newJob(uuid.New(), types.JobStatusFailed, now.Add(-2*time.Hour))
	job.LastErrorAt = testutil.PtrTime(now.Add(-2 * time.Hour))
	if _, err := repo.Create(dbc, []*types.JobRun{job}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := repo.UpdateFields(dbc, job.ID, map[string]interface{}{"retryable": false}); err != nil {
		t.Fatalf("UpdateFields: %v", err)
	}

	claimed, err := repo.ClaimNextRunnable(dbc, 5, time.Minute, time.Hour)
	if err != nil {
		t.Fatalf("ClaimNextRunnable: %v", err)
	}
	if claimed != nil {
		t.Fatalf("expected permanent failure to stay unclaimed, got %v", claimed.ID)
	}
}
