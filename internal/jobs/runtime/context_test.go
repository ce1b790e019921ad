package runtime

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	types "github.com/yungbote/checkia-backend/internal/domain"
	"github.com/yungbote/checkia-backend/internal/platform/ctxutil"
)

func TestContextPayload(t *testing.T) {
	id := uuid.New()
	job := &types.JobRun{
		ID:      uuid.New(),
		Payload: datatypes.JSON([]byte(`{"submission_id":"` + id.String() + `","trace_id":"t-1","bad":"nope"}`)),
	}
	jc := NewContext(context.Background(), nil, job, nil, nil)

	got, ok := jc.PayloadUUID("submission_id")
	if !ok || got != id {
		t.Fatalf("PayloadUUID: expected %v, got %v ok=%v", id, got, ok)
	}
	if _, ok := jc.PayloadUUID("bad"); ok {
		t.Fatalf("PayloadUUID: expected invalid uuid to be rejected")
	}
	if _, ok := jc.PayloadUUID("missing"); ok {
		t.Fatalf("PayloadUUID: expected missing key to be rejected")
	}
	if td := ctxutil.GetTraceData(jc.Ctx); td == nil || td.TraceID != "t-1" {
		t.Fatalf("expected trace data from payload, got %+v", td)
	}
}

func TestContextMalformedPayload(t *testing.T) {
	job := &types.JobRun{ID: uuid.New(), Payload: datatypes.JSON([]byte(`{not json`))}
	jc := NewContext(context.Background(), nil, job, nil, nil)
	if p := jc.Payload(); p == nil || len(p) != 0 {
		t.Fatalf("expected empty payload, got %v", p)
	}
}

func TestSucceedWithoutRepoUpdatesMemory(t *testing.T) {
	job := &types.JobRun{ID: uuid.New(), Status: types.JobStatusRunning}
	jc := NewContext(context.Background(), nil, job, nil, nil)
	jc.Succeed("done", map[string]any{"ok": true})
	if job.Status != types.JobStatusSucceeded || job.Progress != 100 {
		t.Fatalf("expected succeeded/100, got %s/%d", job.Status, job.Progress)
	}
	if string(job.Result) != `{"ok":true}` {
		t.Fatalf("unexpected result %s", job.Result)
	}
}
