package services

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/checkia-backend/internal/data/repos/testutil"
	types "github.com/yungbote/checkia-backend/internal/domain"
	"github.com/yungbote/checkia-backend/internal/platform/apierr"
	"github.com/yungbote/checkia-backend/internal/platform/dbctx"
)

func TestSubmitCreatesPendingSubmissionAndJob(t *testing.T) {
	f := newFixture(t)
	svc := NewSubmissionService(f.db, testutil.Logger(t), f.submissions, f.jobs, f.store)
	userID := uuid.New()

	sub, job, err := svc.Submit(userCtx(userID), "  Le PSG a gagné hier  ", "https://news.example.com/psg")
	require.NoError(t, err)
	require.NotNil(t, job)
	assert.Equal(t, "Le PSG a gagné hier", sub.Text)
	assert.Equal(t, types.SubmissionStatusPending, sub.Status)
	assert.Equal(t, userID, sub.UserID)
	assert.Equal(t, "user@example.com", sub.UserEmail)

	assert.Equal(t, types.JobTypeAnalyzeSubmissionText, job.JobType)
	assert.Equal(t, types.EntitySubmission, job.EntityType)
	assert.Equal(t, types.JobStatusQueued, job.Status)
	assert.Contains(t, string(job.Payload), sub.ID.String())

	stored, err := f.submissions.GetByID(dbctx.Context{Ctx: context.Background()}, sub.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.JobID)
	assert.Equal(t, job.ID, *stored.JobID)
}

func TestSubmitValidation(t *testing.T) {
	f := newFixture(t)
	svc := NewSubmissionService(f.db, testutil.Logger(t), f.submissions, f.jobs, f.store)
	dbc := userCtx(uuid.New())

	cases := []struct {
		name   string
		text   string
		source string
	}{
		{"empty", "   ", ""},
		{"too long", strings.Repeat("a", MaxClaimRunes+1), ""},
		{"relative source", "claim", "/not/a/url"},
		{"ftp source", "claim", "ftp://example.com/file"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := svc.Submit(dbc, tc.text, tc.source)
			require.Error(t, err)
			assert.True(t, IsValidationError(err))
			assert.Equal(t, 400, apierr.From(err).Status)
		})
	}

	var jobs int64
	require.NoError(t, f.db.Model(&types.JobRun{}).Count(&jobs).Error)
	assert.Zero(t, jobs, "rejected submissions never create a job")
}

func TestSubmitRequiresUser(t *testing.T) {
	f := newFixture(t)
	svc := NewSubmissionService(f.db, testutil.Logger(t), f.submissions, f.jobs, f.store)

	_, _, err := svc.Submit(dbctx.Context{Ctx: context.Background()}, "claim", "")
	assert.ErrorIs(t, err, ErrNotAuthenticated)
}

func TestSubmitDispatchFailureForcesTerminal(t *testing.T) {
	f := newFixture(t)
	jobs := &failingJobs{job: &types.JobRun{ID: uuid.New()}, err: errBoom}
	svc := NewSubmissionService(f.db, testutil.Logger(t), f.submissions, jobs, f.store)

	sub, _, err := svc.Submit(userCtx(uuid.New()), "claim", "")
	require.Error(t, err)
	require.NotNil(t, sub)

	got, err := f.submissions.GetByID(dbctx.Context{Ctx: context.Background()}, sub.ID)
	require.NoError(t, err)
	assert.Equal(t, types.SubmissionStatusRejected, got.Status)
	assert.Equal(t, types.VerdictError, got.Verdict)
	assert.Equal(t, 0, got.Confidence)
}

func TestGetHidesOtherUsersSubmissions(t *testing.T) {
	f := newFixture(t)
	svc := NewSubmissionService(f.db, testutil.Logger(t), f.submissions, f.jobs, f.store)
	owner := uuid.New()

	sub, _, err := svc.Submit(userCtx(owner), "claim", "")
	require.NoError(t, err)

	got, err := svc.Get(userCtx(owner), sub.ID)
	require.NoError(t, err)
	assert.Equal(t, sub.ID, got.ID)

	_, err = svc.Get(userCtx(uuid.New()), sub.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	mine, err := svc.ListMine(userCtx(owner))
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	theirs, err := svc.ListMine(userCtx(uuid.New()))
	require.NoError(t, err)
	assert.Empty(t, theirs)
}
