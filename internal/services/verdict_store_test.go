package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/checkia-backend/internal/data/repos/testutil"
	types "github.com/yungbote/checkia-backend/internal/domain"
	"github.com/yungbote/checkia-backend/internal/platform/dbctx"
	"github.com/yungbote/checkia-backend/internal/verification"
)

func trueVerdict() verification.TextVerdict {
	return verification.TextVerdict{
		Verdict:        types.VerdictTrue,
		Explanation:    "Confirmé par plusieurs sources.",
		PrimarySources: []string{"https://primary.example.com/a"},
		Confidence:     88,
		Outcome:        verification.OutcomeOK,
		Retrieval: verification.Retrieval{
			Sources: []verification.Source{{Title: "A", Link: "https://web.example.com/a"}},
			Outcome: verification.OutcomeOK,
		},
	}
}

func TestCompleteSubmissionCreatesOneFact(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx}
	sub := testutil.SeedSubmission(t, ctx, f.db, uuid.New(), "Paris est la capitale de la France")

	applied, err := f.store.CompleteSubmission(dbc, sub.ID, trueVerdict())
	require.NoError(t, err)
	assert.True(t, applied)

	applied, err = f.store.CompleteSubmission(dbc, sub.ID, trueVerdict())
	require.NoError(t, err)
	assert.False(t, applied, "second delivery must be a no-op")

	var count int64
	require.NoError(t, f.db.Model(&types.Fact{}).Where("submission_id = ?", sub.ID).Count(&count).Error)
	assert.EqualValues(t, 1, count)

	fact, err := f.facts.GetBySubmissionID(dbc, sub.ID)
	require.NoError(t, err)
	require.NotNil(t, fact)
	assert.Equal(t, "https://primary.example.com/a", fact.Source)
	assert.NotEmpty(t, fact.Keywords)

	got, err := f.submissions.GetByID(dbc, sub.ID)
	require.NoError(t, err)
	assert.Equal(t, types.SubmissionStatusVerified, got.Status)
	assert.Equal(t, types.VerdictTrue, got.Verdict)
	assert.Equal(t, 88, got.Confidence)
	assert.NotNil(t, got.CompletedAt)
}

func TestCompleteSubmissionFalseSkipsFact(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx}

	for _, verdict := range []string{types.VerdictFalse, types.VerdictUndetermined} {
		sub := testutil.SeedSubmission(t, ctx, f.db, uuid.New(), "La Lune est en fromage")
		v := trueVerdict()
		v.Verdict = verdict
		applied, err := f.store.CompleteSubmission(dbc, sub.ID, v)
		require.NoError(t, err)
		assert.True(t, applied)

		got, err := f.submissions.GetByID(dbc, sub.ID)
		require.NoError(t, err)
		assert.Equal(t, types.SubmissionStatusRejected, got.Status)

		fact, err := f.facts.GetBySubmissionID(dbc, sub.ID)
		require.NoError(t, err)
		assert.Nil(t, fact)
	}
}

func TestCompleteSubmissionClampsConfidence(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx}
	sub := testutil.SeedSubmission(t, ctx, f.db, uuid.New(), "claim")

	v := trueVerdict()
	v.Verdict = types.VerdictFalse
	v.Confidence = 250
	_, err := f.store.CompleteSubmission(dbc, sub.ID, v)
	require.NoError(t, err)

	got, err := f.submissions.GetByID(dbc, sub.ID)
	require.NoError(t, err)
	assert.Equal(t, 100, got.Confidence)
}

func TestSharedKeywordsAcrossVerifiedSubmissions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx}

	a := testutil.SeedSubmission(t, ctx, f.db, uuid.New(), "Paris accueille les jeux")
	b := testutil.SeedSubmission(t, ctx, f.db, uuid.New(), "paris accueille les jeux")
	for _, id := range []uuid.UUID{a.ID, b.ID} {
		_, err := f.store.CompleteSubmission(dbc, id, trueVerdict())
		require.NoError(t, err)
	}

	var count int64
	require.NoError(t, f.db.Model(&types.Keyword{}).Where("word = ?", "paris").Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestFactSourceFallbacks(t *testing.T) {
	sub := &types.Submission{Source: "https://user.example.com"}

	v := verification.TextVerdict{}
	assert.Equal(t, "https://user.example.com", factSource(sub, v))

	v.Retrieval.Sources = []verification.Source{{Title: "no link"}, {Link: "https://web.example.com"}}
	assert.Equal(t, "https://web.example.com", factSource(sub, v))

	v.PrimarySources = []string{" ", "https://primary.example.com"}
	assert.Equal(t, "https://primary.example.com", factSource(sub, v))

	assert.Equal(t, types.NoVerificationSource, factSource(&types.Submission{}, verification.TextVerdict{}))
}

func TestFailSubmissionWritesTerminalError(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx}
	sub := testutil.SeedSubmission(t, ctx, f.db, uuid.New(), "claim")

	applied, err := f.store.FailSubmission(dbc, sub.ID, "upstream exploded")
	require.NoError(t, err)
	assert.True(t, applied)

	got, err := f.submissions.GetByID(dbc, sub.ID)
	require.NoError(t, err)
	assert.Equal(t, types.SubmissionStatusRejected, got.Status)
	assert.Equal(t, types.VerdictError, got.Verdict)
	assert.Equal(t, 0, got.Confidence)
	assert.Equal(t, "upstream exploded", got.Explanation)

	// A late success cannot overwrite the recorded failure.
	applied, err = f.store.CompleteSubmission(dbc, sub.ID, trueVerdict())
	require.NoError(t, err)
	assert.False(t, applied)
}

func TestCompleteImageRejectsStatusFromOtherKind(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx}
	rec := testutil.SeedImageVerification(t, ctx, f.db, uuid.New(), types.ImageKindContent, "")

	applied, err := f.store.CompleteImage(dbc, rec.ID, verification.ImageVerdict{
		Status:     types.ImageStatusAIDetected,
		Confidence: 80,
	})
	require.NoError(t, err)
	assert.True(t, applied)

	got, err := f.images.GetByID(dbc, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, types.ImageStatusError, got.Status)
}

func TestCompleteImageOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx}
	rec := testutil.SeedImageVerification(t, ctx, f.db, uuid.New(), types.ImageKindAIDetection, "")

	v := verification.ImageVerdict{
		Status:      types.ImageStatusAIDetected,
		Confidence:  80,
		Explanation: "Textures trop lisses.",
		Details:     map[string]any{"type": "ai_detection", "ai_probability": 80},
		Model:       "openai/gpt-4.1-mini",
	}
	applied, err := f.store.CompleteImage(dbc, rec.ID, v)
	require.NoError(t, err)
	assert.True(t, applied)

	applied, err = f.store.FailImage(dbc, rec.ID, "late failure")
	require.NoError(t, err)
	assert.False(t, applied)

	got, err := f.images.GetByID(dbc, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, types.ImageStatusAIDetected, got.Status)
	assert.Equal(t, 80, got.Confidence)
	assert.Contains(t, string(got.Details), "ai_probability")
}
