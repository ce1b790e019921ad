package services

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/checkia-backend/internal/data/repos/testutil"
	types "github.com/yungbote/checkia-backend/internal/domain"
	"github.com/yungbote/checkia-backend/internal/platform/apierr"
	"github.com/yungbote/checkia-backend/internal/platform/dbctx"
)

func TestDetectImageFormat(t *testing.T) {
	ext, err := DetectImageFormat(pngBytes(t))
	require.NoError(t, err)
	assert.Equal(t, "png", ext)

	_, err = DetectImageFormat(nil)
	assert.True(t, IsValidationError(err))

	_, err = DetectImageFormat([]byte("definitely not an image"))
	assert.True(t, IsValidationError(err))
}

func TestImageKeyLayout(t *testing.T) {
	owner := uuid.New()
	at := time.Date(2025, 3, 9, 14, 5, 7, 0, time.UTC)
	key := ImageKey(owner, types.ImageKindContent, at, "png")

	parts := strings.Split(key, "/")
	require.Len(t, parts, 3)
	assert.Equal(t, owner.String(), parts[0])
	assert.Equal(t, types.ImageKindContent, parts[1])
	assert.Regexp(t, `^20250309_140507_[0-9a-f]{8}\.png$`, parts[2])
}

func TestImageStoreURLFallsBackToPublic(t *testing.T) {
	bucket := newMemBucket()
	store := NewImageStore(testutil.Logger(t), bucket)
	assert.True(t, strings.HasPrefix(store.URL("a/b.png"), "https://signed.example.com/a/b.png"))

	bucket.signErr = errBoom
	assert.Equal(t, "https://public.example.com/a/b.png", store.URL("a/b.png"))
}

func TestImageSubmitWithoutStorage(t *testing.T) {
	f := newFixture(t)
	store := NewImageStore(testutil.Logger(t), nil)
	svc := NewImageVerificationService(f.db, testutil.Logger(t), f.images, store, f.jobs, f.store, "")

	_, _, err := svc.Submit(userCtx(uuid.New()), types.ImageKindContent, ImageUpload{Filename: "a.png", Data: pngBytes(t)})
	require.ErrorIs(t, err, ErrStorageUnavailable)
	assert.Equal(t, http.StatusServiceUnavailable, apierr.From(err).Status)
}

func newImageService(t *testing.T, f *fixture, bucket *memBucket) ImageVerificationService {
	t.Helper()
	store := NewImageStore(testutil.Logger(t), bucket)
	return NewImageVerificationService(f.db, testutil.Logger(t), f.images, store, f.jobs, f.store, "")
}

func TestImageSubmitContent(t *testing.T) {
	f := newFixture(t)
	bucket := newMemBucket()
	svc := newImageService(t, f, bucket)
	owner := uuid.New()

	rec, job, err := svc.Submit(userCtx(owner), types.ImageKindContent, ImageUpload{
		Filename: "../../photo.png",
		Data:     pngBytes(t),
		Claim:    "Photo prise à Paris en 2024",
	})
	require.NoError(t, err)
	assert.Equal(t, types.ImageStatusInProgress, rec.Status)
	assert.Equal(t, "photo.png", rec.OriginalFilename)
	assert.Equal(t, "Photo prise à Paris en 2024", rec.ClaimText)
	assert.Equal(t, types.DefaultImageModel, rec.ModelUsed)
	assert.True(t, strings.HasPrefix(rec.ImagePath, owner.String()+"/content/"))
	assert.Contains(t, bucket.objects, rec.ImagePath)

	require.NotNil(t, job)
	assert.Equal(t, types.JobTypeVerifyImageContent, job.JobType)
	assert.Equal(t, types.EntityImageVerification, job.EntityType)
}

func TestImageSubmitDetectionDropsClaim(t *testing.T) {
	f := newFixture(t)
	svc := newImageService(t, f, newMemBucket())

	rec, job, err := svc.Submit(userCtx(uuid.New()), types.ImageKindAIDetection, ImageUpload{
		Filename: "x.png",
		Data:     pngBytes(t),
		Claim:    "ignored",
	})
	require.NoError(t, err)
	assert.Empty(t, rec.ClaimText)
	assert.Equal(t, types.JobTypeDetectAIImage, job.JobType)
}

func TestImageSubmitRejectsBadInput(t *testing.T) {
	f := newFixture(t)
	bucket := newMemBucket()
	svc := newImageService(t, f, bucket)
	dbc := userCtx(uuid.New())

	_, _, err := svc.Submit(dbc, types.ImageKindContent, ImageUpload{Filename: "x.txt", Data: []byte("hello")})
	assert.True(t, IsValidationError(err))

	_, _, err = svc.Submit(dbc, "video", ImageUpload{Filename: "x.png", Data: pngBytes(t)})
	assert.True(t, IsValidationError(err))

	assert.Empty(t, bucket.objects)
}

func TestImageSubmitDispatchFailureForcesTerminal(t *testing.T) {
	f := newFixture(t)
	store := NewImageStore(testutil.Logger(t), newMemBucket())
	jobs := &failingJobs{err: errBoom}
	svc := NewImageVerificationService(f.db, testutil.Logger(t), f.images, store, jobs, f.store, "")

	rec, _, err := svc.Submit(userCtx(uuid.New()), types.ImageKindAIDetection, ImageUpload{Filename: "x.png", Data: pngBytes(t)})
	require.Error(t, err)
	require.NotNil(t, rec)

	got, err := f.images.GetByID(dbctx.Context{Ctx: context.Background()}, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, types.ImageStatusError, got.Status)
	assert.Equal(t, 0, got.Confidence)
}

func TestImageDeleteRemovesObject(t *testing.T) {
	f := newFixture(t)
	bucket := newMemBucket()
	svc := newImageService(t, f, bucket)
	owner := uuid.New()

	rec, _, err := svc.Submit(userCtx(owner), types.ImageKindContent, ImageUpload{Filename: "x.png", Data: pngBytes(t)})
	require.NoError(t, err)

	assert.ErrorIs(t, svc.Delete(userCtx(uuid.New()), rec.ID), ErrNotFound)

	require.NoError(t, svc.Delete(userCtx(owner), rec.ID))
	assert.Equal(t, []string{rec.ImagePath}, bucket.deleted)

	_, err = svc.Get(userCtx(owner), rec.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}
