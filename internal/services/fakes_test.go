package services

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/checkia-backend/internal/data/repos"
	"github.com/yungbote/checkia-backend/internal/data/repos/testutil"
	types "github.com/yungbote/checkia-backend/internal/domain"
	"github.com/yungbote/checkia-backend/internal/platform/ctxutil"
	"github.com/yungbote/checkia-backend/internal/platform/dbctx"
	"github.com/yungbote/checkia-backend/internal/platform/gcp"
)

type fixture struct {
	db          *gorm.DB
	submissions repos.SubmissionRepo
	images      repos.ImageVerificationRepo
	facts       repos.FactRepo
	keywords    repos.KeywordRepo
	jobRuns     repos.JobRunRepo
	store       VerdictStore
	jobs        JobService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.DB(t)
	log := testutil.Logger(t)
	f := &fixture{
		db:          db,
		submissions: repos.NewSubmissionRepo(db, log),
		images:      repos.NewImageVerificationRepo(db, log),
		facts:       repos.NewFactRepo(db, log),
		keywords:    repos.NewKeywordRepo(db, log),
		jobRuns:     repos.NewJobRunRepo(db, log),
	}
	f.store = NewVerdictStore(db, log, f.submissions, f.images, f.facts, f.keywords)
	f.jobs = NewJobService(db, log, f.jobRuns, NewJobNotifier(log, nil), nil, JobServiceConfig{MaxAttempts: 3})
	return f
}

func userCtx(userID uuid.UUID) dbctx.Context {
	ctx := ctxutil.WithRequestData(context.Background(), &ctxutil.RequestData{
		UserID:      userID,
		Email:       "user@example.com",
		DisplayName: "User",
	})
	return dbctx.Context{Ctx: ctx}
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

type failingJobs struct {
	JobService
	job *types.JobRun
	err error
}

func (f *failingJobs) Enqueue(dbc dbctx.Context, ownerUserID uuid.UUID, jobType string, entityType string, entityID *uuid.UUID, payload map[string]any) (*types.JobRun, error) {
	return f.job, f.err
}

type memBucket struct {
	mu        sync.Mutex
	objects   map[string][]byte
	signErr   error
	uploadErr error
	deleted   []string
}

func newMemBucket() *memBucket { return &memBucket{objects: map[string][]byte{}} }

func (b *memBucket) UploadFile(ctx context.Context, category gcp.BucketCategory, key string, file io.Reader) error {
	if b.uploadErr != nil {
		return b.uploadErr
	}
	data, err := io.ReadAll(file)
	if err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.objects[key] = data
	return nil
}

func (b *memBucket) DeleteFile(ctx context.Context, category gcp.BucketCategory, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.objects[key]; !ok {
		return gcp.ErrObjectNotFound
	}
	delete(b.objects, key)
	b.deleted = append(b.deleted, key)
	return nil
}

func (b *memBucket) DownloadFile(ctx context.Context, category gcp.BucketCategory, key string) (io.ReadCloser, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	data, ok := b.objects[key]
	if !ok {
		return nil, gcp.ErrObjectNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (b *memBucket) ListKeys(ctx context.Context, category gcp.BucketCategory, prefix string) ([]string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := []string{}
	for k := range b.objects {
		if strings.HasPrefix(k, prefix) {
			out = append(out, k)
		}
	}
	return out, nil
}

func (b *memBucket) SignedURL(category gcp.BucketCategory, key string, ttl time.Duration) (string, error) {
	if b.signErr != nil {
		return "", b.signErr
	}
	return "https://signed.example.com/" + key + "?ttl=" + ttl.String(), nil
}

func (b *memBucket) GetPublicURL(category gcp.BucketCategory, key string) string {
	return "https://public.example.com/" + key
}

func (b *memBucket) Close() error { return nil }

type fakeTranslator struct {
	out map[string]string
	err error
}

func (f *fakeTranslator) Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	if v, ok := f.out[text]; ok {
		return v, nil
	}
	return text, nil
}

var errBoom = errors.New("boom")
