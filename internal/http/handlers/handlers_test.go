package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	types "github.com/yungbote/checkia-backend/internal/domain"
	"github.com/yungbote/checkia-backend/internal/platform/apierr"
	"github.com/yungbote/checkia-backend/internal/platform/dbctx"
	"github.com/yungbote/checkia-backend/internal/services"
)

type stubSubmissions struct {
	gotText, gotSource string
	err                error
	byID               map[uuid.UUID]*types.Submission
}

func (s *stubSubmissions) Submit(dbc dbctx.Context, text, source string) (*types.Submission, *types.JobRun, error) {
	s.gotText, s.gotSource = text, source
	if s.err != nil {
		return nil, nil, s.err
	}
	return &types.Submission{ID: uuid.New(), Text: text, Status: types.SubmissionStatusPending},
		&types.JobRun{ID: uuid.MustParse("11111111-1111-1111-1111-111111111111")}, nil
}

func (s *stubSubmissions) Get(dbc dbctx.Context, id uuid.UUID) (*types.Submission, error) {
	if sub, ok := s.byID[id]; ok {
		return sub, nil
	}
	return nil, services.ErrNotFound
}

func (s *stubSubmissions) ListMine(dbc dbctx.Context) ([]*types.Submission, error) {
	return []*types.Submission{}, nil
}

type stubImages struct {
	kind    string
	upload  services.ImageUpload
	deleted uuid.UUID
}

func (s *stubImages) Submit(dbc dbctx.Context, kind string, in services.ImageUpload) (*types.ImageVerification, *types.JobRun, error) {
	s.kind, s.upload = kind, in
	return &types.ImageVerification{ID: uuid.New(), Kind: kind}, &types.JobRun{ID: uuid.New()}, nil
}

func (s *stubImages) Get(dbc dbctx.Context, id uuid.UUID) (*types.ImageVerification, error) {
	return nil, services.ErrNotFound
}

func (s *stubImages) ListMine(dbc dbctx.Context) ([]*types.ImageVerification, error) {
	return nil, nil
}

func (s *stubImages) Delete(dbc dbctx.Context, id uuid.UUID) error {
	s.deleted = id
	return nil
}

type stubJobs struct {
	services.JobService
	status *services.JobStatus
}

func (s *stubJobs) Poll(dbc dbctx.Context, id uuid.UUID) (*services.JobStatus, error) {
	if s.status == nil {
		return nil, services.ErrNotFound
	}
	return s.status, nil
}

func do(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestCreateSubmissionAcceptsFrenchField(t *testing.T) {
	gin.SetMode(gin.TestMode)
	subs := &stubSubmissions{}
	r := gin.New()
	r.POST("/api/submissions", NewSubmissionHandler(subs).Create)

	req := httptest.NewRequest(http.MethodPost, "/api/submissions", bytes.NewBufferString(`{"texte":"La Tour Eiffel est à Paris","source":"https://example.com"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := do(r, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "La Tour Eiffel est à Paris", subs.gotText)
	assert.Equal(t, "https://example.com", subs.gotSource)
	assert.Contains(t, rec.Body.String(), `"task_id":"11111111-1111-1111-1111-111111111111"`)
}

func TestCreateSubmissionValidationError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	subs := &stubSubmissions{err: apierr.BadRequest("validation_error", &services.ValidationError{Field: "text", Message: "required"})}
	r := gin.New()
	r.POST("/api/submissions", NewSubmissionHandler(subs).Create)

	req := httptest.NewRequest(http.MethodPost, "/api/submissions", bytes.NewBufferString(`{"text":""}`))
	req.Header.Set("Content-Type", "application/json")
	rec := do(r, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), `"code":"validation_error"`)
}

func TestGetSubmission(t *testing.T) {
	gin.SetMode(gin.TestMode)
	id := uuid.New()
	subs := &stubSubmissions{byID: map[uuid.UUID]*types.Submission{id: {ID: id, Verdict: types.VerdictTrue}}}
	r := gin.New()
	r.GET("/api/submissions/:id", NewSubmissionHandler(subs).Get)

	assert.Equal(t, http.StatusOK, do(r, httptest.NewRequest(http.MethodGet, "/api/submissions/"+id.String(), nil)).Code)
	assert.Equal(t, http.StatusNotFound, do(r, httptest.NewRequest(http.MethodGet, "/api/submissions/"+uuid.NewString(), nil)).Code)
	assert.Equal(t, http.StatusBadRequest, do(r, httptest.NewRequest(http.MethodGet, "/api/submissions/nope", nil)).Code)
}

func multipartBody(t *testing.T, fields map[string]string, withImage bool) (*bytes.Buffer, string) {
	t.Helper()
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if withImage {
		fw, err := w.CreateFormFile("image", "photo.png")
		require.NoError(t, err)
		_, err = fw.Write([]byte("\x89PNG\r\n\x1a\n"))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return buf, w.FormDataContentType()
}

func TestImageUploadRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	images := &stubImages{}
	h := NewImageVerificationHandler(images)
	r := gin.New()
	r.POST("/api/verify-image-content", h.VerifyContent)
	r.POST("/api/detect-ai-image", h.DetectAI)

	body, ct := multipartBody(t, map[string]string{"claim_text": "Photo prise à Lyon"}, true)
	req := httptest.NewRequest(http.MethodPost, "/api/verify-image-content", body)
	req.Header.Set("Content-Type", ct)
	rec := do(r, req)

	require.Equal(t, http.StatusAccepted, rec.Code)
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, "EN_COURS", out["status"])
	assert.NotEmpty(t, out["task_id"])
	assert.NotEmpty(t, out["verification_id"])
	assert.Equal(t, types.ImageKindContent, images.kind)
	assert.Equal(t, "Photo prise à Lyon", images.upload.Claim)
	assert.Equal(t, "photo.png", images.upload.Filename)

	body, ct = multipartBody(t, nil, true)
	req = httptest.NewRequest(http.MethodPost, "/api/detect-ai-image", body)
	req.Header.Set("Content-Type", ct)
	require.Equal(t, http.StatusAccepted, do(r, req).Code)
	assert.Equal(t, types.ImageKindAIDetection, images.kind)

	body, ct = multipartBody(t, map[string]string{"claim_text": "x"}, false)
	req = httptest.NewRequest(http.MethodPost, "/api/verify-image-content", body)
	req.Header.Set("Content-Type", ct)
	assert.Equal(t, http.StatusBadRequest, do(r, req).Code)
}

func TestDeleteImageVerification(t *testing.T) {
	gin.SetMode(gin.TestMode)
	images := &stubImages{}
	r := gin.New()
	r.DELETE("/api/image-verifications/:id", NewImageVerificationHandler(images).Delete)

	id := uuid.New()
	assert.Equal(t, http.StatusNoContent, do(r, httptest.NewRequest(http.MethodDelete, "/api/image-verifications/"+id.String(), nil)).Code)
	assert.Equal(t, id, images.deleted)
}

func TestTaskStatusOf(t *testing.T) {
	pending := TaskStatusOf(&services.JobStatus{State: services.JobStatePending, Stage: "analyze"})
	assert.Equal(t, TaskStatePending, pending.State)
	assert.Equal(t, TaskStatusRunning, pending.Status)

	done := TaskStatusOf(&services.JobStatus{State: services.JobStateSucceeded, Result: json.RawMessage(`{"verdict":"true"}`)})
	assert.Equal(t, TaskStateSuccess, done.State)
	assert.Equal(t, TaskStatusDone, done.Status)
	assert.JSONEq(t, `{"verdict":"true"}`, string(done.Result))

	failed := TaskStatusOf(&services.JobStatus{State: services.JobStateFailed})
	assert.Equal(t, TaskStateFailure, failed.State)
	assert.Equal(t, TaskStatusError, failed.Status)
	assert.Equal(t, "task failed", failed.Error)
}

func TestTaskStatusRoute(t *testing.T) {
	gin.SetMode(gin.TestMode)
	jobs := &stubJobs{}
	r := gin.New()
	r.GET("/api/task-status/:task_id", NewTaskHandler(jobs).Status)

	assert.Equal(t, http.StatusNotFound, do(r, httptest.NewRequest(http.MethodGet, "/api/task-status/"+uuid.NewString(), nil)).Code)

	jobs.status = &services.JobStatus{State: services.JobStateFailed, Error: "vision unavailable"}
	rec := do(r, httptest.NewRequest(http.MethodGet, "/api/task-status/"+uuid.NewString(), nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"state":"FAILURE","status":"ERREUR","error":"vision unavailable"}`, rec.Body.String())
}

func TestRespondsWithInternalErrorEnvelope(t *testing.T) {
	gin.SetMode(gin.TestMode)
	subs := &stubSubmissions{err: errors.New("db down")}
	r := gin.New()
	r.POST("/api/submissions", NewSubmissionHandler(subs).Create)

	req := httptest.NewRequest(http.MethodPost, "/api/submissions", bytes.NewBufferString(`{"text":"x"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := do(r, req)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "db down")
}
