package observability

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/yungbote/checkia-backend/internal/verification"
)

func TestMetricsNilReceiverIsSafe(t *testing.T) {
	var m *Metrics
	m.ObserveAPI("GET", "/x", "200", time.Millisecond)
	m.ObserveStage(verification.PathText, verification.StageClassify, verification.OutcomeOK, time.Millisecond)
	m.ObserveVerdict(verification.PathText, "true")
	m.ObserveIntake(verification.PathText)
	m.ObserveJob("analyze_submission_text", "succeeded", time.Second)
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	if rec.Code != 503 {
		t.Fatalf("expected 503 from a disabled handler, got %d", rec.Code)
	}
}

func TestObserveStageCountsExternalErrors(t *testing.T) {
	m := NewMetrics()
	m.ObserveStage(verification.PathText, verification.StageRetrieve, verification.OutcomeOK, 10*time.Millisecond)
	m.ObserveStage(verification.PathText, verification.StageRetrieve, verification.OutcomeUnavailable, 10*time.Millisecond)
	m.ObserveStage(verification.PathText, verification.StageRetrieve, verification.OutcomeUnavailable, 10*time.Millisecond)

	got := testutil.ToFloat64(m.clientErrors.WithLabelValues(verification.PathText, verification.StageRetrieve, string(verification.OutcomeUnavailable)))
	if got != 2 {
		t.Fatalf("expected 2 external errors, got %v", got)
	}
}

func TestHandlerExposesDomainMetrics(t *testing.T) {
	m := NewMetrics()
	m.ObserveVerdict(verification.PathAIDetection, "ai_detected")
	m.ObserveVerdict(verification.PathText, "")
	m.ObserveJob("detect_ai_image", "succeeded", 2*time.Second)
	m.ObserveAPI("POST", "/api/submissions", "201", 30*time.Millisecond)
	m.ObserveIntake(verification.PathContent)
	m.ObserveIntake("")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)
	text := string(body)
	for _, want := range []string{
		`checkia_verdicts_total{path="ai_detection",verdict="ai_detected"} 1`,
		`checkia_verdicts_total{path="text",verdict="unknown"} 1`,
		`checkia_jobs_total{job_type="detect_ai_image",status="succeeded"} 1`,
		`checkia_api_requests_total{method="POST",route="/api/submissions",status="201"} 1`,
		`checkia_submissions_total{path="image_content"} 1`,
	} {
		if !strings.Contains(text, want) {
			t.Fatalf("expected %q in exposition", want)
		}
	}
}
