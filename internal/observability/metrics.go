package observability

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	types "github.com/yungbote/checkia-backend/internal/domain"
	"github.com/yungbote/checkia-backend/internal/platform/envutil"
	"github.com/yungbote/checkia-backend/internal/platform/logger"
	"github.com/yungbote/checkia-backend/internal/verification"
)

const namespace = "checkia"

// Metrics owns a private registry. Every method is safe on a nil receiver so
// callers can pass a disabled Metrics straight through.
type Metrics struct {
	registry *prometheus.Registry

	apiRequests *prometheus.CounterVec
	apiLatency  *prometheus.HistogramVec
	apiInflight prometheus.Gauge

	intake        *prometheus.CounterVec
	stageDuration *prometheus.HistogramVec
	verdicts      *prometheus.CounterVec
	clientErrors  *prometheus.CounterVec

	jobOutcomes *prometheus.CounterVec
	jobDuration *prometheus.HistogramVec
	queueDepth  *prometheus.GaugeVec

	redisUp prometheus.Gauge
}

var (
	initOnce sync.Once
	instance *Metrics
)

func Enabled() bool {
	return envutil.Bool("METRICS_ENABLED", false)
}

func Current() *Metrics {
	return instance
}

// Init builds the process-wide Metrics when METRICS_ENABLED is set.
func Init(log *logger.Logger) *Metrics {
	if !Enabled() {
		return nil
	}
	initOnce.Do(func() {
		instance = NewMetrics()
		if log != nil {
			log.Info("metrics enabled", "path", "/metrics")
		}
	})
	return instance
}

func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		apiRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "api_requests_total",
			Help:      "API requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		apiLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "api_request_duration_seconds",
			Help:      "API request latency by method, route and status.",
			Buckets:   []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		}, []string{"method", "route", "status"}),
		apiInflight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "api_inflight_requests",
			Help:      "In-flight API requests.",
		}),
		stageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "pipeline_stage_duration_seconds",
			Help:      "Pipeline stage duration by path, stage and outcome.",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 12),
		}, []string{"path", "stage", "outcome"}),
		intake: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "submissions_total",
			Help:      "Accepted submissions by pipeline path.",
		}, []string{"path"}),
		verdicts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "verdicts_total",
			Help:      "Final verdicts by path.",
		}, []string{"path", "verdict"}),
		clientErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "external_errors_total",
			Help:      "External capability failures by path and stage.",
		}, []string{"path", "stage", "outcome"}),
		jobOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "jobs_total",
			Help:      "Job attempts by type and resulting status.",
		}, []string{"job_type", "status"}),
		jobDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "job_duration_seconds",
			Help:      "Job attempt duration by type.",
			Buckets:   prometheus.ExponentialBuckets(0.1, 2, 12),
		}, []string{"job_type"}),
		queueDepth: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "job_queue_depth",
			Help:      "job_run rows by status.",
		}, []string{"status"}),
		redisUp: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "redis_up",
			Help:      "1 when the last redis ping succeeded.",
		}),
	}
	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.apiRequests, m.apiLatency, m.apiInflight,
		m.intake, m.stageDuration, m.verdicts, m.clientErrors,
		m.jobOutcomes, m.jobDuration, m.queueDepth,
		m.redisUp,
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) ObserveAPI(method, route, status string, dur time.Duration) {
	if m == nil {
		return
	}
	m.apiRequests.WithLabelValues(method, route, status).Inc()
	m.apiLatency.WithLabelValues(method, route, status).Observe(dur.Seconds())
}

func (m *Metrics) ApiInflightInc() {
	if m == nil {
		return
	}
	m.apiInflight.Inc()
}

func (m *Metrics) ApiInflightDec() {
	if m == nil {
		return
	}
	m.apiInflight.Dec()
}

// ObserveIntake counts a submission accepted for the given pipeline path.
func (m *Metrics) ObserveIntake(path string) {
	if m == nil || path == "" {
		return
	}
	m.intake.WithLabelValues(path).Inc()
}

// ObserveStage records a pipeline stage. Non-ok outcomes also count as an
// external error for the stage.
func (m *Metrics) ObserveStage(path, stage string, outcome verification.Outcome, d time.Duration) {
	if m == nil {
		return
	}
	m.stageDuration.WithLabelValues(path, stage, string(outcome)).Observe(d.Seconds())
	if outcome != verification.OutcomeOK {
		m.clientErrors.WithLabelValues(path, stage, string(outcome)).Inc()
	}
}

func (m *Metrics) ObserveVerdict(path, verdict string) {
	if m == nil {
		return
	}
	if strings.TrimSpace(verdict) == "" {
		verdict = "unknown"
	}
	m.verdicts.WithLabelValues(path, verdict).Inc()
}

func (m *Metrics) ObserveJob(jobType, status string, d time.Duration) {
	if m == nil {
		return
	}
	m.jobOutcomes.WithLabelValues(jobType, status).Inc()
	m.jobDuration.WithLabelValues(jobType).Observe(d.Seconds())
}

// StartPostgresCollector exports database/sql pool stats.
func (m *Metrics) StartPostgresCollector(log *logger.Logger, db *gorm.DB) {
	if m == nil || db == nil {
		return
	}
	sqlDB, err := db.DB()
	if err != nil {
		if log != nil {
			log.Warn("metrics: postgres stats unavailable", "error", err)
		}
		return
	}
	if err := m.registry.Register(collectors.NewDBStatsCollector(sqlDB, "checkia")); err != nil && log != nil {
		log.Warn("metrics: postgres collector not registered", "error", err)
	}
}

func (m *Metrics) StartRedisCollector(ctx context.Context, log *logger.Logger, rdb *redis.Client) {
	if m == nil || rdb == nil {
		return
	}
	go func() {
		ticker := time.NewTicker(scrapeInterval())
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := rdb.Ping(ctx).Err(); err != nil {
					m.redisUp.Set(0)
					if log != nil {
						log.Warn("metrics: redis ping failed", "error", err)
					}
					continue
				}
				m.redisUp.Set(1)
			}
		}
	}()
}

func (m *Metrics) StartJobQueueCollector(ctx context.Context, log *logger.Logger, db *gorm.DB) {
	if m == nil || db == nil {
		return
	}
	go func() {
		ticker := time.NewTicker(scrapeInterval())
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := m.CollectQueueDepth(ctx, db); err != nil && log != nil {
					log.Warn("metrics: job queue depth query failed", "error", err)
				}
			}
		}
	}()
}

func (m *Metrics) CollectQueueDepth(ctx context.Context, db *gorm.DB) error {
	var rows []struct {
		Status string
		Count  int64
	}
	if err := db.WithContext(ctx).
		Model(&types.JobRun{}).
		Select("status, count(*) as count").
		Group("status").
		Scan(&rows).Error; err != nil {
		return err
	}
	for _, s := range []string{types.JobStatusQueued, types.JobStatusRunning, types.JobStatusSucceeded, types.JobStatusFailed, types.JobStatusCanceled} {
		m.queueDepth.WithLabelValues(s).Set(0)
	}
	for _, row := range rows {
		status := strings.TrimSpace(row.Status)
		if status == "" {
			status = "unknown"
		}
		m.queueDepth.WithLabelValues(status).Set(float64(row.Count))
	}
	return nil
}

func scrapeInterval() time.Duration {
	d := envutil.Seconds("METRICS_SCRAPE_INTERVAL_SECONDS", 10)
	if d <= 0 {
		return 10 * time.Second
	}
	return d
}
