package observability

import (
	"context"
	"io"
	"net/http"
	"strconv"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/yungbote/codemaster-backend/internal/platform/logger"
)

const metricsPrefix = "cm_"

var (
	latencyBuckets    = []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30}
	completionBuckets = []float64{0.5, 1, 2, 5, 10, 20, 30, 60, 120}
	runBuckets        = []float64{10, 30, 60, 120, 300, 600, 1200}
)

// Metrics is safe for concurrent use. A nil *Metrics ignores every call.
type Metrics struct {
	apiRequests *CounterVec
	apiLatency  *HistogramVec
	apiInflight *GaugeVec

	llmRequests *CounterVec
	llmLatency  *HistogramVec

	generationRuns     *CounterVec
	generationDuration *HistogramVec
	generationSteps    *CounterVec
	generationStepTime *HistogramVec

	dependencyUp *GaugeVec
}

func NewMetrics() *Metrics {
	return &Metrics{
		apiRequests: NewCounterVec(metricsPrefix+"api_requests_total", "API requests by method/route/status.", []string{"method", "route", "status"}),
		apiLatency:  NewHistogramVec(metricsPrefix+"api_request_duration_seconds", "API request latency in seconds.", []string{"method", "route"}, latencyBuckets),
		apiInflight: NewGaugeVec(metricsPrefix+"api_inflight_requests", "In-flight API requests.", nil),

		llmRequests: NewCounterVec(metricsPrefix+"llm_requests_total", "Completion attempts by provider/status.", []string{"provider", "status"}),
		llmLatency:  NewHistogramVec(metricsPrefix+"llm_request_duration_seconds", "Completion attempt latency in seconds.", []string{"provider"}, completionBuckets),

		generationRuns:     NewCounterVec(metricsPrefix+"generation_runs_total", "Generation runs by kind/status.", []string{"kind", "status"}),
		generationDuration: NewHistogramVec(metricsPrefix+"generation_run_duration_seconds", "Generation run duration in seconds.", []string{"kind"}, runBuckets),
		generationSteps:    NewCounterVec(metricsPrefix+"generation_steps_total", "Generation steps by prompt/status.", []string{"step", "status"}),
		generationStepTime: NewHistogramVec(metricsPrefix+"generation_step_duration_seconds", "Generation step duration in seconds.", []string{"step"}, completionBuckets),

		dependencyUp: NewGaugeVec(metricsPrefix+"dependency_up", "1 when the dependency answered its last probe.", []string{"dependency"}),
	}
}

func (m *Metrics) WriteHTTP(w http.ResponseWriter, _ *http.Request) {
	if m == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	_ = m.WritePrometheus(w)
}

func (m *Metrics) WritePrometheus(w io.Writer) error {
	if m == nil {
		return nil
	}
	writers := []interface{ WritePrometheus(io.Writer) error }{
		m.apiRequests, m.apiLatency, m.apiInflight,
		m.llmRequests, m.llmLatency,
		m.generationRuns, m.generationDuration, m.generationSteps, m.generationStepTime,
		m.dependencyUp,
	}
	for _, mw := range writers {
		if err := mw.WritePrometheus(w); err != nil {
			return err
		}
	}
	return nil
}

func (m *Metrics) ObserveAPI(method, route string, status int, dur time.Duration) {
	if m == nil {
		return
	}
	if route == "" {
		route = "unknown"
	}
	m.apiRequests.Inc(method, route, strconv.Itoa(status))
	m.apiLatency.Observe(dur.Seconds(), method, route)
}

func (m *Metrics) APIInflight(delta float64) {
	if m == nil {
		return
	}
	m.apiInflight.Add(delta)
}

func (m *Metrics) ObserveLLMRequest(provider, status string, dur time.Duration) {
	if m == nil {
		return
	}
	m.llmRequests.Inc(provider, status)
	m.llmLatency.Observe(dur.Seconds(), provider)
}

func (m *Metrics) ObserveGenerationRun(kind, status string, dur time.Duration) {
	if m == nil {
		return
	}
	m.generationRuns.Inc(kind, status)
	m.generationDuration.Observe(dur.Seconds(), kind)
}

func (m *Metrics) ObserveGenerationStep(step, status string, dur time.Duration) {
	if m == nil {
		return
	}
	m.generationSteps.Inc(step, status)
	m.generationStepTime.Observe(dur.Seconds(), step)
}

// StartDependencyProbe pings the database and, when set, redis every interval
// until ctx ends.
func (m *Metrics) StartDependencyProbe(ctx context.Context, log *logger.Logger, db *gorm.DB, rdb *goredis.Client, interval time.Duration) {
	if m == nil || db == nil {
		return
	}
	if interval <= 0 {
		interval = 15 * time.Second
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			m.probe(ctx, log, db, rdb)
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}()
}

func (m *Metrics) probe(ctx context.Context, log *logger.Logger, db *gorm.DB, rdb *goredis.Client) {
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	up := 0.0
	if sqlDB, err := db.DB(); err == nil && sqlDB.PingContext(pingCtx) == nil {
		up = 1
	}
	m.dependencyUp.Set(up, "database")
	if up == 0 && log != nil && ctx.Err() == nil {
		log.Warn("database probe failed")
	}
	if rdb == nil {
		return
	}
	up = 0
	if rdb.Ping(pingCtx).Err() == nil {
		up = 1
	}
	m.dependencyUp.Set(up, "redis")
}
