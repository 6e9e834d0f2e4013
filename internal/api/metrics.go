package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wonny/vantage/backend/internal/brain"
)

// Metrics holds the Prometheus collectors of the service
// ⭐ SSOT: 메트릭 정의는 여기서만
type Metrics struct {
	registry *prometheus.Registry

	runs          *prometheus.CounterVec
	runDuration   prometheus.Histogram
	rankedIssuers prometheus.Gauge
	fetchFailures prometheus.Gauge
	warnings      *prometheus.GaugeVec

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
}

// NewMetrics registers all collectors on a fresh registry
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		runs: f.NewCounterVec(prometheus.CounterOpts{
			Name: "vantage_ranking_runs_total",
			Help: "Ranking runs by outcome.",
		}, []string{"status"}),
		runDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "vantage_ranking_run_duration_seconds",
			Help:    "Duration of successful ranking runs.",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600},
		}),
		rankedIssuers: f.NewGauge(prometheus.GaugeOpts{
			Name: "vantage_ranking_ranked_issuers",
			Help: "Issuers with a composite score in the latest run.",
		}),
		fetchFailures: f.NewGauge(prometheus.GaugeOpts{
			Name: "vantage_ranking_fetch_failures",
			Help: "Issuers whose market data could not be fetched in the latest run.",
		}),
		warnings: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "vantage_ranking_warnings",
			Help: "Missing-data warnings in the latest run by code.",
		}, []string{"code"}),
		httpRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "vantage_http_requests_total",
			Help: "HTTP requests by route and status code.",
		}, []string{"method", "route", "code"}),
		httpDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "vantage_http_request_duration_seconds",
			Help:    "HTTP request latency by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
	}
}

// Handler serves the registry in the Prometheus text format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveRun records the outcome of one ranking run
func (m *Metrics) ObserveRun(snap *brain.Snapshot, err error) {
	switch {
	case errors.Is(err, brain.ErrRunInProgress):
		m.runs.WithLabelValues("skipped").Inc()
		return
	case err != nil:
		m.runs.WithLabelValues("failure").Inc()
		return
	}

	m.runs.WithLabelValues("success").Inc()
	m.runDuration.Observe(snap.Duration.Seconds())
	m.rankedIssuers.Set(float64(snap.Result.RankedCount()))
	m.fetchFailures.Set(float64(snap.Fetch.Failed))

	m.warnings.Reset()
	for _, w := range snap.Result.Warnings {
		m.warnings.WithLabelValues(w.Code).Inc()
	}
}

// Runner is the ranking pipeline
type Runner interface {
	Latest() (*brain.Snapshot, bool)
	Run(ctx context.Context) (*brain.Snapshot, error)
}

// InstrumentedRunner records every run it passes through
type InstrumentedRunner struct {
	Runner
	metrics *Metrics
}

// Instrument wraps a runner so manual and scheduled runs are both observed
func (m *Metrics) Instrument(r Runner) *InstrumentedRunner {
	return &InstrumentedRunner{Runner: r, metrics: m}
}

// Run executes the wrapped run and records it
func (r *InstrumentedRunner) Run(ctx context.Context) (*brain.Snapshot, error) {
	snap, err := r.Runner.Run(ctx)
	r.metrics.ObserveRun(snap, err)
	return snap, err
}

// statusRecorder captures the response code for metrics
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// metricsMiddleware counts requests per route template
func metricsMiddleware(m *Metrics) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(rec, r)

			route := r.URL.Path
			if cur := mux.CurrentRoute(r); cur != nil {
				if tpl, err := cur.GetPathTemplate(); err == nil {
					route = tpl
				}
			}
			m.httpRequests.WithLabelValues(r.Method, route, strconv.Itoa(rec.status)).Inc()
			m.httpDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
		})
	}
}
