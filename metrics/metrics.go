/*
Package metrics exposes Prometheus metrics for the overtime service.

PURPOSE:
  Counts and times report calculations (HTTP, stateless and scheduled) and
  HTTP traffic. Every Manager owns its registry so tests and multiple
  servers in one process never collide on registration.

METRICS (namespace "overtime", subsystem "engine" by default):
  reports_total{source}                    Reports calculated
  report_duration_milliseconds{source}     Calculation latency
  report_users                             Users in the last report
  report_entries                           Entries in the last report
  report_errors_total{source}              Loads or saves that failed
  http_requests_total{route,method,status}
  http_request_duration_milliseconds{route,method,status}

SEE ALSO:
  - api/server.go: Middleware and /metrics route
  - api/scheduler.go: Scheduled reports
*/
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Manager holds the registered collectors.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         *prometheus.Registry

	reports        *prometheus.CounterVec
	reportDuration *prometheus.HistogramVec
	reportUsers    prometheus.Gauge
	reportEntries  prometheus.Gauge
	reportErrors   *prometheus.CounterVec

	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

// Option applies a configuration option to the Manager.
type Option func(*Manager)

// WithNamespace sets the namespace for all metrics.
func WithNamespace(namespace string) Option {
	return func(m *Manager) {
		if namespace != "" {
			m.namespace = namespace
		}
	}
}

// WithSubsystem sets the subsystem for all metrics.
func WithSubsystem(subsystem string) Option {
	return func(m *Manager) {
		if subsystem != "" {
			m.subsystem = subsystem
		}
	}
}

// WithHistogramBuckets sets custom buckets for latency histograms.
func WithHistogramBuckets(buckets []float64) Option {
	return func(m *Manager) {
		if len(buckets) > 0 {
			m.histogramBuckets = buckets
		}
	}
}

// WithRegistry sets the registry collectors are registered on.
func WithRegistry(registry *prometheus.Registry) Option {
	return func(m *Manager) {
		if registry != nil {
			m.registry = registry
		}
	}
}

// NewManager creates a Manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "overtime",
		subsystem:        "engine",
		histogramBuckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500},
		registry:         prometheus.NewRegistry(),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.reports = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "reports_total",
		Help:      "Total number of overtime reports calculated",
	}, []string{"source"})

	m.reportDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "report_duration_milliseconds",
		Help:      "Report calculation latency in milliseconds",
		Buckets:   m.histogramBuckets,
	}, []string{"source"})

	m.reportUsers = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "report_users",
		Help:      "Number of users in the last calculated report",
	})

	m.reportEntries = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "report_entries",
		Help:      "Number of entries in the last calculated report",
	})

	m.reportErrors = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "report_errors_total",
		Help:      "Total number of report loads or saves that failed",
	}, []string{"source"})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests by route, method and status",
	}, []string{"route", "method", "status"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_request_duration_milliseconds",
		Help:      "HTTP request duration in milliseconds",
		Buckets:   m.histogramBuckets,
	}, []string{"route", "method", "status"})
}

// =============================================================================
// Recording
// =============================================================================

// RecordReport records one calculated report.
func (m *Manager) RecordReport(source string, users, entries int, elapsed time.Duration) {
	m.reports.WithLabelValues(source).Inc()
	m.reportDuration.WithLabelValues(source).Observe(milliseconds(elapsed))
	m.reportUsers.Set(float64(users))
	m.reportEntries.Set(float64(entries))
}

// RecordReportError records a failed report load or save.
func (m *Manager) RecordReportError(source string) {
	m.reportErrors.WithLabelValues(source).Inc()
}

// RecordHTTPRequest records one served request.
func (m *Manager) RecordHTTPRequest(route, method string, status int, elapsed time.Duration) {
	code := strconv.Itoa(status)
	m.httpRequests.WithLabelValues(route, method, code).Inc()
	m.httpRequestDuration.WithLabelValues(route, method, code).Observe(milliseconds(elapsed))
}

// Registry returns the registry collectors are registered on.
func (m *Manager) Registry() *prometheus.Registry {
	return m.registry
}

// =============================================================================
// HTTP
// =============================================================================

// Handler serves the registry in the Prometheus text format.
func (m *Manager) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Middleware records every request under its chi route pattern, so
// /api/holidays/{id} is one series no matter how many IDs are deleted.
func (m *Manager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		m.RecordHTTPRequest(route, r.Method, status, time.Since(start))
	})
}

func milliseconds(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
