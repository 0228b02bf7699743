package observability

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the service counters on a private registry so that several
// instances can coexist in one process.
type Metrics struct {
	registry        *prometheus.Registry
	requestCount    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	errorCount      *prometheus.CounterVec
	queryCount      *prometheus.CounterVec
	cacheLookups    *prometheus.CounterVec
	staleResponses  prometheus.Counter
	dashboardEvents *prometheus.CounterVec
}

// NewMetrics initializes metrics storage.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Metrics{
		registry: reg,
		requestCount: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests by route, method and status.",
		}, []string{"path", "method", "status"}),
		requestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"path", "method"}),
		errorCount: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "http_errors_total",
			Help: "HTTP error responses by route, method and error code.",
		}, []string{"path", "method", "code"}),
		queryCount: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "ticket_queries_total",
			Help: "Ticket retrievals by operation and outcome.",
		}, []string{"operation", "outcome"}),
		cacheLookups: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "ticket_cache_lookups_total",
			Help: "Ticket page cache lookups by cache layer and result.",
		}, []string{"layer", "result"}),
		staleResponses: factory.NewCounter(prometheus.CounterOpts{
			Name: "dashboard_stale_responses_dropped_total",
			Help: "Retrieval results discarded because the dashboard moved on.",
		}),
		dashboardEvents: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "dashboard_events_total",
			Help: "Dashboard events by type.",
		}, []string{"type"}),
	}
}

// Registry exposes the underlying registry for the /metrics handler.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// RecordRequest increments counters for requests.
func (m *Metrics) RecordRequest(path, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.requestCount.WithLabelValues(path, method, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(path, method).Observe(duration.Seconds())
}

// RecordError increments error counters.
func (m *Metrics) RecordError(path, method, code string) {
	if m == nil {
		return
	}
	m.errorCount.WithLabelValues(path, method, code).Inc()
}

// RecordQuery counts a ticket retrieval; outcome is "ok" or an error code.
func (m *Metrics) RecordQuery(operation, outcome string) {
	if m == nil {
		return
	}
	m.queryCount.WithLabelValues(operation, outcome).Inc()
}

// RecordCacheLookup counts a cache hit or miss for layer.
func (m *Metrics) RecordCacheLookup(layer string, hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheLookups.WithLabelValues(layer, result).Inc()
}

// RecordStaleResponse counts a dropped retrieval result.
func (m *Metrics) RecordStaleResponse() {
	if m == nil {
		return
	}
	m.staleResponses.Inc()
}

// RecordDashboardEvent counts a dashboard event by type.
func (m *Metrics) RecordDashboardEvent(eventType string) {
	if m == nil {
		return
	}
	m.dashboardEvents.WithLabelValues(eventType).Inc()
}
