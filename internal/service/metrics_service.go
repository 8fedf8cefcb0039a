package service

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels for availability queries.
const (
	QueryOutcomeRooms            = "rooms"
	QueryOutcomeNone             = "none_free"
	QueryOutcomeBuildingNotFound = "building_not_found"
	QueryOutcomeNoRooms          = "no_rooms"
)

// Outcome labels for ingested rows.
const (
	RowOutcomeInserted  = "inserted"
	RowOutcomeDuplicate = "duplicate"
	RowOutcomeSkipped   = "skipped"
	RowOutcomeFailed    = "failed"
)

// MetricsService encapsulates Prometheus instrumentation. A nil
// *MetricsService is valid and records nothing.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	queryTotal      *prometheus.CounterVec
	queryDuration   prometheus.Observer
	cacheLookups    *prometheus.CounterVec
	ingestedRows    *prometheus.CounterVec
}

// NewMetricsService registers core Prometheus collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	queryTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "availability_queries_total",
		Help: "Availability queries by outcome",
	}, []string{"outcome"})

	queryDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "availability_query_duration_seconds",
		Help:    "Time spent evaluating room availability",
		Buckets: prometheus.DefBuckets,
	})

	cacheLookups := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "availability_cache_lookups_total",
		Help: "Availability cache lookups by result",
	}, []string{"result"})

	ingestedRows := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "timetable_rows_total",
		Help: "Timetable rows processed by populate, by outcome",
	}, []string{"outcome"})

	registry.MustRegister(requestDuration, requestTotal, queryTotal, queryDuration, cacheLookups, ingestedRows)

	return &MetricsService{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		queryTotal:      queryTotal,
		queryDuration:   queryDuration,
		cacheLookups:    cacheLookups,
		ingestedRows:    ingestedRows,
	}
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// Registry exposes the underlying registry, mainly for tests.
func (m *MetricsService) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// ObserveHTTPRequest records request metrics.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := strconv.Itoa(status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

// ObserveQuery records one availability evaluation.
func (m *MetricsService) ObserveQuery(outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	m.queryTotal.WithLabelValues(outcome).Inc()
	m.queryDuration.Observe(duration.Seconds())
}

// RecordCacheLookup records a cache hit or miss.
func (m *MetricsService) RecordCacheLookup(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheLookups.WithLabelValues(result).Inc()
}

// RecordRow records the outcome of one ingested row.
func (m *MetricsService) RecordRow(outcome string) {
	if m == nil {
		return
	}
	m.ingestedRows.WithLabelValues(outcome).Inc()
}
