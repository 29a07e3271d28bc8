// Package metrics provides Prometheus metrics for the fplsquad service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the service.
type Manager struct {
	namespace       string
	latencyBuckets  []float64
	upstreamBuckets []float64
	enabled         bool
	constLabels     map[string]string
	registry        prometheus.Registerer

	// Optimizer metrics
	optimizations        *prometheus.CounterVec
	optimizationDuration prometheus.Histogram
	squadSpend           prometheus.Gauge
	eligibleCandidates   prometheus.Gauge
	relaxations          prometheus.Counter

	// Catalog metrics
	rejectedCandidates prometheus.Counter
	catalogRefresh     *prometheus.CounterVec
	catalogPlayers     prometheus.Gauge

	// Upstream FPL API metrics
	upstreamRequests *prometheus.CounterVec
	upstreamDuration *prometheus.HistogramVec
	breakerState     *prometheus.GaugeVec

	// Ranking store metrics
	rankedPlayers          prometheus.Gauge
	repositoryQueryLatency prometheus.Histogram

	// HTTP metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	errorsByComponent *prometheus.CounterVec
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:       "fplsquad",
		latencyBuckets:  []float64{1, 2, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
		upstreamBuckets: []float64{25, 50, 100, 250, 500, 1000, 2500, 5000, 10000, 20000},
		enabled:         true,
		registry:        prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

func (m *Manager) counterOpts(name, help string) prometheus.CounterOpts {
	return prometheus.CounterOpts{Namespace: m.namespace, Name: name, Help: help, ConstLabels: m.constLabels}
}

func (m *Manager) gaugeOpts(name, help string) prometheus.GaugeOpts {
	return prometheus.GaugeOpts{Namespace: m.namespace, Name: name, Help: help, ConstLabels: m.constLabels}
}

// histogramOpts builds millisecond histogram options over the given buckets.
func (m *Manager) histogramOpts(name, help string, buckets []float64) prometheus.HistogramOpts {
	return prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Name:        name,
		Help:        help,
		Buckets:     buckets,
		ConstLabels: m.constLabels,
	}
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every metric definition
	auto := promauto.With(m.registry)

	m.optimizations = auto.NewCounterVec(
		m.counterOpts("optimizations_total", "Squad optimizations by outcome"),
		[]string{"status"},
	)
	m.optimizationDuration = auto.NewHistogram(
		m.histogramOpts("optimization_duration_milliseconds", "Time to score, optimize and pick the eleven", m.latencyBuckets),
	)
	m.squadSpend = auto.NewGauge(m.gaugeOpts("squad_spend", "Spend of the last successful squad"))
	m.eligibleCandidates = auto.NewGauge(m.gaugeOpts("eligible_candidates", "Candidates passing the availability filter in the last run"))
	m.relaxations = auto.NewCounter(m.counterOpts("availability_relaxations_total", "Retries with a lowered availability threshold"))

	m.rejectedCandidates = auto.NewCounter(m.counterOpts("rejected_candidates_total", "Players rejected at ingestion"))
	m.catalogRefresh = auto.NewCounterVec(
		m.counterOpts("catalog_refresh_total", "Catalog snapshot refreshes by result"),
		[]string{"result"},
	)
	m.catalogPlayers = auto.NewGauge(m.gaugeOpts("catalog_players", "Players in the current catalog snapshot"))

	m.upstreamRequests = auto.NewCounterVec(
		m.counterOpts("upstream_requests_total", "Requests to the FPL API by endpoint and status"),
		[]string{"endpoint", "status"},
	)
	m.upstreamDuration = auto.NewHistogramVec(
		m.histogramOpts("upstream_request_duration_milliseconds", "FPL API request duration", m.upstreamBuckets),
		[]string{"endpoint"},
	)
	m.breakerState = auto.NewGaugeVec(
		m.gaugeOpts("circuit_breaker_state", "Circuit breaker state (0 closed, 1 half-open, 2 open)"),
		[]string{"name"},
	)

	m.rankedPlayers = auto.NewGauge(m.gaugeOpts("ranked_players", "Players held by the ranking store"))
	m.repositoryQueryLatency = auto.NewHistogram(
		m.histogramOpts("repository_query_latency_milliseconds", "Ranking store query latency", m.latencyBuckets),
	)

	m.httpRequests = auto.NewCounterVec(
		m.counterOpts("http_requests_total", "Total number of HTTP requests by endpoint and method"),
		[]string{"endpoint", "method", "status_code"},
	)
	m.httpRequestDuration = auto.NewHistogramVec(
		m.histogramOpts("http_request_duration_milliseconds", "HTTP request duration in milliseconds", m.latencyBuckets),
		[]string{"endpoint", "method", "status_code"},
	)

	m.errorsByComponent = auto.NewCounterVec(
		m.counterOpts("errors_total", "Errors by component and type"),
		[]string{"component", "error_type"},
	)
}

// RecordOptimization counts an optimization run with the given status.
func RecordOptimization(status string) {
	if !globalManager.enabled {
		return
	}
	globalManager.optimizations.WithLabelValues(status).Inc()
}

// RecordOptimizationDuration records a pipeline run in milliseconds.
func RecordOptimizationDuration(ms float64) {
	if !globalManager.enabled {
		return
	}
	globalManager.optimizationDuration.Observe(ms)
}

// UpdateSquadSpend sets the spend of the last squad.
func UpdateSquadSpend(spend float64) {
	if !globalManager.enabled {
		return
	}
	globalManager.squadSpend.Set(spend)
}

// UpdateEligibleCandidates sets the eligible pool size of the last run.
func UpdateEligibleCandidates(n int) {
	if !globalManager.enabled {
		return
	}
	globalManager.eligibleCandidates.Set(float64(n))
}

// RecordRelaxation counts a retry with a lower availability threshold.
func RecordRelaxation() {
	if !globalManager.enabled {
		return
	}
	globalManager.relaxations.Inc()
}

// RecordRejectedCandidates adds n rejected players.
func RecordRejectedCandidates(n int) {
	if !globalManager.enabled || n <= 0 {
		return
	}
	globalManager.rejectedCandidates.Add(float64(n))
}

// RecordCatalogRefresh counts a catalog refresh with result "ok" or "error".
func RecordCatalogRefresh(result string) {
	if !globalManager.enabled {
		return
	}
	globalManager.catalogRefresh.WithLabelValues(result).Inc()
}

// UpdateCatalogPlayers sets the snapshot size.
func UpdateCatalogPlayers(n int) {
	if !globalManager.enabled {
		return
	}
	globalManager.catalogPlayers.Set(float64(n))
}

// RecordUpstreamRequest counts a request to the FPL API and its duration.
func RecordUpstreamRequest(endpoint, status string, ms float64) {
	if !globalManager.enabled {
		return
	}
	globalManager.upstreamRequests.WithLabelValues(endpoint, status).Inc()
	globalManager.upstreamDuration.WithLabelValues(endpoint).Observe(ms)
}

// UpdateBreakerState records the numeric state of a circuit breaker.
func UpdateBreakerState(name string, state int) {
	if !globalManager.enabled {
		return
	}
	globalManager.breakerState.WithLabelValues(name).Set(float64(state))
}

// UpdateRankedPlayers sets the ranking store size.
func UpdateRankedPlayers(n int) {
	if !globalManager.enabled {
		return
	}
	globalManager.rankedPlayers.Set(float64(n))
}

// RecordRepositoryQueryLatency records ranking store query latency in milliseconds.
func RecordRepositoryQueryLatency(ms float64) {
	if !globalManager.enabled {
		return
	}
	globalManager.repositoryQueryLatency.Observe(ms)
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	if !globalManager.enabled {
		return
	}
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration in milliseconds.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	if !globalManager.enabled {
		return
	}
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByComponent records errors by component.
func RecordErrorByComponent(component, errorType string) {
	if !globalManager.enabled {
		return
	}
	globalManager.errorsByComponent.WithLabelValues(component, errorType).Inc()
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
