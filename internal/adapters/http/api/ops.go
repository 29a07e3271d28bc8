package api

import (
	"math"
	"net/http"
	"time"

	"github.com/okian/fplsquad/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// StatsProvider reports service counters for /stats.
type StatsProvider interface {
	GetStats() map[string]interface{}
}

// HealthHandler exposes the metrics registry; a successful scrape doubles as liveness.
type HealthHandler struct {
	metrics http.Handler
}

// NewHealthHandler creates a health handler over the service registry.
func NewHealthHandler() *HealthHandler {
	return &HealthHandler{
		metrics: promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{}),
	}
}

// HandleHealth handles GET /healthz.
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	h.metrics.ServeHTTP(w, r)
}

// StatsHandler serves the service counters plus process uptime.
type StatsHandler struct {
	provider StatsProvider
	started  time.Time
	now      func() time.Time
}

// NewStatsHandler creates a stats handler. Uptime counts from this call.
func NewStatsHandler(provider StatsProvider) *StatsHandler {
	return &StatsHandler{provider: provider, started: time.Now(), now: time.Now}
}

// HandleStats handles GET /stats.
func (h *StatsHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	stats := make(map[string]interface{})
	for k, v := range h.provider.GetStats() {
		stats[k] = v
	}
	stats["uptimeSeconds"] = math.Floor(h.now().Sub(h.started).Seconds())
	writeJSON(w, http.StatusOK, stats)
}
