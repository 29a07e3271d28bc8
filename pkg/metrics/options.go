package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Option applies a configuration option to the Manager.
type Option func(*Manager)

// WithNamespace sets the metric name prefix. Empty keeps "fplsquad".
func WithNamespace(namespace string) Option {
	return func(m *Manager) {
		if namespace != "" {
			m.namespace = namespace
		}
	}
}

// WithLatencyBuckets sets the millisecond buckets of the in-process histograms
// (optimizer runs, store queries, HTTP handlers).
func WithLatencyBuckets(buckets []float64) Option {
	return func(m *Manager) {
		if len(buckets) > 0 {
			m.latencyBuckets = buckets
		}
	}
}

// WithUpstreamBuckets sets the millisecond buckets of the FPL API histogram. Upstream
// calls run to the client timeout, far above handler latencies.
func WithUpstreamBuckets(buckets []float64) Option {
	return func(m *Manager) {
		if len(buckets) > 0 {
			m.upstreamBuckets = buckets
		}
	}
}

// WithConstLabels attaches labels such as the deployment to every series.
func WithConstLabels(labels map[string]string) Option {
	return func(m *Manager) {
		if len(labels) > 0 {
			m.constLabels = labels
		}
	}
}

// WithRegistry registers the collectors on reg instead of the default registerer.
func WithRegistry(reg prometheus.Registerer) Option {
	return func(m *Manager) {
		if reg != nil {
			m.registry = reg
		}
	}
}

// Disabled turns every Record/Update helper into a no-op. Collectors are still
// registered so scrapes keep a stable shape.
func Disabled() Option {
	return func(m *Manager) {
		m.enabled = false
	}
}
