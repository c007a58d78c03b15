// Package observability provides Prometheus metrics for the dashboard API.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Outcome labels for upstream request metrics.
const (
	OutcomeSuccess     = "success"
	OutcomeUnavailable = "upstream_unavailable"
	OutcomeInvalid     = "invalid_symbol"
	OutcomeRateLimited = "rate_limited"
)

// Fallback kind labels.
const (
	FallbackStale     = "stale"
	FallbackSynthetic = "synthetic"
)

// Metrics holds the Prometheus collectors for the fetch path. Construct one
// per process (or per test) against its own Registerer.
type Metrics struct {
	CacheHits        prometheus.Counter
	CacheMisses      prometheus.Counter
	CacheKeys        prometheus.Gauge
	UpstreamRequests *prometheus.CounterVec
	Fallbacks        *prometheus.CounterVec
}

// NewMetrics creates and registers the collectors on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		CacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "findash_cache_hits_total",
			Help: "Number of cache lookups served from a fresh entry.",
		}),
		CacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "findash_cache_misses_total",
			Help: "Number of cache lookups that missed or hit an expired entry.",
		}),
		CacheKeys: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "findash_cache_keys",
			Help: "Current number of resident cache keys.",
		}),
		UpstreamRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "findash_upstream_requests_total",
			Help: "Upstream provider calls by provider and outcome.",
		}, []string{"provider", "outcome"}),
		Fallbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "findash_fallback_total",
			Help: "Degraded responses served, by fallback kind.",
		}, []string{"kind"}),
	}

	reg.MustRegister(m.CacheHits, m.CacheMisses, m.CacheKeys, m.UpstreamRequests, m.Fallbacks)
	return m
}

// NewNopMetrics creates unregistered collectors, useful in tests that do
// not assert on metrics.
func NewNopMetrics() *Metrics {
	return NewMetrics(prometheus.NewRegistry())
}
