package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder exposes Prometheus counters for provider traffic, cache behavior
// and enrichment latency.
type Recorder struct {
	providerRequests *prometheus.CounterVec
	providerFallback *prometheus.CounterVec
	cacheOps         *prometheus.CounterVec
	enrichSkipped    *prometheus.CounterVec
	recommendations  *prometheus.CounterVec
	latency          *prometheus.HistogramVec
}

// New creates a Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		providerRequests: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "earnpull_provider_requests_total",
				Help: "Provider API calls by provider and outcome",
			},
			[]string{"provider", "outcome"},
		),
		providerFallback: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "earnpull_provider_fallbacks_total",
				Help: "Fallbacks from one provider to the next",
			},
			[]string{"from", "to"},
		),
		cacheOps: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "earnpull_cache_ops_total",
				Help: "Cache hits and misses by purpose",
			},
			[]string{"purpose", "result"},
		),
		enrichSkipped: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "earnpull_enrich_skipped_total",
				Help: "Tickers dropped during enrichment, by reason",
			},
			[]string{"reason"},
		),
		recommendations: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "earnpull_recommendations_total",
				Help: "Strategy recommendations by strategy id",
			},
			[]string{"strategy"},
		),
		latency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "earnpull_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// RecordProviderRequest records one provider call outcome
// (ok, auth, rate_limited, unavailable, malformed, empty).
func (r *Recorder) RecordProviderRequest(provider, outcome string) {
	r.providerRequests.WithLabelValues(provider, outcome).Inc()
}

// RecordFallback records a provider fallback transition.
func (r *Recorder) RecordFallback(from, to string) {
	r.providerFallback.WithLabelValues(from, to).Inc()
}

// RecordCache records a cache hit or miss for a purpose.
func (r *Recorder) RecordCache(purpose, result string) {
	r.cacheOps.WithLabelValues(purpose, result).Inc()
}

// RecordEnrichSkipped records a ticker dropped during enrichment.
func (r *Recorder) RecordEnrichSkipped(reason string) {
	r.enrichSkipped.WithLabelValues(reason).Inc()
}

// RecordRecommendation records a computed recommendation.
func (r *Recorder) RecordRecommendation(strategy string) {
	r.recommendations.WithLabelValues(strategy).Inc()
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}
