package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder exposes the orchestration engine's counters to Prometheus for the
// diagnostics surface.
type Recorder struct {
	attempts     *prometheus.CounterVec
	successes    *prometheus.CounterVec
	failures     *prometheus.CounterVec
	circuitOpens *prometheus.CounterVec
	cacheHits    *prometheus.CounterVec
	cacheMisses  *prometheus.CounterVec
	fetchLatency *prometheus.HistogramVec
}

// New registers the engine's metrics with reg (nil uses the default
// registerer).
func New(reg prometheus.Registerer) *Recorder {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	return &Recorder{
		attempts: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "coinboard_resource_attempts_total",
				Help: "Total call attempts per resource",
			},
			[]string{"resource"},
		),
		successes: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "coinboard_resource_successes_total",
				Help: "Total successful calls per resource",
			},
			[]string{"resource"},
		),
		failures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "coinboard_resource_failures_total",
				Help: "Total failed calls per resource, by failure kind",
			},
			[]string{"resource", "kind"},
		),
		circuitOpens: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "coinboard_circuit_open_total",
				Help: "Circuit breaker open events per resource",
			},
			[]string{"resource"},
		),
		cacheHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "coinboard_cache_hits_total",
				Help: "Cache hits per category",
			},
			[]string{"category"},
		),
		cacheMisses: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "coinboard_cache_misses_total",
				Help: "Cache misses per category",
			},
			[]string{"category"},
		),
		fetchLatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "coinboard_fetch_duration_seconds",
				Help:    "End-to-end fetch duration per category",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"category"},
		),
	}
}

func (r *Recorder) RecordAttempt(resource string) {
	r.attempts.WithLabelValues(resource).Inc()
}

func (r *Recorder) RecordSuccess(resource string) {
	r.successes.WithLabelValues(resource).Inc()
}

func (r *Recorder) RecordFailure(resource, kind string) {
	r.failures.WithLabelValues(resource, kind).Inc()
}

func (r *Recorder) RecordCircuitOpen(resource string) {
	r.circuitOpens.WithLabelValues(resource).Inc()
}

func (r *Recorder) RecordCacheHit(category string) {
	r.cacheHits.WithLabelValues(category).Inc()
}

func (r *Recorder) RecordCacheMiss(category string) {
	r.cacheMisses.WithLabelValues(category).Inc()
}

func (r *Recorder) RecordFetchLatency(category string, seconds float64) {
	r.fetchLatency.WithLabelValues(category).Observe(seconds)
}
