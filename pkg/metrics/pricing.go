package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PricingMetrics instruments the price resolution service.
type PricingMetrics struct {
	quotes    *prometheus.CounterVec
	duration  prometheus.Histogram
	skipped   *prometheus.CounterVec
	ambiguous prometheus.Counter
	cache     *prometheus.CounterVec
}

func NewPricingMetrics(reg prometheus.Registerer) *PricingMetrics {
	if reg == nil {
		return &PricingMetrics{}
	}
	m := &PricingMetrics{
		quotes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pricing_quotes_total",
			Help: "Priced lines by the source that set the final price.",
		}, []string{"source"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "pricing_compute_duration_seconds",
			Help:    "Time to load a pricing snapshot and resolve one line.",
			Buckets: []float64{.001, .0025, .005, .01, .025, .05, .1, .25, .5, 1},
		}),
		skipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pricing_skipped_records_total",
			Help: "Stored rules, tiers and contracts ignored because they failed validation.",
		}, []string{"kind"}),
		ambiguous: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pricing_ambiguous_contracts_total",
			Help: "Computations that found more than one effective contract for a customer and product.",
		}),
		cache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pricing_cache_lookups_total",
			Help: "Snapshot cache lookups by record kind and result.",
		}, []string{"kind", "result"}),
	}
	reg.MustRegister(m.quotes, m.duration, m.skipped, m.ambiguous, m.cache)
	return m
}

func (m *PricingMetrics) ObserveQuote(source string, elapsed time.Duration) {
	if m == nil || m.quotes == nil {
		return
	}
	m.quotes.WithLabelValues(normalizeLabel(source)).Inc()
	m.duration.Observe(elapsed.Seconds())
}

func (m *PricingMetrics) IncSkipped(kind string) {
	if m == nil || m.skipped == nil {
		return
	}
	m.skipped.WithLabelValues(normalizeLabel(kind)).Inc()
}

func (m *PricingMetrics) IncAmbiguousContract() {
	if m == nil || m.ambiguous == nil {
		return
	}
	m.ambiguous.Inc()
}

// Cache lookup results.
const (
	CacheHit   = "hit"
	CacheMiss  = "miss"
	CacheError = "error"
)

func (m *PricingMetrics) IncCacheLookup(kind, result string) {
	if m == nil || m.cache == nil {
		return
	}
	m.cache.WithLabelValues(normalizeLabel(kind), normalizeLabel(result)).Inc()
}
