package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// CartMetrics records the outcome of cart mutations.
type CartMetrics struct {
	duration *prometheus.HistogramVec
	applied  *prometheus.CounterVec
	rollback *prometheus.CounterVec
	noop     *prometheus.CounterVec
}

// NewCartMetrics registers the cart mutation metrics on the provided registerer.
func NewCartMetrics(reg prometheus.Registerer) *CartMetrics {
	if reg == nil {
		return &CartMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "cart_mutation_duration_seconds",
		Help:    "Duration of cart mutations including the gateway round trip.",
		Buckets: prometheus.DefBuckets,
	}, []string{"op"})
	applied := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cart_mutation_applied",
		Help: "Cart mutations confirmed by the gateway.",
	}, []string{"op"})
	rollback := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cart_mutation_rollback",
		Help: "Cart mutations rolled back after a gateway failure.",
	}, []string{"op"})
	noop := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cart_mutation_noop",
		Help: "Cart mutations absorbed without a gateway call.",
	}, []string{"op"})
	reg.MustRegister(duration, applied, rollback, noop)
	return &CartMetrics{
		duration: duration,
		applied:  applied,
		rollback: rollback,
		noop:     noop,
	}
}

// ObserveDuration records the duration for the named mutation.
func (c *CartMetrics) ObserveDuration(op string, duration time.Duration) {
	if c == nil || c.duration == nil {
		return
	}
	c.duration.WithLabelValues(normalizeLabel(op)).Observe(duration.Seconds())
}

// IncApplied increments the confirmed-mutation counter for the named op.
func (c *CartMetrics) IncApplied(op string) {
	if c == nil || c.applied == nil {
		return
	}
	c.applied.WithLabelValues(normalizeLabel(op)).Inc()
}

// IncRollback increments the rollback counter for the named op.
func (c *CartMetrics) IncRollback(op string) {
	if c == nil || c.rollback == nil {
		return
	}
	c.rollback.WithLabelValues(normalizeLabel(op)).Inc()
}

// IncNoop increments the absorbed-mutation counter for the named op.
func (c *CartMetrics) IncNoop(op string) {
	if c == nil || c.noop == nil {
		return
	}
	c.noop.WithLabelValues(normalizeLabel(op)).Inc()
}

func normalizeLabel(op string) string {
	if op == "" {
		return "unknown"
	}
	return op
}
