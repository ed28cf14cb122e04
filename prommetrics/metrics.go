// Package prommetrics records mutationq queue telemetry as Prometheus metrics.
package prommetrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/velmie/mutationq"
)

const defaultNamespace = "mutationq"

// Metrics implements mutationq.Metrics with counters labelled by operation kind.
type Metrics struct {
	drainDuration prometheus.Histogram
	enqueued      *prometheus.CounterVec
	replayed      *prometheus.CounterVec
	failed        *prometheus.CounterVec
	pending       prometheus.Gauge
}

var _ mutationq.Metrics = (*Metrics)(nil)

// New registers the queue metrics on reg under namespace. An empty namespace uses "mutationq".
func New(reg prometheus.Registerer, namespace string) *Metrics {
	if namespace == "" {
		namespace = defaultNamespace
	}
	factory := promauto.With(reg)

	return &Metrics{
		drainDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "drain_duration_seconds",
			Help:      "Duration of a drain pass in seconds",
			Buckets:   prometheus.DefBuckets,
		}),
		enqueued: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "enqueued_total",
			Help:      "Mutations captured into the queue",
		}, []string{"kind"}),
		replayed: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "replayed_total",
			Help:      "Entries replayed and removed from the queue",
		}, []string{"kind"}),
		failed: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "replay_failures_total",
			Help:      "Replay failures that halted a drain",
		}, []string{"kind"}),
		pending: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pending_entries",
			Help:      "Entries waiting to be replayed",
		}),
	}
}

// ObserveDrainDuration implements mutationq.Metrics.
func (m *Metrics) ObserveDrainDuration(duration time.Duration) {
	m.drainDuration.Observe(duration.Seconds())
}

// AddEnqueued implements mutationq.Metrics.
func (m *Metrics) AddEnqueued(kind mutationq.Kind) {
	m.enqueued.WithLabelValues(kind.String()).Inc()
}

// AddReplayed implements mutationq.Metrics.
func (m *Metrics) AddReplayed(kind mutationq.Kind) {
	m.replayed.WithLabelValues(kind.String()).Inc()
}

// AddFailed implements mutationq.Metrics.
func (m *Metrics) AddFailed(kind mutationq.Kind) {
	m.failed.WithLabelValues(kind.String()).Inc()
}

// SetPending implements mutationq.Metrics.
func (m *Metrics) SetPending(count int) {
	m.pending.Set(float64(count))
}
