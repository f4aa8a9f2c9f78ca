// Package dcachemetrics provides a Prometheus implementation
// of [github.com/gordian-engine/dstream/dcache.Metrics].
package dcachemetrics

import (
	"github.com/gordian-engine/dstream/dcache"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors for one or more caches.
type Metrics struct {
	AttachesTotal     prometheus.Counter
	ReplayedTotal     prometheus.Counter
	GenerationsTotal  *prometheus.CounterVec
	ValuesTotal       prometheus.Counter
	UpstreamErrors    prometheus.Counter
	DroppedConsumers  prometheus.Counter
	ReplayBatchValues prometheus.Histogram
}

var _ dcache.Metrics = (*Metrics)(nil)

// New creates the collectors under namespace and registers them with reg.
// A nil reg registers with [prometheus.DefaultRegisterer].
//
// Collectors are labeled with cache, so that several caches
// can report through distinct Metrics values on one registry.
func New(reg prometheus.Registerer, namespace, cache string) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg = prometheus.WrapRegistererWith(prometheus.Labels{"cache": cache}, reg)
	f := promauto.With(reg)

	return &Metrics{
		AttachesTotal: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "dcache",
			Name:      "attaches_total",
			Help:      "Total number of consumers attached to the cache",
		}),
		ReplayedTotal: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "dcache",
			Name:      "replayed_values_total",
			Help:      "Total number of buffered values replayed to consumers",
		}),
		GenerationsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "dcache",
			Name:      "generations_total",
			Help:      "Total number of upstream subscriptions, by reason",
		}, []string{"reason"}),
		ValuesTotal: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "dcache",
			Name:      "upstream_values_total",
			Help:      "Total number of values received from upstream",
		}),
		UpstreamErrors: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "dcache",
			Name:      "upstream_errors_total",
			Help:      "Total number of failed generations",
		}),
		DroppedConsumers: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "dcache",
			Name:      "dropped_consumers_total",
			Help:      "Total number of pending consumers released by a superseded generation",
		}),
		ReplayBatchValues: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "dcache",
			Name:      "replay_batch_values",
			Help:      "Number of values replayed to a single consumer",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 8),
		}),
	}
}

func (m *Metrics) Attached() { m.AttachesTotal.Inc() }

func (m *Metrics) Replayed(n int) {
	m.ReplayedTotal.Add(float64(n))
	m.ReplayBatchValues.Observe(float64(n))
}

func (m *Metrics) GenerationStarted(reason string) {
	m.GenerationsTotal.WithLabelValues(reason).Inc()
}

func (m *Metrics) ValueCached() { m.ValuesTotal.Inc() }

func (m *Metrics) UpstreamError() { m.UpstreamErrors.Inc() }

func (m *Metrics) Dropped(n int) { m.DroppedConsumers.Add(float64(n)) }
