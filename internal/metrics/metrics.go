package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics is the observability sink for the ingestion core. The registry
// is injected so tests can use an isolated one.
type Metrics struct {
	GapsFound  *prometheus.CounterVec
	GapLatency *prometheus.HistogramVec
}

// New registers the ingestion metrics on the given registerer.
// Parameters:
//   - reg: prometheus registerer; nil uses the default registry.
// Returns:
//   - *Metrics: registered metric handles.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		GapsFound: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "gaps_found_total",
			Help: "Missing trading-day partitions discovered per symbol.",
		}, []string{"symbol"}),
		GapLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "backfill_gap_latency_seconds",
			Help:    "Wall-clock seconds to fetch, write and verify one gap day.",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
		}, []string{"symbol"}),
	}
}
