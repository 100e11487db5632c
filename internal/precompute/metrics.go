package precompute

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "polycubes"

// Metrics are the generator's Prometheus collectors.
type Metrics struct {
	BaseCubes     prometheus.Counter
	Candidates    prometheus.Counter
	ActiveWorkers prometheus.Gauge
	LevelCubes    *prometheus.GaugeVec
	LevelSeconds  *prometheus.GaugeVec
	CacheLookups  *prometheus.CounterVec
}

// NewMetrics registers the generator collectors with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		BaseCubes: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "base_cubes_expanded_total",
			Help:      "Base cubes grown into the next order.",
		}),
		Candidates: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "candidates_canonicalized_total",
			Help:      "Candidate cubes reduced to canonical form.",
		}),
		ActiveWorkers: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_workers",
			Help:      "Expansion workers currently running.",
		}),
		LevelCubes: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "level_cubes",
			Help:      "Distinct polycubes found per order.",
		}, []string{"order"}),
		LevelSeconds: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "level_duration_seconds",
			Help:      "Time spent producing each order.",
		}, []string{"order", "source"}),
		CacheLookups: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_lookups_total",
			Help:      "Level cache reads by result.",
		}, []string{"result"}),
	}
}
