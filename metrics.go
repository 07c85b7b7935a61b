package loom

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics exposes per-tick scheduler statistics to Prometheus when a
// Runner is built with FlagRecordStats. It is the domain-stack analogue of
// the teacher's own bench/instrumentation hooks, repurposed onto the
// simulation's hot path rather than onto storage benchmarks.
type Metrics struct {
	TickDuration   prometheus.Histogram
	EntitiesTotal  prometheus.Gauge
	ArchetypeCount prometheus.Gauge
	FlushedCmds    prometheus.Counter
}

// NewMetrics builds a Metrics bundle and registers it with reg. Passing
// prometheus.NewRegistry() (rather than the global DefaultRegisterer) keeps
// multiple Runners in the same process from colliding on metric names.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		TickDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "loom",
			Name:      "tick_duration_seconds",
			Help:      "Wall-clock duration of one completed Runner tick.",
			Buckets:   prometheus.DefBuckets,
		}),
		EntitiesTotal: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "loom",
			Name:      "entities_total",
			Help:      "Live entity count as of the end of the last tick.",
		}),
		ArchetypeCount: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "loom",
			Name:      "archetypes_total",
			Help:      "Number of distinct archetypes currently allocated.",
		}),
		FlushedCmds: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "loom",
			Name:      "flushed_commands_total",
			Help:      "Total deferred commands applied across all completed ticks.",
		}),
	}
	reg.MustRegister(m.TickDuration, m.EntitiesTotal, m.ArchetypeCount, m.FlushedCmds)
	return m
}

func (m *Metrics) observeTick(start time.Time, world *World, commandCount int) {
	if m == nil {
		return
	}
	m.TickDuration.Observe(time.Since(start).Seconds())
	m.ArchetypeCount.Set(float64(len(world.archetypes)))
	m.FlushedCmds.Add(float64(commandCount))

	total := 0
	for _, a := range world.archetypes {
		total += a.length()
	}
	m.EntitiesTotal.Set(float64(total))
}
