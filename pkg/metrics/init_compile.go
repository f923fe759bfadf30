package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initCompileMetrics() {
	r.CompilesTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "topoforge_compiles_total",
			Help: "Total number of compilation runs",
		},
		[]string{"status"},
	)

	r.CompileDuration = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "topoforge_compile_duration_seconds",
			Help:    "Compilation latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"status"},
	)

	r.DevicesGenerated = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "topoforge_devices_generated_total",
			Help: "Total device configurations generated, by role",
		},
		[]string{"role"},
	)

	r.BlocksAllocated = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "topoforge_blocks_allocated_total",
			Help: "Total network blocks allocated across all runs",
		},
	)

	r.RoutesGenerated = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "topoforge_routes_generated_total",
			Help: "Total static routes synthesized across all runs",
		},
	)
}
