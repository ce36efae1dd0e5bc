package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initSystemMetrics() {
	r.RunStartTimestamp = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "relations_run_start_timestamp_seconds",
			Help: "Unix time the run started",
		},
	)

	r.RunSuccess = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "relations_run_success",
			Help: "1 if the last run completed, 0 otherwise",
		},
	)

	r.GoRoutines = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "relations_goroutines",
			Help: "Number of goroutines",
		},
	)

	r.MemoryAllocBytes = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "relations_memory_alloc_bytes",
			Help: "Bytes of allocated heap objects",
		},
	)
}
