package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initExportMetrics() {
	r.FilesWrittenTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "relations_export_files_total",
			Help: "Total number of CSV batches written",
		},
		[]string{"kind"},
	)

	r.RowsWrittenTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "relations_export_rows_total",
			Help: "Total number of CSV rows written",
		},
		[]string{"kind"},
	)

	r.DanglingRelationsTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "relations_export_dangling_relations_total",
			Help: "Total number of relations dropped because an endpoint was never collected",
		},
	)

	r.StageDuration = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "relations_stage_duration_seconds",
			Help:    "Duration of the run stages in seconds",
			Buckets: []float64{0.1, 1, 10, 60, 300, 1800, 7200},
		},
		[]string{"stage", "status"},
	)
}
