package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initPipelineMetrics() {
	r.RecordsScannedTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "relations_records_scanned_total",
			Help: "Total number of source records read",
		},
		[]string{"category"},
	)

	r.RecordsBuiltTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "relations_records_built_total",
			Help: "Total number of records turned into graph models",
		},
		[]string{"category"},
	)

	r.RecordsSkippedTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "relations_records_skipped_total",
			Help: "Total number of records skipped because a processor failed",
		},
		[]string{"category"},
	)

	r.CategoryDuration = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "relations_category_duration_seconds",
			Help:    "Time spent scanning, building and consolidating one category",
			Buckets: []float64{1, 5, 15, 60, 300, 900, 3600},
		},
		[]string{"category", "status"},
	)

	r.NodesCollected = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "relations_nodes_collected",
			Help: "Number of distinct nodes collected by consolidation",
		},
	)

	r.RelationsCollected = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "relations_relations_collected",
			Help: "Number of distinct relations collected by consolidation",
		},
	)

	r.NodeGroups = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "relations_node_groups",
			Help: "Number of node shape groups",
		},
	)

	r.RelationGroups = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "relations_relation_groups",
			Help: "Number of relation shape groups",
		},
	)

	r.NodesExpandedTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "relations_nodes_expanded_total",
			Help: "Total number of shallow nodes expanded into their own neighborhood",
		},
	)

	r.DuplicatesTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "relations_duplicates_total",
			Help: "Total number of nodes and relations folded into an earlier copy",
		},
		[]string{"kind"},
	)
}
