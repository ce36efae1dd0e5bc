package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Registry holds all metrics of a migration run
type Registry struct {
	// Source and build metrics
	RecordsScannedTotal *prometheus.CounterVec
	RecordsBuiltTotal   *prometheus.CounterVec
	RecordsSkippedTotal *prometheus.CounterVec
	CategoryDuration    *prometheus.HistogramVec

	// Consolidation metrics
	NodesCollected     prometheus.Gauge
	RelationsCollected prometheus.Gauge
	NodeGroups         prometheus.Gauge
	RelationGroups     prometheus.Gauge
	NodesExpandedTotal prometheus.Counter
	DuplicatesTotal    *prometheus.CounterVec

	// Export metrics
	FilesWrittenTotal      *prometheus.CounterVec
	RowsWrittenTotal       *prometheus.CounterVec
	DanglingRelationsTotal prometheus.Counter
	StageDuration          *prometheus.HistogramVec

	// Run metrics
	RunStartTimestamp prometheus.Gauge
	RunSuccess        prometheus.Gauge
	MemoryAllocBytes  prometheus.Gauge
	GoRoutines        prometheus.Gauge

	registry *prometheus.Registry
	mu       sync.Mutex
}

var (
	// Global registry instance
	defaultRegistry *Registry
	once            sync.Once
)

// DefaultRegistry returns the global metrics registry
func DefaultRegistry() *Registry {
	once.Do(func() {
		defaultRegistry = NewRegistry()
	})
	return defaultRegistry
}

// NewRegistry creates a new metrics registry with all metrics initialized
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()

	r := &Registry{
		registry: reg,
	}

	r.initPipelineMetrics()
	r.initExportMetrics()
	r.initSystemMetrics()

	return r
}

// GetPrometheusRegistry returns the underlying Prometheus registry
func (r *Registry) GetPrometheusRegistry() *prometheus.Registry {
	return r.registry
}
