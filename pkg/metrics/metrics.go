package metrics

import (
	"fmt"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Status label values
const (
	StatusOK    = "ok"
	StatusError = "error"
)

func status(err error) string {
	if err != nil {
		return StatusError
	}
	return StatusOK
}

// RecordCategory records one finished category scan.
func (r *Registry) RecordCategory(category string, duration time.Duration, err error) {
	r.CategoryDuration.WithLabelValues(category, status(err)).Observe(duration.Seconds())
}

// RecordStage records one run stage ("consolidate", "export", "load", "publish").
func (r *Registry) RecordStage(stage string, duration time.Duration, err error) {
	r.StageDuration.WithLabelValues(stage, status(err)).Observe(duration.Seconds())
}

// RecordConsolidation publishes the final state of a consolidation session.
func (r *Registry) RecordConsolidation(nodes, relations, nodeGroups, relationGroups, expanded, duplicateNodes, duplicateRelations int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.NodesCollected.Set(float64(nodes))
	r.RelationsCollected.Set(float64(relations))
	r.NodeGroups.Set(float64(nodeGroups))
	r.RelationGroups.Set(float64(relationGroups))
	r.NodesExpandedTotal.Add(float64(expanded))
	r.DuplicatesTotal.WithLabelValues("node").Add(float64(duplicateNodes))
	r.DuplicatesTotal.WithLabelValues("relation").Add(float64(duplicateRelations))
}

// RecordExport counts the files and rows of one export directory.
func (r *Registry) RecordExport(kind string, files, rows, dropped int) {
	r.FilesWrittenTotal.WithLabelValues(kind).Add(float64(files))
	r.RowsWrittenTotal.WithLabelValues(kind).Add(float64(rows))
	r.DanglingRelationsTotal.Add(float64(dropped))
}

// StartRun marks the beginning of a run.
func (r *Registry) StartRun(now time.Time) {
	r.RunStartTimestamp.Set(float64(now.Unix()))
	r.RunSuccess.Set(0)
}

// FinishRun marks the end of a run and samples the runtime.
func (r *Registry) FinishRun(err error) {
	if err == nil {
		r.RunSuccess.Set(1)
	}
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	r.MemoryAllocBytes.Set(float64(m.Alloc))
	r.GoRoutines.Set(float64(runtime.NumGoroutine()))
}

// WriteTextfile writes every metric in the text exposition format, for the
// node_exporter textfile collector.
func (r *Registry) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("failed to write metrics textfile: %w", err)
	}
	return nil
}
