package metrics

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
)

func TestNewRegistry(t *testing.T) {
	r := NewRegistry()
	if r == nil {
		t.Fatal("NewRegistry() returned nil")
	}

	if r.RecordsScannedTotal == nil {
		t.Error("RecordsScannedTotal not initialized")
	}
	if r.NodesCollected == nil {
		t.Error("NodesCollected not initialized")
	}
	if r.StageDuration == nil {
		t.Error("StageDuration not initialized")
	}
	if r.registry == nil {
		t.Error("Prometheus registry not initialized")
	}
}

func TestDefaultRegistry(t *testing.T) {
	r1 := DefaultRegistry()
	r2 := DefaultRegistry()

	if r1 != r2 {
		t.Error("DefaultRegistry() should return the same instance")
	}
}

func TestRecordCategory(t *testing.T) {
	r := NewRegistry()

	r.RecordCategory("literature", 2*time.Second, nil)
	r.RecordCategory("literature", 3*time.Second, nil)
	r.RecordCategory("jobs", time.Second, errors.New("scan failed"))

	histogram, err := r.CategoryDuration.GetMetricWithLabelValues("literature", StatusOK)
	if err != nil {
		t.Fatalf("Failed to get histogram: %v", err)
	}

	var metric dto.Metric
	if err := histogram.(prometheus.Histogram).Write(&metric); err != nil {
		t.Fatalf("Failed to write metric: %v", err)
	}
	if metric.Histogram.GetSampleCount() != 2 {
		t.Errorf("Sample count = %v, want 2", metric.Histogram.GetSampleCount())
	}
	if sum := metric.Histogram.GetSampleSum(); sum < 4.99 || sum > 5.01 {
		t.Errorf("Sample sum = %v, want 5", sum)
	}

	if n := testutil.CollectAndCount(r.CategoryDuration); n != 2 {
		t.Errorf("CategoryDuration series = %d, want 2", n)
	}
}

func TestRecordConsolidation(t *testing.T) {
	r := NewRegistry()
	r.RecordConsolidation(10, 20, 3, 4, 5, 1, 2)

	tests := []struct {
		name string
		got  float64
		want float64
	}{
		{"nodes", testutil.ToFloat64(r.NodesCollected), 10},
		{"relations", testutil.ToFloat64(r.RelationsCollected), 20},
		{"node groups", testutil.ToFloat64(r.NodeGroups), 3},
		{"relation groups", testutil.ToFloat64(r.RelationGroups), 4},
		{"expanded", testutil.ToFloat64(r.NodesExpandedTotal), 5},
		{"duplicate nodes", testutil.ToFloat64(r.DuplicatesTotal.WithLabelValues("node")), 1},
		{"duplicate relations", testutil.ToFloat64(r.DuplicatesTotal.WithLabelValues("relation")), 2},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s = %v, want %v", tt.name, tt.got, tt.want)
		}
	}
}

func TestRecordExport(t *testing.T) {
	r := NewRegistry()
	r.RecordExport("nodes", 3, 100, 0)
	r.RecordExport("relations", 2, 50, 7)

	if v := testutil.ToFloat64(r.FilesWrittenTotal.WithLabelValues("nodes")); v != 3 {
		t.Errorf("node files = %v, want 3", v)
	}
	if v := testutil.ToFloat64(r.RowsWrittenTotal.WithLabelValues("relations")); v != 50 {
		t.Errorf("relation rows = %v, want 50", v)
	}
	if v := testutil.ToFloat64(r.DanglingRelationsTotal); v != 7 {
		t.Errorf("dangling = %v, want 7", v)
	}
}

func TestRunLifecycle(t *testing.T) {
	r := NewRegistry()
	start := time.Unix(1700000000, 0)
	r.StartRun(start)

	if v := testutil.ToFloat64(r.RunStartTimestamp); v != 1700000000 {
		t.Errorf("start timestamp = %v", v)
	}
	r.FinishRun(errors.New("failed"))
	if v := testutil.ToFloat64(r.RunSuccess); v != 0 {
		t.Errorf("failed run success = %v, want 0", v)
	}
	r.FinishRun(nil)
	if v := testutil.ToFloat64(r.RunSuccess); v != 1 {
		t.Errorf("run success = %v, want 1", v)
	}
	if testutil.ToFloat64(r.GoRoutines) <= 0 {
		t.Error("goroutines not sampled")
	}
}

func TestWriteTextfile(t *testing.T) {
	r := NewRegistry()
	r.RecordsScannedTotal.WithLabelValues("conferences").Add(42)

	path := filepath.Join(t.TempDir(), "relations.prom")
	if err := r.WriteTextfile(path); err != nil {
		t.Fatalf("WriteTextfile: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !strings.Contains(string(data), `relations_records_scanned_total{category="conferences"} 42`) {
		t.Errorf("textfile missing scanned counter:\n%s", data)
	}
}

func TestConcurrentMetricUpdates(t *testing.T) {
	r := NewRegistry()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				r.RecordsBuiltTotal.WithLabelValues("literature").Inc()
			}
		}()
	}
	wg.Wait()

	if v := testutil.ToFloat64(r.RecordsBuiltTotal.WithLabelValues("literature")); v != 1000 {
		t.Errorf("built = %v, want 1000", v)
	}
}

func TestMetricNaming(t *testing.T) {
	r := NewRegistry()
	r.RecordsScannedTotal.WithLabelValues("jobs").Inc()

	families, err := r.GetPrometheusRegistry().Gather()
	if err != nil {
		t.Fatalf("Failed to gather metrics: %v", err)
	}
	for _, f := range families {
		if !strings.HasPrefix(f.GetName(), "relations_") {
			t.Errorf("metric %s lacks the relations_ prefix", f.GetName())
		}
	}
}
