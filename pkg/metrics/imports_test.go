package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestImportMetricsCounts(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	m := NewImportMetrics(reg)

	m.ObserveBatch("completed", 3*time.Second)
	m.ObserveBatch("failed", time.Second)
	m.IncFile("imported")
	m.IncFile("imported")
	m.IncFile("FAILED")

	if got := testutil.ToFloat64(m.batchOutcome.WithLabelValues("completed")); got != 1 {
		t.Fatalf("expected 1 completed batch got %f", got)
	}
	if got := testutil.ToFloat64(m.files.WithLabelValues("imported")); got != 2 {
		t.Fatalf("expected 2 imported files got %f", got)
	}
	if got := testutil.ToFloat64(m.files.WithLabelValues("failed")); got != 1 {
		t.Fatalf("expected label normalization to lowercase, got %f", got)
	}
}

func TestImportMetricsNilSafe(t *testing.T) {
	t.Parallel()

	var m *ImportMetrics
	m.ObserveBatch("completed", time.Second)
	m.IncFile("imported")

	empty := NewImportMetrics(nil)
	empty.ObserveBatch("completed", time.Second)
	empty.IncFile("imported")
}
