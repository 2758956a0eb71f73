package metrics

import (
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// ImportMetrics records outcomes for the bulk-import pipeline.
type ImportMetrics struct {
	batchDuration *prometheus.HistogramVec
	batchOutcome  *prometheus.CounterVec
	files         *prometheus.CounterVec
}

// NewImportMetrics registers the import metrics on the provided registerer.
func NewImportMetrics(reg prometheus.Registerer) *ImportMetrics {
	if reg == nil {
		return &ImportMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "import_batch_duration_seconds",
		Help:    "Wall-clock duration of import batches in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"outcome"})
	outcome := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "import_batches_total",
		Help: "Import batches by terminal outcome.",
	}, []string{"outcome"})
	files := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "import_files_total",
		Help: "Files processed by the import pipeline, by result.",
	}, []string{"result"})
	reg.MustRegister(duration, outcome, files)
	return &ImportMetrics{
		batchDuration: duration,
		batchOutcome:  outcome,
		files:         files,
	}
}

// ObserveBatch records one finished batch with its terminal outcome.
func (m *ImportMetrics) ObserveBatch(outcome string, duration time.Duration) {
	if m == nil || m.batchDuration == nil {
		return
	}
	label := normalizeLabel(outcome)
	m.batchDuration.WithLabelValues(label).Observe(duration.Seconds())
	m.batchOutcome.WithLabelValues(label).Inc()
}

// IncFile counts one processed file with its result (imported, failed,
// duplicate).
func (m *ImportMetrics) IncFile(result string) {
	if m == nil || m.files == nil {
		return
	}
	m.files.WithLabelValues(normalizeLabel(result)).Inc()
}

func normalizeLabel(value string) string {
	value = strings.TrimSpace(strings.ToLower(value))
	if value == "" {
		return "unknown"
	}
	return value
}
