package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	importRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "flowdata",
		Subsystem: "import",
		Name:      "runs_total",
		Help:      "Workbook import runs broken down by mode (commit, dry_run) and result.",
	}, []string{"mode", "result"})

	importDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "flowdata",
		Subsystem: "import",
		Name:      "duration_seconds",
		Help:      "Wall time of workbook import runs.",
		Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120, 300},
	}, []string{"mode", "result"})

	entitiesCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "flowdata",
		Subsystem: "import",
		Name:      "entities_created_total",
		Help:      "Entities persisted by committed import runs, by kind.",
	}, []string{"kind"})

	rowsSkipped = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "flowdata",
		Subsystem: "import",
		Name:      "skipped_total",
		Help:      "Rows or matrix cells skipped because a key or quantity was absent, by sheet.",
	}, []string{"sheet"})
)

// RecordRun counts one finished import run.
func RecordRun(dryRun, ok bool, seconds float64) {
	mode := "commit"
	if dryRun {
		mode = "dry_run"
	}
	result := "failure"
	if ok {
		result = "success"
	}
	labels := prometheus.Labels{"mode": mode, "result": result}
	importRuns.With(labels).Inc()
	importDuration.With(labels).Observe(seconds)
}

func RecordCreated(counts map[string]int) {
	for kind, n := range counts {
		entitiesCreated.WithLabelValues(kind).Add(float64(n))
	}
}

func RecordSkipped(counts map[string]int) {
	for sheet, n := range counts {
		rowsSkipped.WithLabelValues(sheet).Add(float64(n))
	}
}
