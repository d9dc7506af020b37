package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordRun(t *testing.T) {
	before := testutil.ToFloat64(importRuns.WithLabelValues("dry_run", "success"))
	RecordRun(true, true, 0.25)
	assert.Equal(t, before+1, testutil.ToFloat64(importRuns.WithLabelValues("dry_run", "success")))

	before = testutil.ToFloat64(importRuns.WithLabelValues("commit", "failure"))
	RecordRun(false, false, 1)
	assert.Equal(t, before+1, testutil.ToFloat64(importRuns.WithLabelValues("commit", "failure")))
}

func TestRecordCounts(t *testing.T) {
	before := testutil.ToFloat64(entitiesCreated.WithLabelValues("good"))
	RecordCreated(map[string]int{"good": 3})
	assert.Equal(t, before+3, testutil.ToFloat64(entitiesCreated.WithLabelValues("good")))

	before = testutil.ToFloat64(rowsSkipped.WithLabelValues("tr"))
	RecordSkipped(map[string]int{"tr": 2})
	assert.Equal(t, before+2, testutil.ToFloat64(rowsSkipped.WithLabelValues("tr")))
}
