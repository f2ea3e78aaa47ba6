// Package metrics is a small, backend-agnostic facade for the operational
// metrics of a cleaning run.
//
// Callers record stage executions and record-level counts through the
// package-level helpers. A no-op backend is installed by default so the
// helpers are always safe to call; concrete systems live in subpackages
// (see prompush) and are installed once at startup with SetBackend.
package metrics

import "time"

// Metric names shared by every backend.
const (
	StageTotal   = "tabclean_stage_total"
	StageSeconds = "tabclean_stage_duration_seconds"
	RecordsTotal = "tabclean_records_total"
	BatchesTotal = "tabclean_batches_total"
)

// Record kinds passed to RecordRow.
const (
	KindRowsIn           = "rows_in"
	KindRowsRemoved      = "rows_removed"
	KindValuesFilled     = "values_filled"
	KindCoercionFailures = "coercion_failures"
	KindOutliers         = "outliers"
	KindRowsWritten      = "rows_written"
)

// Labels are string key/value pairs attached to a metric.
type Labels map[string]string

// Backend is the minimal interface for metrics backends.
type Backend interface {
	// IncCounter increments a counter by delta.
	IncCounter(name string, delta float64, labels Labels)
	// ObserveHistogram records a value in a latency/duration style metric.
	ObserveHistogram(name string, value float64, labels Labels)
	// Flush pushes or flushes metrics, if the backend needs it (e.g. Pushgateway).
	Flush() error
}

type nopBackend struct{}

func (nopBackend) IncCounter(string, float64, Labels)       {}
func (nopBackend) ObserveHistogram(string, float64, Labels) {}
func (nopBackend) Flush() error                             { return nil }

var backend Backend = nopBackend{}

// SetBackend installs a concrete backend. Passing nil keeps the existing backend.
func SetBackend(b Backend) {
	if b == nil {
		return
	}
	backend = b
}

// Reset restores the no-op backend.
func Reset() { backend = nopBackend{} }

// Flush delegates to the current backend.
func Flush() error {
	return backend.Flush()
}

// RecordStep counts one stage execution and its latency, labelled with the
// outcome.
func RecordStep(job, stage string, err error, d time.Duration) {
	status := "success"
	if err != nil {
		status = "failure"
	}
	lbls := Labels{
		"job":    job,
		"stage":  stage,
		"status": status,
	}
	backend.IncCounter(StageTotal, 1, lbls)
	backend.ObserveHistogram(StageSeconds, d.Seconds(), lbls)
}

// RecordRow increments a record-level counter for the given job and kind.
// Non-positive deltas are ignored.
func RecordRow(job, kind string, delta int64) {
	if delta <= 0 {
		return
	}
	backend.IncCounter(RecordsTotal, float64(delta), Labels{
		"job":  job,
		"kind": kind,
	})
}

// RecordBatches counts storage batches flushed for job.
func RecordBatches(job string, delta int64) {
	if delta <= 0 {
		return
	}
	backend.IncCounter(BatchesTotal, float64(delta), Labels{
		"job": job,
	})
}
