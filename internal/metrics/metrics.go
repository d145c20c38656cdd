// Package metrics provides a small, backend-agnostic abstraction for recording
// operational metrics from table migrations.
//
//   - It exposes a narrow interface (Backend) focused on counters and timing
//     data (histograms).
//   - It provides a global, pluggable backend that defaults to a no-op
//     implementation, so metrics are always safe to call even when no real
//     backend is configured.
//
// Concrete metric systems live in subpackages (prompush, datadog) so the
// migration engine depends only on this package.
package metrics

import "time"

// Metric names emitted by the migration engine.
const (
	TableTotal           = "migrate_table_total"
	TableDurationSeconds = "migrate_table_duration_seconds"
	RowsTotal            = "migrate_rows_total"
	BatchesTotal         = "migrate_batches_total"
)

// Labels are string key/value pairs attached to a metric.
type Labels map[string]string

// Backend is the minimal interface for metrics backends.
// It is intentionally generic so we can plug in Prometheus, Datadog, etc.
type Backend interface {
	// IncCounter increments a counter by delta.
	IncCounter(name string, delta float64, labels Labels)
	// ObserveHistogram records a value in a latency/duration style metric.
	ObserveHistogram(name string, value float64, labels Labels)
	// Flush pushes or flushes metrics, if the backend needs it (e.g. Pushgateway).
	Flush() error
}

// nopBackend is used by default so metrics are optional.
type nopBackend struct{}

func (nopBackend) IncCounter(name string, delta float64, labels Labels)       {}
func (nopBackend) ObserveHistogram(name string, value float64, labels Labels) {}
func (nopBackend) Flush() error                                               { return nil }

var backend Backend = nopBackend{}

// SetBackend installs a concrete backend. Passing nil keeps the existing backend.
func SetBackend(b Backend) {
	if b == nil {
		return
	}
	backend = b
}

// Flush delegates to the current backend.
func Flush() error {
	return backend.Flush()
}

// RecordTable records one finished table migration: a success/failure count
// and its wall-clock duration.
func RecordTable(job, table string, err error, d time.Duration) {
	status := "success"
	if err != nil {
		status = "failure"
	}

	lbls := Labels{
		"job":    job,
		"table":  table,
		"status": status,
	}

	backend.IncCounter(TableTotal, 1, lbls)
	backend.ObserveHistogram(TableDurationSeconds, d.Seconds(), lbls)
}

// RecordRows increments a row-level counter for the given job and kind.
//
// Kinds used by the migrator:
//   - "migrated"
//   - "skipped"
//   - "erased"
func RecordRows(job, kind string, delta int64) {
	if delta <= 0 {
		return
	}
	backend.IncCounter(RowsTotal, float64(delta), Labels{
		"job":  job,
		"kind": kind,
	})
}

// RecordBatches increments the committed-batch counter for the given job.
func RecordBatches(job string, delta int64) {
	if delta <= 0 {
		return
	}
	backend.IncCounter(BatchesTotal, float64(delta), Labels{
		"job": job,
	})
}
