// Package prompush implements a Prometheus Pushgateway backend for the
// metrics package.
//
// Table, row and batch counters are kept in a private registry and pushed to
// a Pushgateway on Flush, which suits a batch job that exits when the run is
// over and so cannot be scraped.
package prompush

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"

	"tablemigrate/internal/metrics"
)

// Backend is a Prometheus Pushgateway metrics backend.
type Backend struct {
	gatewayURL string // e.g. http://pushgateway:9091
	jobName    string // Pushgateway "job" group
	reg        *prometheus.Registry

	tableCounter  *prometheus.CounterVec // migrate_table_total
	tableDuration *prometheus.SummaryVec // migrate_table_duration_seconds (summary)
	rowCounter    *prometheus.CounterVec // migrate_rows_total
	batchCounter  prometheus.Counter     // migrate_batches_total
}

// NewBackend constructs a Prometheus Pushgateway backend.
// jobName: the Pushgateway "job" name (often the migration job name).
// gatewayURL: base URL of the Pushgateway server.
func NewBackend(jobName, gatewayURL string) (*Backend, error) {
	if gatewayURL == "" {
		return nil, fmt.Errorf("prompush: gateway URL is required")
	}
	if jobName == "" {
		jobName = "tablemigrate"
	}

	reg := prometheus.NewRegistry()

	// job is the Pushgateway grouping key, so it is not a metric label.
	tableCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: metrics.TableTotal,
			Help: "Total number of table migrations, partitioned by table and status.",
		},
		[]string{"table", "status"},
	)
	tableDuration := prometheus.NewSummaryVec(
		prometheus.SummaryOpts{
			Name:       metrics.TableDurationSeconds,
			Help:       "Duration of table migrations in seconds, partitioned by table and status.",
			Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001},
		},
		[]string{"table", "status"},
	)
	rowCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: metrics.RowsTotal,
			Help: "Row-level counts per kind (migrated, skipped, erased).",
		},
		[]string{"kind"},
	)
	batchCounter := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: metrics.BatchesTotal,
			Help: "Total number of batches committed to the target.",
		},
	)

	if err := reg.Register(tableCounter); err != nil {
		return nil, fmt.Errorf("prompush: register table counter: %w", err)
	}
	if err := reg.Register(tableDuration); err != nil {
		return nil, fmt.Errorf("prompush: register table summary: %w", err)
	}
	if err := reg.Register(rowCounter); err != nil {
		return nil, fmt.Errorf("prompush: register row counter: %w", err)
	}
	if err := reg.Register(batchCounter); err != nil {
		return nil, fmt.Errorf("prompush: register batch counter: %w", err)
	}

	return &Backend{
		gatewayURL:    gatewayURL,
		jobName:       jobName,
		reg:           reg,
		tableCounter:  tableCounter,
		tableDuration: tableDuration,
		rowCounter:    rowCounter,
		batchCounter:  batchCounter,
	}, nil
}

func (b *Backend) IncCounter(name string, delta float64, labels metrics.Labels) {
	switch name {
	case metrics.TableTotal:
		if b.tableCounter == nil {
			return
		}
		b.tableCounter.WithLabelValues(labels["table"], labels["status"]).Add(delta)

	case metrics.RowsTotal:
		if b.rowCounter == nil {
			return
		}
		b.rowCounter.WithLabelValues(labels["kind"]).Add(delta)

	case metrics.BatchesTotal:
		if b.batchCounter == nil {
			return
		}
		b.batchCounter.Add(delta)

	default:
		// unknown metric name: ignore
	}
}

func (b *Backend) ObserveHistogram(name string, value float64, labels metrics.Labels) {
	if name != metrics.TableDurationSeconds || b.tableDuration == nil {
		return
	}
	b.tableDuration.WithLabelValues(labels["table"], labels["status"]).Observe(value)
}

// Flush pushes the current registry to the Pushgateway.
func (b *Backend) Flush() error {
	return push.New(b.gatewayURL, b.jobName).
		Gatherer(b.reg).
		Push()
}
