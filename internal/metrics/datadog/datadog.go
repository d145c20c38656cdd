// Package datadog sends migration metrics to a DogStatsD agent.
//
// The engine's Prometheus-style names are translated to dotted Datadog names
// (migrate_rows_total becomes migrate.rows) and labels become "key:value"
// tags, so a table's rows show up as tablemigrate.migrate.rows{kind:migrated}
// when the namespace is "tablemigrate.".
package datadog

import (
	"fmt"
	"math"
	"sort"

	"github.com/DataDog/datadog-go/v5/statsd"

	"tablemigrate/internal/metrics"
)

// names maps engine metric names to Datadog names. Other names are sent
// unchanged.
var names = map[string]string{
	metrics.TableTotal:           "migrate.tables",
	metrics.TableDurationSeconds: "migrate.table.duration",
	metrics.RowsTotal:            "migrate.rows",
	metrics.BatchesTotal:         "migrate.batches",
}

// Config holds the agent address and what every metric is stamped with.
type Config struct {
	// Addr is "host:port" or "unix:///path/to/socket".
	Addr string

	// Namespace prefixes every metric, e.g. "tablemigrate.".
	Namespace string

	// GlobalTags go on every metric; the CLI sets "job:<name>".
	GlobalTags []string
}

// Backend is a metrics.Backend over a statsd client.
type Backend struct {
	client *statsd.Client
}

var _ metrics.Backend = (*Backend)(nil)

// NewBackend dials the agent. Addr is required.
func NewBackend(cfg Config) (*Backend, error) {
	if cfg.Addr == "" {
		return nil, fmt.Errorf("datadog: Addr is required")
	}

	opts := []statsd.Option{}
	if cfg.Namespace != "" {
		opts = append(opts, statsd.WithNamespace(cfg.Namespace))
	}
	if len(cfg.GlobalTags) > 0 {
		opts = append(opts, statsd.WithTags(cfg.GlobalTags))
	}
	c, err := statsd.New(cfg.Addr, opts...)
	if err != nil {
		return nil, fmt.Errorf("datadog: create client for %s: %w", cfg.Addr, err)
	}
	return &Backend{client: c}, nil
}

// IncCounter sends a Count. Row and batch deltas are whole numbers; anything
// else is rounded.
func (b *Backend) IncCounter(name string, delta float64, labels metrics.Labels) {
	if b.client == nil {
		return
	}
	_ = b.client.Count(metricName(name), int64(math.Round(delta)), labelsToTags(labels), 1)
}

// ObserveHistogram sends a Histogram; table durations are in seconds.
func (b *Backend) ObserveHistogram(name string, value float64, labels metrics.Labels) {
	if b.client == nil {
		return
	}
	_ = b.client.Histogram(metricName(name), value, labelsToTags(labels), 1)
}

// Flush closes the client, which sends anything still buffered. The CLI
// calls it once when the command ends.
func (b *Backend) Flush() error {
	if b.client == nil {
		return nil
	}
	return b.client.Close()
}

func metricName(name string) string {
	if n, ok := names[name]; ok {
		return n
	}
	return name
}

// labelsToTags renders labels as sorted "key:value" tags.
func labelsToTags(lbls metrics.Labels) []string {
	if len(lbls) == 0 {
		return nil
	}
	out := make([]string, 0, len(lbls))
	for k, v := range lbls {
		out = append(out, k+":"+v)
	}
	sort.Strings(out)
	return out
}
