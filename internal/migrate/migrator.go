// Package migrate is the batch migration engine. It copies rows from a
// storage.Source to a storage.Target table by table and batch by batch,
// renaming columns and substituting blank values on the way.
//
// Execution is sequential. Each batch is written in its own transaction, so
// a failure rolls back only the batch in flight; batches already committed
// stay. Pages are selected by offset over the order the source returns
// unless the caller supplies OrderBy, so rows changing concurrently in the
// source can be skipped or read twice.
package migrate

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/zeebo/xxh3"

	"tablemigrate/internal/mapping"
	"tablemigrate/internal/metrics"
	"tablemigrate/internal/storage"
)

// DefaultBatchSize is used when no positive batch size is configured.
const DefaultBatchSize = 1000

// ErasePolicy decides what a multi-table run does when clearing a target
// table fails.
type ErasePolicy int

const (
	// EraseWarnAndContinue logs the failure, records it on the Outcome and
	// loads anyway. Rows already in the target may end up duplicated.
	EraseWarnAndContinue ErasePolicy = iota
	// EraseFailTable records the table as failed and does not load it.
	EraseFailTable
)

func (p ErasePolicy) String() string {
	switch p {
	case EraseWarnAndContinue:
		return "warn"
	case EraseFailTable:
		return "fail"
	default:
		return fmt.Sprintf("ErasePolicy(%d)", int(p))
	}
}

// ParseErasePolicy accepts "warn" (or "") and "fail".
func ParseErasePolicy(s string) (ErasePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "warn":
		return EraseWarnAndContinue, nil
	case "fail":
		return EraseFailTable, nil
	default:
		return 0, fmt.Errorf("unknown erase policy %q (want warn or fail)", s)
	}
}

// TableRequest describes one single-table migration.
type TableRequest struct {
	Source  string
	Target  string
	Filter  string // appended verbatim after WHERE
	OrderBy string // appended verbatim after ORDER BY

	ColumnMap                 mapping.ColumnMap
	EmptyToReplacementColumns mapping.ColumnSet
	// ReplacementValue replaces blank text in EmptyToReplacementColumns.
	// Empty means mapping.DefaultReplacementValue.
	ReplacementValue string
}

func (r TableRequest) validate() error {
	return mapping.Mapping{SourceTable: r.Source, TargetTable: r.Target}.Validate()
}

func (r TableRequest) replacement() string {
	if r.ReplacementValue == "" {
		return mapping.DefaultReplacementValue
	}
	return r.ReplacementValue
}

// RequestFor builds the TableRequest for a mapping.
func RequestFor(m mapping.Mapping) TableRequest {
	return TableRequest{
		Source:                    m.SourceTable,
		Target:                    m.TargetTable,
		Filter:                    m.Filter,
		OrderBy:                   m.OrderBy,
		ColumnMap:                 m.ColumnMap,
		EmptyToReplacementColumns: m.EmptyToReplacementColumns,
		ReplacementValue:          m.ReplacementValue,
	}
}

// Option configures a Migrator.
type Option func(*Migrator)

// WithBatchSize sets the rows per batch. Non-positive values are ignored.
func WithBatchSize(n int) Option {
	return func(m *Migrator) {
		if n > 0 {
			m.batchSize = int64(n)
		}
	}
}

// WithLogger sets the logger.
func WithLogger(log logrus.FieldLogger) Option {
	return func(m *Migrator) {
		if log != nil {
			m.log = log
		}
	}
}

// WithErasePolicy sets how clear-target failures are handled.
func WithErasePolicy(p ErasePolicy) Option {
	return func(m *Migrator) { m.erasePolicy = p }
}

// WithProgress installs a progress sink.
func WithProgress(p Progress) Option {
	return func(m *Migrator) {
		if p != nil {
			m.progress = p
		}
	}
}

// WithJob sets the job label used for metrics.
func WithJob(job string) Option {
	return func(m *Migrator) {
		if job != "" {
			m.job = job
		}
	}
}

// Migrator runs migrations from one source to one target.
type Migrator struct {
	src storage.Source
	dst storage.Target

	batchSize   int64
	log         logrus.FieldLogger
	erasePolicy ErasePolicy
	progress    Progress
	job         string
}

// New returns a Migrator reading from src and writing to dst.
func New(src storage.Source, dst storage.Target, opts ...Option) *Migrator {
	m := &Migrator{
		src:       src,
		dst:       dst,
		batchSize: DefaultBatchSize,
		log:       logrus.StandardLogger(),
		progress:  NopProgress{},
		job:       "tablemigrate",
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

// ListSourceTables returns the tables visible on the source.
func (m *Migrator) ListSourceTables(ctx context.Context) ([]string, error) {
	return m.src.ListTables(ctx)
}

// EraseTarget deletes every row of table on the target and returns how many
// were removed.
func (m *Migrator) EraseTarget(ctx context.Context, table string) (int64, error) {
	if strings.TrimSpace(table) == "" {
		return 0, &TableError{Target: table, Stage: StageErase,
			Err: fmt.Errorf("%w: target table must not be empty", mapping.ErrInvalidMapping)}
	}
	n, err := m.dst.Erase(ctx, table)
	if err != nil {
		return 0, &TableError{Target: table, Stage: StageErase, Err: err}
	}
	m.log.WithFields(logrus.Fields{"target": table, "rows": n}).Info("target table cleared")
	metrics.RecordRows(m.job, "erased", n)
	return n, nil
}

// MigrateTable copies the rows of req.Source matching req.Filter into
// req.Target. Errors are returned as *TableError wrapping the storage error.
func (m *Migrator) MigrateTable(ctx context.Context, req TableRequest) (Outcome, error) {
	out, err := m.migrateTable(ctx, req)
	m.finish(out)
	return out, err
}

func (m *Migrator) migrateTable(ctx context.Context, req TableRequest) (out Outcome, err error) {
	start := time.Now()
	out = Outcome{Source: req.Source, Target: req.Target}
	defer func() { out.Duration = time.Since(start) }()

	fail := func(stage Stage, batch int, cause error) (Outcome, error) {
		te := &TableError{Source: req.Source, Target: req.Target, Stage: stage, Batch: batch, Err: cause}
		out.OK = false
		out.Err = te
		return out, te
	}

	if err := req.validate(); err != nil {
		return fail(StageValidate, 0, err)
	}
	log := m.log.WithFields(logrus.Fields{"source": req.Source, "target": req.Target})

	total, err := m.src.CountRows(ctx, req.Source, req.Filter)
	if err != nil {
		return fail(StageCount, 0, err)
	}
	out.Total = total
	m.progress.TableStarted(req.Target, total)
	if total == 0 {
		log.Info("no rows to migrate")
		out.OK = true
		return out, nil
	}

	sub := NewSubstituter(req.EmptyToReplacementColumns, req.replacement())
	digest := xxh3.New()

	// consumed counts rows read from the source, written or skipped; it is
	// the offset of the next page.
	var consumed int64
	for consumed < total {
		batchNo := out.Batches + 1
		if err := ctx.Err(); err != nil {
			return fail(StageRead, batchNo, err)
		}

		q := storage.PageQuery{
			Table:   req.Source,
			Filter:  req.Filter,
			OrderBy: req.OrderBy,
			Offset:  consumed,
			Limit:   min(m.batchSize, total-consumed),
		}
		batch, err := m.src.ReadBatch(ctx, q)
		if err != nil {
			return fail(StageRead, batchNo, err)
		}
		n := int64(batch.Len())
		if n == 0 {
			log.WithFields(logrus.Fields{"read": consumed, "total": total}).
				Warn("source returned an empty page before the counted total; stopping")
			break
		}

		plan := BuildPlan(batch.Columns, req.ColumnMap, log)
		if plan.Empty() {
			log.WithFields(logrus.Fields{"offset": consumed, "rows": n}).
				Warn("no usable columns in page; skipping its rows")
			out.Skipped += n
			consumed += n
			metrics.RecordRows(m.job, "skipped", n)
			continue
		}

		rows := plan.Bind(batch.Rows, sub)
		written, err := m.dst.CopyFrom(ctx, req.Target, plan.TargetColumns(), rows)
		if err != nil {
			return fail(StageWrite, batchNo, err)
		}
		digestRows(digest, rows)

		consumed += n
		out.Batches = batchNo
		out.Migrated += written
		log.WithFields(logrus.Fields{"batch": batchNo, "offset": q.Offset, "rows": written}).Debug("batch committed")
		m.progress.BatchDone(req.Target, batchNo, written, out.Migrated, total)
		metrics.RecordBatches(m.job, 1)
		metrics.RecordRows(m.job, "migrated", written)
	}

	out.Digest = digest.Sum64()
	out.OK = true
	return out, nil
}

// finish reports a completed table to metrics and the progress sink.
func (m *Migrator) finish(out Outcome) {
	metrics.RecordTable(m.job, out.Target, out.Err, out.Duration)
	m.progress.TableDone(out)
}

type pinger interface {
	Ping(ctx context.Context) error
}

// ping checks both endpoints when they support it.
func (m *Migrator) ping(ctx context.Context) error {
	if p, ok := m.src.(pinger); ok {
		if err := p.Ping(ctx); err != nil {
			return fmt.Errorf("source: %w", err)
		}
	}
	if p, ok := m.dst.(pinger); ok {
		if err := p.Ping(ctx); err != nil {
			return fmt.Errorf("target: %w", err)
		}
	}
	return nil
}

// MigrateFromMappings migrates every active mapping in order and returns one
// Outcome per active mapping. A failing table is recorded and the run moves
// on. Targets are cleared first when the mapping asks for it or clearFirst
// is set.
//
// The returned error is non-nil only when an endpoint cannot be reached
// before the first table (the report is nil then) or ctx is canceled (the
// report holds the tables finished so far).
func (m *Migrator) MigrateFromMappings(ctx context.Context, mappings []mapping.Mapping, clearFirst bool) (*Report, error) {
	if err := m.ping(ctx); err != nil {
		return nil, err
	}

	rep := newReport()
	m.log.WithFields(logrus.Fields{"run_id": rep.RunID, "mappings": len(mappings)}).Info("migration run started")

	for _, mp := range mappings {
		if !mp.Active {
			m.log.WithField("mapping", mp.String()).Debug("skipping inactive mapping")
			continue
		}
		if err := ctx.Err(); err != nil {
			rep.Duration = time.Since(rep.Started)
			return rep, err
		}
		rep.Outcomes = append(rep.Outcomes, m.runMapping(ctx, mp, clearFirst))
	}

	rep.Duration = time.Since(rep.Started)
	m.log.WithFields(logrus.Fields{
		"run_id":    rep.RunID,
		"succeeded": rep.Succeeded(),
		"failed":    rep.Failed(),
		"rows":      rep.Rows(),
		"elapsed":   rep.Duration.Truncate(time.Millisecond),
	}).Info("migration run finished")
	return rep, nil
}

func (m *Migrator) runMapping(ctx context.Context, mp mapping.Mapping, clearFirst bool) Outcome {
	log := m.log.WithField("mapping", mp.String())

	if err := mp.Validate(); err != nil {
		out := Outcome{
			Source: mp.SourceTable,
			Target: mp.TargetTable,
			Err:    &TableError{Source: mp.SourceTable, Target: mp.TargetTable, Stage: StageValidate, Err: err},
		}
		log.WithError(out.Err).Error("invalid mapping")
		m.finish(out)
		return out
	}

	var (
		erased    int64
		eraseWarn string
	)
	if mp.ClearTarget || clearFirst {
		n, err := m.EraseTarget(ctx, mp.TargetTable)
		switch {
		case err == nil:
			erased = n
		case m.erasePolicy == EraseFailTable:
			out := Outcome{Source: mp.SourceTable, Target: mp.TargetTable, Err: err}
			log.WithError(err).Error("clearing target failed; table not loaded")
			m.finish(out)
			return out
		default:
			eraseWarn = err.Error()
			log.WithError(err).Warn("clearing target failed; loading anyway, rows may be duplicated")
		}
	}

	out, err := m.migrateTable(ctx, RequestFor(mp))
	out.Erased = erased
	out.EraseWarning = eraseWarn
	var te *TableError
	switch {
	case err == nil:
		log.WithFields(logrus.Fields{"rows": out.Migrated, "batches": out.Batches}).Info("table migrated")
	case errors.As(err, &te):
		log.WithError(err).WithField("stage", te.Stage).Error("table migration failed")
	default:
		log.WithError(err).Error("table migration failed")
	}
	m.finish(out)
	return out
}
