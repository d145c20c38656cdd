package migrate

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"tablemigrate/internal/storage"
)

// fakeTable is an in-memory table: column names plus rows aligned to them.
type fakeTable struct {
	cols []string
	rows [][]any
}

// fakeSource serves fakeTables and records every call.
type fakeSource struct {
	mu sync.Mutex

	tables  map[string]*fakeTable
	filters map[string]func(row []any) bool

	// countOverride makes CountRows report a different total than the
	// rows ReadBatch will serve.
	countOverride map[string]int64
	countErr      error
	readErr       error
	pingErr       error

	counts []string
	reads  []storage.PageQuery
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		tables:        map[string]*fakeTable{},
		filters:       map[string]func([]any) bool{},
		countOverride: map[string]int64{},
	}
}

func (s *fakeSource) add(name string, cols []string, rows ...[]any) {
	s.tables[name] = &fakeTable{cols: cols, rows: rows}
}

func (s *fakeSource) matching(table, filter string) ([]string, [][]any, error) {
	t, ok := s.tables[table]
	if !ok {
		return nil, nil, fmt.Errorf("%w: fake: no such table: %s", storage.ErrQuery, table)
	}
	if filter == "" {
		return t.cols, t.rows, nil
	}
	pred, ok := s.filters[filter]
	if !ok {
		return nil, nil, fmt.Errorf("%w: fake: unknown filter %q", storage.ErrQuery, filter)
	}
	var out [][]any
	for _, r := range t.rows {
		if pred(r) {
			out = append(out, r)
		}
	}
	return t.cols, out, nil
}

func (s *fakeSource) ListTables(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.tables))
	for k := range s.tables {
		out = append(out, k)
	}
	sort.Strings(out)
	return out, nil
}

func (s *fakeSource) CountRows(ctx context.Context, table, filter string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counts = append(s.counts, table)
	if s.countErr != nil {
		return 0, s.countErr
	}
	if n, ok := s.countOverride[table]; ok {
		return n, nil
	}
	_, rows, err := s.matching(table, filter)
	if err != nil {
		return 0, err
	}
	return int64(len(rows)), nil
}

func (s *fakeSource) ReadBatch(ctx context.Context, q storage.PageQuery) (*storage.Batch, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reads = append(s.reads, q)
	if s.readErr != nil {
		return nil, s.readErr
	}
	cols, rows, err := s.matching(q.Table, q.Filter)
	if err != nil {
		return nil, err
	}
	b := &storage.Batch{Columns: cols}
	for i := q.Offset; i < int64(len(rows)) && i < q.Offset+q.Limit; i++ {
		b.Rows = append(b.Rows, append([]any(nil), rows[i]...))
	}
	return b, nil
}

func (s *fakeSource) Ping(ctx context.Context) error { return s.pingErr }

func (s *fakeSource) countCalls(table string) int {
	n := 0
	for _, c := range s.counts {
		if c == table {
			n++
		}
	}
	return n
}

func (s *fakeSource) readCalls(table string) int {
	n := 0
	for _, q := range s.reads {
		if q.Table == table {
			n++
		}
	}
	return n
}

type copyCall struct {
	table   string
	columns []string
	rows    [][]any
}

// fakeTarget stores committed rows per table. A failing row leaves the
// table as it was before the call, like a rolled back transaction.
type fakeTarget struct {
	mu sync.Mutex

	tables map[string]*fakeTable

	failRow  func(table string, row []any) bool
	eraseErr error
	pingErr  error

	copies []copyCall
	erases []string
}

func newFakeTarget() *fakeTarget {
	return &fakeTarget{tables: map[string]*fakeTable{}}
}

func (t *fakeTarget) CopyFrom(ctx context.Context, table string, columns []string, rows [][]any) (int64, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.copies = append(t.copies, copyCall{table: table, columns: columns, rows: rows})
	for i, r := range rows {
		if t.failRow != nil && t.failRow(table, r) {
			return 0, fmt.Errorf("%w: fake: insert row %d into %s: constraint violated", storage.ErrBatchWrite, i, table)
		}
	}
	tbl, ok := t.tables[table]
	if !ok {
		tbl = &fakeTable{}
		t.tables[table] = tbl
	}
	tbl.cols = columns
	tbl.rows = append(tbl.rows, rows...)
	return int64(len(rows)), nil
}

func (t *fakeTarget) Erase(ctx context.Context, table string) (int64, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.erases = append(t.erases, table)
	if t.eraseErr != nil {
		return 0, t.eraseErr
	}
	tbl, ok := t.tables[table]
	if !ok {
		return 0, nil
	}
	n := int64(len(tbl.rows))
	tbl.rows = nil
	return n, nil
}

func (t *fakeTarget) Ping(ctx context.Context) error { return t.pingErr }

func (t *fakeTarget) rowsOf(table string) [][]any {
	t.mu.Lock()
	defer t.mu.Unlock()
	if tbl, ok := t.tables[table]; ok {
		return tbl.rows
	}
	return nil
}

func (t *fakeTarget) touched(table string) bool {
	for _, c := range t.copies {
		if c.table == table {
			return true
		}
	}
	for _, e := range t.erases {
		if e == table {
			return true
		}
	}
	return false
}

// recordingProgress captures progress notifications.
type recordingProgress struct {
	started  []string
	batches  []int64
	finished []Outcome
}

func (p *recordingProgress) TableStarted(target string, total int64) {
	p.started = append(p.started, target)
}

func (p *recordingProgress) BatchDone(target string, batch int, rows, migrated, total int64) {
	p.batches = append(p.batches, rows)
}

func (p *recordingProgress) TableDone(o Outcome) { p.finished = append(p.finished, o) }
