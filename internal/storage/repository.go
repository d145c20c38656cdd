// Package storage contains the storage-agnostic contracts used by the
// migration engine, plus a small factory registry so the CLI can open a
// backend by kind ("postgres", "mssql", "sqlite", "mysql", "oracle") without
// importing drivers directly.
//
// Backends register themselves from init(); import storage/all to enable all
// of them.
package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Batch is one page of source rows. Rows are aligned to Columns; a nil
// element is SQL NULL.
type Batch struct {
	Columns []string
	Rows    [][]any
}

// Len returns the number of rows in the batch.
func (b *Batch) Len() int {
	if b == nil {
		return 0
	}
	return len(b.Rows)
}

// Source is the read side of a migration.
type Source interface {
	// ListTables returns the user tables visible to the connection.
	ListTables(ctx context.Context) ([]string, error)

	// CountRows counts rows of table matching filter (empty = all rows).
	CountRows(ctx context.Context, table, filter string) (int64, error)

	// ReadBatch returns at most limit rows starting at offset. Rows are
	// ordered by orderBy when it is non-empty; otherwise the order is
	// whatever the database returns and paging is not stable under
	// concurrent writes.
	ReadBatch(ctx context.Context, q PageQuery) (*Batch, error)
}

// PageQuery selects one page of a table.
type PageQuery struct {
	Table   string
	Filter  string // appended verbatim after WHERE
	OrderBy string // appended verbatim after ORDER BY
	Offset  int64
	Limit   int64
}

// Validate checks the paging bounds.
func (q PageQuery) Validate() error {
	if q.Table == "" {
		return fmt.Errorf("page query: table must not be empty")
	}
	if q.Offset < 0 {
		return fmt.Errorf("page query: offset must be >= 0, got %d", q.Offset)
	}
	if q.Limit <= 0 {
		return fmt.Errorf("page query: limit must be > 0, got %d", q.Limit)
	}
	return nil
}

// Target is the write side of a migration.
type Target interface {
	// CopyFrom inserts rows (aligned to columns) into table inside a single
	// transaction. Either every row is committed or none is.
	CopyFrom(ctx context.Context, table string, columns []string, rows [][]any) (int64, error)

	// Erase deletes every row of table in its own transaction and returns
	// the number of rows removed.
	Erase(ctx context.Context, table string) (int64, error)
}

// Repository is a database endpoint that can serve as either side of a
// migration.
type Repository interface {
	Source
	Target

	// Ping verifies that a connection can be established.
	Ping(ctx context.Context) error
	Close()
}

// Config selects and configures a backend.
type Config struct {
	Kind string // registered backend name
	DSN  string // driver-specific connection string
}

// Factory opens a Repository for a Config.
type Factory func(ctx context.Context, cfg Config) (Repository, error)

var (
	mu        sync.RWMutex
	factories = map[string]Factory{}
)

// Register installs (or replaces) the factory for kind.
func Register(kind string, f Factory) {
	mu.Lock()
	defer mu.Unlock()
	factories[kind] = f
}

// New opens a Repository using the factory registered for cfg.Kind.
func New(ctx context.Context, cfg Config) (Repository, error) {
	mu.RLock()
	f, ok := factories[cfg.Kind]
	mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unsupported storage.kind=%s", cfg.Kind)
	}
	return f(ctx, cfg)
}

// ListKinds returns the registered kinds, sorted. The slice is a copy.
func ListKinds() []string {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]string, 0, len(factories))
	for k := range factories {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
