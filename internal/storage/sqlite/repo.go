package sqlite

import (
	"context"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"

	"tablemigrate/internal/storage"
	"tablemigrate/internal/storage/sqlbase"
)

// Dialect is the SQLite spelling of the portable SQL repository.
var Dialect = sqlbase.Dialect{
	Name:  "sqlite",
	Quote: sqlbase.DoubleQuote,
	Bind:  sqlbase.QuestionBind,
	Page:  sqlbase.LimitOffset,
	ListTablesSQL: `SELECT name FROM sqlite_master
		WHERE type = 'table' AND name NOT LIKE 'sqlite_%'
		ORDER BY name`,
}

// NewRepository opens a SQLite database and returns the repository plus a
// Close function for cleanup.
//
// The pool is limited to one connection: SQLite serializes writers anyway,
// and ":memory:" databases exist per connection, so a single connection
// keeps every statement on the same database.
func NewRepository(ctx context.Context, cfg Config) (*sqlbase.Repository, func(), error) {
	if strings.TrimSpace(cfg.DSN) == "" {
		return nil, nil, fmt.Errorf("%w: sqlite: DSN must not be empty", storage.ErrConnectivity)
	}

	r, err := sqlbase.Open(ctx, "sqlite", cfg.DSN, Dialect)
	if err != nil {
		return nil, nil, err
	}
	db := r.DB()
	db.SetMaxOpenConns(1)

	// Enable foreign keys by default; ignore error if the build lacks them.
	_, _ = db.ExecContext(ctx, "PRAGMA foreign_keys = ON;")

	return r, func() { r.Close() }, nil
}
