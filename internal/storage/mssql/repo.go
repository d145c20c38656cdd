// Package mssql implements a Microsoft SQL Server repository on top of
// go-mssqldb. Reads page with OFFSET/FETCH; writes use one prepared INSERT
// per batch inside a single transaction.
package mssql

import (
	"context"
	"fmt"

	_ "github.com/microsoft/go-mssqldb"
	"github.com/microsoft/go-mssqldb/msdsn"

	"tablemigrate/internal/storage"
	"tablemigrate/internal/storage/sqlbase"
)

// Config holds MSSQL repository configuration.
type Config struct {
	DSN string
}

// Dialect is the SQL Server spelling of the portable SQL repository.
var Dialect = sqlbase.Dialect{
	Name:         "mssql",
	Quote:        sqlbase.BracketQuote,
	Bind:         sqlbase.AtPBind,
	Page:         sqlbase.OffsetFetch,
	DefaultOrder: "(SELECT NULL)",
	ListTablesSQL: `SELECT TABLE_SCHEMA + '.' + TABLE_NAME
		FROM INFORMATION_SCHEMA.TABLES
		WHERE TABLE_TYPE = 'BASE TABLE'
		ORDER BY TABLE_SCHEMA, TABLE_NAME`,
}

// NewRepository constructs a Repository and returns a Close function for cleanup.
func NewRepository(ctx context.Context, cfg Config) (*sqlbase.Repository, func(), error) {
	// Validate DSN early to fail fast on obvious mistakes.
	if _, err := msdsn.Parse(cfg.DSN); err != nil {
		return nil, nil, fmt.Errorf("%w: mssql dsn: %w", storage.ErrConnectivity, err)
	}
	r, err := sqlbase.Open(ctx, "sqlserver", cfg.DSN, Dialect)
	if err != nil {
		return nil, nil, err
	}
	return r, func() { r.Close() }, nil
}
