// Package oracle provides an Oracle-backed storage.Repository using the pure
// Go go-ora driver and the shared database/sql implementation.
package oracle

import (
	"context"
	"fmt"
	"strings"

	_ "github.com/sijms/go-ora/v2"

	"tablemigrate/internal/storage"
	"tablemigrate/internal/storage/sqlbase"
)

// Config holds Oracle repository configuration.
type Config struct {
	DSN string // e.g. "oracle://user:pw@host:1521/service"
}

// Dialect is the Oracle spelling of the portable SQL repository. OFFSET/FETCH
// needs 12c or later.
var Dialect = sqlbase.Dialect{
	Name:          "oracle",
	Quote:         Quote,
	Bind:          sqlbase.ColonBind,
	Page:          sqlbase.OffsetFetch,
	ListTablesSQL: `SELECT table_name FROM user_tables ORDER BY table_name`,
}

// Quote upper-cases and double-quotes a column name, matching how Oracle
// stores unquoted identifiers.
func Quote(id string) string {
	return `"` + strings.ReplaceAll(strings.ToUpper(id), `"`, `""`) + `"`
}

// NewRepository constructs a Repository and returns a Close function for cleanup.
func NewRepository(ctx context.Context, cfg Config) (*sqlbase.Repository, func(), error) {
	if !strings.HasPrefix(strings.ToLower(cfg.DSN), "oracle://") {
		return nil, nil, fmt.Errorf("%w: oracle dsn must start with oracle://", storage.ErrConnectivity)
	}
	r, err := sqlbase.Open(ctx, "oracle", cfg.DSN, Dialect)
	if err != nil {
		return nil, nil, err
	}
	return r, func() { r.Close() }, nil
}
