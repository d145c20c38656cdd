// Package mysql provides a MySQL-backed storage.Repository built on
// go-sql-driver/mysql and the shared database/sql implementation.
package mysql

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-sql-driver/mysql"

	"tablemigrate/internal/storage"
	"tablemigrate/internal/storage/sqlbase"
)

// Config holds MySQL repository configuration.
type Config struct {
	DSN string // go-sql-driver DSN, e.g. "user:pw@tcp(host:3306)/db"
}

// Dialect is the MySQL spelling of the portable SQL repository. Tables are
// listed from the connection's current database.
var Dialect = sqlbase.Dialect{
	Name:  "mysql",
	Quote: sqlbase.BacktickQuote,
	Bind:  sqlbase.QuestionBind,
	Page:  sqlbase.LimitOffset,
	ListTablesSQL: `SELECT table_name FROM information_schema.tables
		WHERE table_schema = DATABASE() AND table_type = 'BASE TABLE'
		ORDER BY table_name`,
	ScanValue: textAsString,
}

// binaryTypes are the column types whose []byte values are real bytes.
var binaryTypes = map[string]struct{}{
	"BINARY": {}, "VARBINARY": {}, "BIT": {}, "GEOMETRY": {},
	"BLOB": {}, "TINYBLOB": {}, "MEDIUMBLOB": {}, "LONGBLOB": {},
}

// textAsString turns the driver's []byte text values into strings so they
// are blank-checked and written as text.
func textAsString(dbType string, v any) any {
	b, ok := v.([]byte)
	if !ok {
		return v
	}
	if _, bin := binaryTypes[strings.ToUpper(dbType)]; bin {
		return v
	}
	return string(b)
}

// NewRepository constructs a Repository and returns a Close function for cleanup.
func NewRepository(ctx context.Context, cfg Config) (*sqlbase.Repository, func(), error) {
	if _, err := mysql.ParseDSN(cfg.DSN); err != nil {
		return nil, nil, fmt.Errorf("%w: mysql dsn: %w", storage.ErrConnectivity, err)
	}
	r, err := sqlbase.Open(ctx, "mysql", cfg.DSN, Dialect)
	if err != nil {
		return nil, nil, err
	}
	return r, func() { r.Close() }, nil
}
