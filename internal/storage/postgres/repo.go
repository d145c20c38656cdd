// Package postgres implements storage.Repository for Postgres using pgx v5.
// Batches are written with the COPY protocol inside one transaction so a
// batch either lands whole or not at all.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"tablemigrate/internal/storage"
	"tablemigrate/internal/storage/sqlbase"
)

// Config holds Postgres repository configuration.
type Config struct {
	DSN string // connection string for pgxpool
}

// Dialect is used to build count, page and delete statements. Postgres
// shares the LIMIT/OFFSET spelling with SQLite but binds as $n.
var Dialect = sqlbase.Dialect{
	Name:  "postgres",
	Quote: sqlbase.DoubleQuote,
	Bind:  sqlbase.DollarBind,
	Page:  sqlbase.LimitOffset,
	ListTablesSQL: `SELECT table_schema || '.' || table_name
FROM information_schema.tables
WHERE table_type = 'BASE TABLE'
  AND table_schema NOT IN ('pg_catalog', 'information_schema')
ORDER BY table_schema, table_name`,
}

// Repository is a Postgres-backed implementation of storage.Repository.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository opens a pool, pings it and returns a Close function for cleanup.
func NewRepository(ctx context.Context, cfg Config) (*Repository, func(), error) {
	if cfg.DSN == "" {
		return nil, nil, fmt.Errorf("%w: postgres: empty DSN", storage.ErrConnectivity)
	}
	pool, err := pgxpool.New(ctx, cfg.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: pgxpool: %w", storage.ErrConnectivity, err)
	}
	r := &Repository{pool: pool}
	if err := r.Ping(ctx); err != nil {
		pool.Close()
		return nil, nil, err
	}
	return r, func() { pool.Close() }, nil
}

// Ping implements storage.Repository.
func (r *Repository) Ping(ctx context.Context) error {
	if err := r.pool.Ping(ctx); err != nil {
		return fmt.Errorf("%w: postgres: ping: %w", storage.ErrConnectivity, err)
	}
	return nil
}

// ListTables implements storage.Source.
func (r *Repository) ListTables(ctx context.Context) ([]string, error) {
	rows, err := r.pool.Query(ctx, Dialect.ListTablesSQL)
	if err != nil {
		return nil, fmt.Errorf("%w: postgres: list tables: %w", storage.ErrQuery, err)
	}
	names, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("%w: postgres: list tables: %w", storage.ErrQuery, err)
	}
	return names, nil
}

// CountRows implements storage.Source.
func (r *Repository) CountRows(ctx context.Context, table, filter string) (int64, error) {
	var n int64
	if err := r.pool.QueryRow(ctx, Dialect.CountSQL(table, filter)).Scan(&n); err != nil {
		return 0, fmt.Errorf("%w: postgres: count %s: %w", storage.ErrQuery, table, err)
	}
	return n, nil
}

// ReadBatch implements storage.Source.
func (r *Repository) ReadBatch(ctx context.Context, q storage.PageQuery) (*storage.Batch, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	query, args := Dialect.PageSQL(q.Table, q.Filter, q.OrderBy, q.Offset, q.Limit)
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: postgres: read %s at offset %d: %w", storage.ErrQuery, q.Table, q.Offset, err)
	}
	defer rows.Close()

	fds := rows.FieldDescriptions()
	b := &storage.Batch{Columns: make([]string, len(fds))}
	for i, fd := range fds {
		b.Columns[i] = fd.Name
	}
	for rows.Next() {
		vals, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("%w: postgres: read %s at offset %d: %w", storage.ErrQuery, q.Table, q.Offset, err)
		}
		b.Rows = append(b.Rows, vals)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: postgres: read %s at offset %d: %w", storage.ErrQuery, q.Table, q.Offset, err)
	}
	return b, nil
}

// CopyFrom implements storage.Target. The rows are sent with COPY inside a
// transaction; a failure on any row rolls the whole call back.
func (r *Repository) CopyFrom(ctx context.Context, table string, columns []string, rows [][]any) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	if len(columns) == 0 {
		return 0, fmt.Errorf("%w: postgres: CopyFrom: columns must not be empty", storage.ErrBatchWrite)
	}
	for i, row := range rows {
		if len(row) != len(columns) {
			return 0, fmt.Errorf("%w: postgres: row %d has %d values for %d columns", storage.ErrBatchWrite, i, len(row), len(columns))
		}
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("%w: postgres: begin tx: %w", storage.ErrConnectivity, err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	n, err := tx.CopyFrom(ctx, tableIdent(table), columns, pgx.CopyFromRows(rows))
	if err != nil {
		return 0, fmt.Errorf("%w: postgres: copy into %s: %w", storage.ErrBatchWrite, table, pgDetail(err))
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("%w: postgres: commit: %w", storage.ErrBatchWrite, err)
	}
	return n, nil
}

// Erase implements storage.Target.
func (r *Repository) Erase(ctx context.Context, table string) (int64, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("%w: postgres: begin tx: %w", storage.ErrErase, err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	tag, err := tx.Exec(ctx, Dialect.DeleteSQL(table))
	if err != nil {
		return 0, fmt.Errorf("%w: postgres: delete from %s: %w", storage.ErrErase, table, err)
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("%w: postgres: commit: %w", storage.ErrErase, err)
	}
	return tag.RowsAffected(), nil
}

// pgDetail folds the server's detail line into the error text when present.
func pgDetail(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Detail != "" {
		return fmt.Errorf("%w (%s, %s)", err, pgErr.Detail, pgErr.SQLState())
	}
	return err
}

// tableIdent converts "schema.table" into a pgx.Identifier. Unquoted parts are
// folded to lower case the way Postgres folds them in plain SQL, so the
// same table name works in CopyFrom and in the verbatim statements.
func tableIdent(name string) pgx.Identifier {
	parts := strings.Split(name, ".")
	id := make(pgx.Identifier, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if len(p) >= 2 && strings.HasPrefix(p, `"`) && strings.HasSuffix(p, `"`) {
			id = append(id, strings.ReplaceAll(p[1:len(p)-1], `""`, `"`))
			continue
		}
		id = append(id, strings.ToLower(p))
	}
	return id
}
