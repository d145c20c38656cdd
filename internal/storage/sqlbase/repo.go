package sqlbase

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"tablemigrate/internal/storage"
)

// pingTimeout bounds the connectivity check done on Open and Ping.
const pingTimeout = 5 * time.Second

// Repository implements storage.Repository over database/sql.
type Repository struct {
	db      *sql.DB
	dialect Dialect
}

var _ storage.Repository = (*Repository)(nil)

// Open opens driverName/dsn and pings it. A failed ping is reported as
// storage.ErrConnectivity.
func Open(ctx context.Context, driverName, dsn string, d Dialect) (*Repository, error) {
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: open: %w", storage.ErrConnectivity, d.Name, err)
	}
	r := New(db, d)
	if err := r.Ping(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return r, nil
}

// New wraps an existing *sql.DB.
func New(db *sql.DB, d Dialect) *Repository {
	return &Repository{db: db, dialect: d}
}

// DB exposes the underlying pool, mostly for tests and fixtures.
func (r *Repository) DB() *sql.DB { return r.db }

// Dialect returns the dialect the repository was built with.
func (r *Repository) Dialect() Dialect { return r.dialect }

// Ping implements storage.Repository.
func (r *Repository) Ping(ctx context.Context) error {
	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := r.db.PingContext(pingCtx); err != nil {
		return fmt.Errorf("%w: %s: ping: %w", storage.ErrConnectivity, r.dialect.Name, err)
	}
	return nil
}

// Close implements storage.Repository.
func (r *Repository) Close() { _ = r.db.Close() }

// ListTables implements storage.Source.
func (r *Repository) ListTables(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, r.dialect.ListTablesSQL)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: list tables: %w", storage.ErrQuery, r.dialect.Name, err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("%w: %s: list tables: %w", storage.ErrQuery, r.dialect.Name, err)
		}
		out = append(out, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %s: list tables: %w", storage.ErrQuery, r.dialect.Name, err)
	}
	return out, nil
}

// CountRows implements storage.Source.
func (r *Repository) CountRows(ctx context.Context, table, filter string) (int64, error) {
	var n int64
	if err := r.db.QueryRowContext(ctx, r.dialect.CountSQL(table, filter)).Scan(&n); err != nil {
		return 0, fmt.Errorf("%w: %s: count %s: %w", storage.ErrQuery, r.dialect.Name, table, err)
	}
	return n, nil
}

// ReadBatch implements storage.Source.
func (r *Repository) ReadBatch(ctx context.Context, q storage.PageQuery) (*storage.Batch, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	query, args := r.dialect.PageSQL(q.Table, q.Filter, q.OrderBy, q.Offset, q.Limit)
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: read %s at offset %d: %w", storage.ErrQuery, r.dialect.Name, q.Table, q.Offset, err)
	}
	defer rows.Close()

	b, err := r.dialect.ScanBatch(rows)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: read %s at offset %d: %w", storage.ErrQuery, r.dialect.Name, q.Table, q.Offset, err)
	}
	return b, nil
}

// ScanBatch drains rows into a Batch. Values are scanned as-is unless the
// dialect has a ScanValue hook.
func (d Dialect) ScanBatch(rows *sql.Rows) (*storage.Batch, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	var dbTypes []string
	if d.ScanValue != nil {
		cts, err := rows.ColumnTypes()
		if err != nil {
			return nil, err
		}
		dbTypes = make([]string, len(cts))
		for i, ct := range cts {
			dbTypes[i] = ct.DatabaseTypeName()
		}
	}
	b := &storage.Batch{Columns: cols}
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		if dbTypes != nil {
			for i := range vals {
				vals[i] = d.ScanValue(dbTypes[i], vals[i])
			}
		}
		b.Rows = append(b.Rows, vals)
	}
	return b, rows.Err()
}

// CopyFrom implements storage.Target: one transaction, one prepared INSERT,
// one Exec per row. Any failure rolls back every row of this call.
func (r *Repository) CopyFrom(ctx context.Context, table string, columns []string, rows [][]any) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	if len(columns) == 0 {
		return 0, fmt.Errorf("%w: %s: CopyFrom: columns must not be empty", storage.ErrBatchWrite, r.dialect.Name)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: begin tx: %w", storage.ErrConnectivity, r.dialect.Name, err)
	}
	rollback := func() { _ = tx.Rollback() }

	stmt, err := tx.PrepareContext(ctx, r.dialect.InsertSQL(table, columns))
	if err != nil {
		rollback()
		return 0, fmt.Errorf("%w: %s: prepare insert into %s: %w", storage.ErrBatchWrite, r.dialect.Name, table, err)
	}

	for i, row := range rows {
		if len(row) != len(columns) {
			_ = stmt.Close()
			rollback()
			return 0, fmt.Errorf("%w: %s: row %d has %d values for %d columns", storage.ErrBatchWrite, r.dialect.Name, i, len(row), len(columns))
		}
		if _, err := stmt.ExecContext(ctx, row...); err != nil {
			_ = stmt.Close()
			rollback()
			return 0, fmt.Errorf("%w: %s: insert row %d into %s: %w", storage.ErrBatchWrite, r.dialect.Name, i, table, err)
		}
	}
	_ = stmt.Close()

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("%w: %s: commit: %w", storage.ErrBatchWrite, r.dialect.Name, err)
	}
	return int64(len(rows)), nil
}

// Erase implements storage.Target.
func (r *Repository) Erase(ctx context.Context, table string) (int64, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: begin tx: %w", storage.ErrErase, r.dialect.Name, err)
	}
	res, err := tx.ExecContext(ctx, r.dialect.DeleteSQL(table))
	if err != nil {
		_ = tx.Rollback()
		return 0, fmt.Errorf("%w: %s: delete from %s: %w", storage.ErrErase, r.dialect.Name, table, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		_ = tx.Rollback()
		return 0, fmt.Errorf("%w: %s: rows affected: %w", storage.ErrErase, r.dialect.Name, err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("%w: %s: commit: %w", storage.ErrErase, r.dialect.Name, err)
	}
	return n, nil
}
