package mssql

import (
	"context"

	"tablemigrate/internal/storage"
	"tablemigrate/internal/storage/sqlbase"
)

// newRepository is a test hook that points to NewRepository by default.
// Tests may replace this variable to avoid real DB connections.
var newRepository = NewRepository

var _ storage.Repository = (*wrappedRepo)(nil)

func init() {
	storage.Register("mssql", func(ctx context.Context, cfg storage.Config) (storage.Repository, error) {
		r, closeFn, err := newRepository(ctx, Config{DSN: cfg.DSN})
		if err != nil {
			return nil, err
		}
		return &wrappedRepo{Repository: r, closeFn: closeFn}, nil
	})
}

// wrappedRepo adapts *sqlbase.Repository to storage.Repository and provides Close.
type wrappedRepo struct {
	*sqlbase.Repository
	closeFn func()
}

func (w *wrappedRepo) Close() { w.closeFn() }
