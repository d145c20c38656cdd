package oracle

import (
	"context"

	"tablemigrate/internal/storage"
	"tablemigrate/internal/storage/sqlbase"
)

// newRepository is a test hook that points to NewRepository by default.
var newRepository = NewRepository

var _ storage.Repository = (*wrappedRepo)(nil)

func init() {
	storage.Register("oracle", func(ctx context.Context, cfg storage.Config) (storage.Repository, error) {
		r, closeFn, err := newRepository(ctx, Config{DSN: cfg.DSN})
		if err != nil {
			return nil, err
		}
		return &wrappedRepo{Repository: r, closeFn: closeFn}, nil
	})
}

type wrappedRepo struct {
	*sqlbase.Repository
	closeFn func()
}

func (w *wrappedRepo) Close() { w.closeFn() }
