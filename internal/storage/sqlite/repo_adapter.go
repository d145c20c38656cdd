package sqlite

import (
	"context"

	"tablemigrate/internal/storage"
	"tablemigrate/internal/storage/sqlbase"
)

// newRepository is a test hook that points to NewRepository by default.
// Tests may replace this variable to avoid opening real databases.
var newRepository = NewRepository

// wrappedRepo adapts *sqlbase.Repository to storage.Repository, making Close
// call the cleanup function returned by NewRepository.
type wrappedRepo struct {
	*sqlbase.Repository
	closeFn func()
}

// Close implements storage.Repository.Close.
func (w *wrappedRepo) Close() {
	if w.closeFn != nil {
		w.closeFn()
	}
}

var _ storage.Repository = (*wrappedRepo)(nil)

func init() {
	storage.Register("sqlite", func(ctx context.Context, cfg storage.Config) (storage.Repository, error) {
		r, closeFn, err := newRepository(ctx, Config{DSN: cfg.DSN})
		if err != nil {
			return nil, err
		}
		return &wrappedRepo{Repository: r, closeFn: closeFn}, nil
	})
}
