// Package sqlite implements a SQLite-backed storage.Repository on top of
// modernc.org/sqlite (pure Go, no cgo).
package sqlite

// Config holds SQLite repository configuration derived from storage.Config.
type Config struct {
	// DSN is a SQLite connection string or file path, e.g.:
	//   "file:migrate.db?_pragma=busy_timeout(5000)"
	//   ":memory:"
	DSN string
}
