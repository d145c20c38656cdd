package storage

import "errors"

// Error taxonomy shared by every backend. Backends wrap the driver error
// together with one of these sentinels so callers can branch with errors.Is
// while the driver detail stays reachable through errors.As.
var (
	// ErrConnectivity means a connection or transaction could not be opened.
	ErrConnectivity = errors.New("connectivity error")

	// ErrQuery means a count, page or catalog query failed (malformed filter,
	// missing table, ...).
	ErrQuery = errors.New("query error")

	// ErrBatchWrite means a row insert or the batch commit failed; the batch
	// transaction has been rolled back.
	ErrBatchWrite = errors.New("batch write error")

	// ErrErase means clearing a target table failed; the delete transaction
	// has been rolled back.
	ErrErase = errors.New("erase error")
)
