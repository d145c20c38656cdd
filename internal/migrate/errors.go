package migrate

import "fmt"

// Stage names the step of a table migration that failed.
type Stage string

const (
	StageValidate Stage = "validate"
	StageCount    Stage = "count"
	StageRead     Stage = "read"
	StageWrite    Stage = "write"
	StageErase    Stage = "erase"
)

// TableError is the error returned for a failed table. Unwrap exposes the
// underlying storage sentinel (storage.ErrQuery, storage.ErrBatchWrite, ...)
// and driver error.
type TableError struct {
	Source string
	Target string
	Stage  Stage
	Batch  int // 1-based batch number for read and write failures
	Err    error
}

func (e *TableError) Error() string {
	table := e.Target
	if e.Source != "" {
		table = e.Source + " -> " + e.Target
	}
	where := string(e.Stage)
	if e.Batch > 0 {
		where = fmt.Sprintf("%s batch %d", e.Stage, e.Batch)
	}
	return fmt.Sprintf("migrate %s: %s: %v", table, where, e.Err)
}

func (e *TableError) Unwrap() error { return e.Err }
