package migrate

import (
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/zeebo/xxh3"
)

// Outcome is the result of migrating one table.
type Outcome struct {
	Source string
	Target string

	Total    int64 // rows matching the filter when counted
	Migrated int64 // rows committed to the target
	Skipped  int64 // rows read but not written because no column was usable
	Batches  int   // committed batches

	Erased       int64  // rows removed by clear-target
	EraseWarning string // set when clearing failed and the load went ahead

	OK       bool
	Err      error
	Duration time.Duration

	// Digest is an xxh3 hash over every committed value in write order.
	// Two runs that wrote the same data produce the same digest.
	Digest uint64
}

// Report collects the outcomes of one multi-table run in mapping order.
type Report struct {
	RunID    string
	Started  time.Time
	Duration time.Duration
	Outcomes []Outcome
}

func newReport() *Report {
	return &Report{RunID: uuid.NewString(), Started: time.Now()}
}

// Succeeded returns the number of tables migrated without error.
func (r *Report) Succeeded() int {
	n := 0
	for _, o := range r.Outcomes {
		if o.OK {
			n++
		}
	}
	return n
}

// Failed returns the number of tables that failed.
func (r *Report) Failed() int { return len(r.Outcomes) - r.Succeeded() }

// Rows returns the rows migrated across all tables.
func (r *Report) Rows() int64 {
	var n int64
	for _, o := range r.Outcomes {
		n += o.Migrated
	}
	return n
}

// digestRows folds rows into h. Values are separated by 0x1f and rows by
// 0x1e; NULL is written as a lone 0x00.
func digestRows(h *xxh3.Hasher, rows [][]any) {
	var buf []byte
	for _, row := range rows {
		for _, v := range row {
			buf = appendValue(buf[:0], v)
			buf = append(buf, 0x1f)
			_, _ = h.Write(buf)
		}
		_, _ = h.Write([]byte{0x1e})
	}
}

func appendValue(b []byte, v any) []byte {
	switch t := v.(type) {
	case nil:
		return append(b, 0x00)
	case string:
		return append(b, t...)
	case []byte:
		return append(b, t...)
	case int64:
		return strconv.AppendInt(b, t, 10)
	case float64:
		return strconv.AppendFloat(b, t, 'g', -1, 64)
	case bool:
		return strconv.AppendBool(b, t)
	case time.Time:
		return t.UTC().AppendFormat(b, time.RFC3339Nano)
	default:
		return fmt.Append(b, t)
	}
}
