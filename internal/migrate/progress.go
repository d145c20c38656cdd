package migrate

import (
	"time"

	"github.com/sirupsen/logrus"
)

// Progress receives per-table and per-batch notifications. Calls happen on
// the migrating goroutine, one at a time.
type Progress interface {
	TableStarted(target string, total int64)
	// BatchDone is called after each committed batch with the rows it
	// wrote and the running total for the table.
	BatchDone(target string, batch int, rows, migrated, total int64)
	TableDone(o Outcome)
}

// NopProgress ignores every notification.
type NopProgress struct{}

func (NopProgress) TableStarted(string, int64)                 {}
func (NopProgress) BatchDone(string, int, int64, int64, int64) {}
func (NopProgress) TableDone(Outcome)                          {}

// LogProgress logs one line per committed batch with the rows/sec since the
// previous batch of the same table.
type LogProgress struct {
	Log logrus.FieldLogger

	start     time.Time
	last      time.Time
	lastTotal int64
}

// NewLogProgress returns a LogProgress writing to log.
func NewLogProgress(log logrus.FieldLogger) *LogProgress {
	return &LogProgress{Log: log}
}

func (p *LogProgress) TableStarted(target string, total int64) {
	p.start = time.Now()
	p.last = p.start
	p.lastTotal = 0
	p.Log.WithFields(logrus.Fields{"target": target, "total": total}).Info("migrating table")
}

func (p *LogProgress) BatchDone(target string, batch int, rows, migrated, total int64) {
	now := time.Now()
	sinceLast := now.Sub(p.last)
	rps := float64(0)
	if sinceLast > 0 {
		rps = float64(migrated-p.lastTotal) / sinceLast.Seconds()
	}
	p.Log.WithField("target", target).Infof(
		"batch #%d: rps=%.0f inserted=%d total_inserted=%d/%d elapsed=%s since_last=%s",
		batch,
		rps,
		rows,
		migrated,
		total,
		now.Sub(p.start).Truncate(time.Millisecond),
		sinceLast.Truncate(time.Millisecond),
	)
	p.last = now
	p.lastTotal = migrated
}

func (p *LogProgress) TableDone(o Outcome) {}
