package main

import (
	"fmt"
	"io"
	"time"

	"github.com/schollz/progressbar/v3"

	"tablemigrate/internal/migrate"
)

// barProgress draws one progress bar per table.
type barProgress struct {
	w   io.Writer
	bar *progressbar.ProgressBar
}

var _ migrate.Progress = (*barProgress)(nil)

func newBarProgress(w io.Writer) *barProgress {
	return &barProgress{w: w}
}

func (p *barProgress) TableStarted(target string, total int64) {
	p.bar = nil
	if total <= 0 {
		return
	}
	p.bar = progressbar.NewOptions64(total,
		progressbar.OptionSetWriter(p.w),
		progressbar.OptionSetDescription(target),
		progressbar.OptionSetWidth(30),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("rows"),
		progressbar.OptionThrottle(100*time.Millisecond),
		progressbar.OptionOnCompletion(func() { fmt.Fprintln(p.w) }),
	)
}

func (p *barProgress) BatchDone(target string, batch int, rows, migrated, total int64) {
	if p.bar != nil {
		_ = p.bar.Add64(rows)
	}
}

func (p *barProgress) TableDone(o migrate.Outcome) {
	if p.bar == nil {
		return
	}
	if o.OK && o.Migrated+o.Skipped >= o.Total {
		_ = p.bar.Finish()
	} else {
		// leave the partial bar visible
		fmt.Fprintln(p.w)
	}
	p.bar = nil
}
