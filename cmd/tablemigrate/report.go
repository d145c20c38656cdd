package main

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"

	"tablemigrate/internal/migrate"
)

// renderOutcomes prints one row per table.
func renderOutcomes(w io.Writer, outcomes []migrate.Outcome) error {
	t := tablewriter.NewWriter(w)
	t.Header("Source", "Target", "Status", "Rows", "Skipped", "Batches", "Erased", "Duration", "Digest", "Detail")
	for _, o := range outcomes {
		status, detail, digest := "ok", o.EraseWarning, fmt.Sprintf("%016x", o.Digest)
		if !o.OK {
			status, digest = "FAILED", ""
			if o.Err != nil {
				detail = o.Err.Error()
			}
		}
		row := []string{
			o.Source,
			o.Target,
			status,
			strconv.FormatInt(o.Migrated, 10),
			strconv.FormatInt(o.Skipped, 10),
			strconv.Itoa(o.Batches),
			strconv.FormatInt(o.Erased, 10),
			o.Duration.Truncate(time.Millisecond).String(),
			digest,
			detail,
		}
		if err := t.Append(row); err != nil {
			return err
		}
	}
	return t.Render()
}

// renderReport prints the outcome table followed by a summary line.
func renderReport(w io.Writer, rep *migrate.Report) error {
	if err := renderOutcomes(w, rep.Outcomes); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "run %s: %d succeeded, %d failed, %d rows in %s\n",
		rep.RunID, rep.Succeeded(), rep.Failed(), rep.Rows(), rep.Duration.Truncate(time.Millisecond))
	return err
}
