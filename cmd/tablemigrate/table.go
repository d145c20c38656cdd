package main

import (
	"errors"

	"github.com/spf13/cobra"

	"tablemigrate/internal/mapping"
	"tablemigrate/internal/migrate"
)

type cmdTable struct {
	global *cmdGlobal

	flagFilter        string
	flagOrderBy       string
	flagSourceColumns []string
	flagTargetColumns []string
	flagEmptyColumns  []string
	flagReplacement   string
	flagClear         bool
	flagProgress      bool
}

func (c *cmdTable) Command() *cobra.Command {
	cmd := &cobra.Command{}
	cmd.Use = "table <source-table> <target-table>"
	cmd.Short = "Migrate a single table"
	cmd.Long = `Description:
  Migrate a single table

  Copies the rows of one source table matching --filter into a target table.
  --source-columns and --target-columns rename columns pairwise; columns not
  listed keep their source name.
`
	cmd.Args = cobra.ExactArgs(2)
	cmd.RunE = c.Run
	cmd.Flags().StringVar(&c.flagFilter, "filter", "", "Predicate appended after WHERE")
	cmd.Flags().StringVar(&c.flagOrderBy, "order-by", "", "ORDER BY clause for stable paging")
	cmd.Flags().StringSliceVar(&c.flagSourceColumns, "source-columns", nil, "Source column names to rename")
	cmd.Flags().StringSliceVar(&c.flagTargetColumns, "target-columns", nil, "Target names for --source-columns, in the same order")
	cmd.Flags().StringSliceVar(&c.flagEmptyColumns, "empty-to-replacement", nil, "Source columns whose blank text is replaced")
	cmd.Flags().StringVar(&c.flagReplacement, "replacement-value", mapping.DefaultReplacementValue, "Value written in place of blank text")
	cmd.Flags().BoolVar(&c.flagClear, "clear", false, "Erase the target table first")
	cmd.Flags().BoolVar(&c.flagProgress, "progress", false, "Draw a progress bar instead of logging each batch")

	return cmd
}

func (c *cmdTable) Run(cmd *cobra.Command, args []string) error {
	g := c.global

	req := migrate.TableRequest{
		Source:                    args[0],
		Target:                    args[1],
		Filter:                    c.flagFilter,
		OrderBy:                   c.flagOrderBy,
		EmptyToReplacementColumns: mapping.NewColumnSet(c.flagEmptyColumns...),
		ReplacementValue:          c.flagReplacement,
	}
	cm, err := mapping.NewColumnMap(c.flagSourceColumns, c.flagTargetColumns)
	var verr *mapping.ValidationError
	if errors.As(err, &verr) {
		verr.Mapping = req.Source + " -> " + req.Target
		logMappingWarnings(g.log, []*mapping.ValidationError{verr})
	}
	req.ColumnMap = cm

	ctx := cmd.Context()
	src, err := g.openSource(ctx)
	if err != nil {
		return err
	}
	dst, err := g.openTarget(ctx)
	if err != nil {
		return err
	}
	m, err := g.migrator(src, dst, g.progress(c.flagProgress))
	if err != nil {
		return err
	}

	var erased int64
	if c.flagClear || g.cfg.ClearTarget {
		if erased, err = m.EraseTarget(ctx, req.Target); err != nil {
			return err
		}
	}

	out, err := m.MigrateTable(ctx, req)
	out.Erased = erased
	if rerr := renderOutcomes(cmd.OutOrStdout(), []migrate.Outcome{out}); rerr != nil {
		return rerr
	}
	return err
}
