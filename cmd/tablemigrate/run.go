package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"tablemigrate/internal/mapping"
)

// errTablesFailed makes the process exit non-zero when any table failed.
var errTablesFailed = errors.New("one or more tables failed")

type cmdRun struct {
	global *cmdGlobal

	flagProgress bool
}

func (c *cmdRun) Command() *cobra.Command {
	cmd := &cobra.Command{}
	cmd.Use = "run"
	cmd.Short = "Migrate every active mapping"
	cmd.Long = `Description:
  Migrate every active mapping

  Reads the mapping file, then migrates each active mapping in file order.
  A table that fails is reported and the run moves on to the next one. The
  command exits with status 1 when any table failed.
`
	cmd.Args = cobra.NoArgs
	cmd.RunE = c.Run
	cmd.Flags().BoolVar(&c.flagProgress, "progress", false, "Draw a progress bar per table instead of logging each batch")

	return cmd
}

func (c *cmdRun) Run(cmd *cobra.Command, args []string) error {
	g := c.global
	if g.cfg.Mappings == "" {
		return fmt.Errorf("no mapping file configured (--mappings or TABLEMIGRATE_MAPPINGS)")
	}

	maps, warns, err := mapping.Load(g.cfg.Mappings)
	if err != nil {
		return err
	}
	logMappingWarnings(g.log, warns)

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
	rep, err := m.MigrateFromMappings(ctx, maps, g.cfg.ClearTarget)
	if rep != nil {
		if rerr := renderReport(cmd.OutOrStdout(), rep); rerr != nil {
			return rerr
		}
	}
	if err != nil {
		return err
	}
	if rep.Failed() > 0 {
		return fmt.Errorf("%w: %d of %d", errTablesFailed, rep.Failed(), len(rep.Outcomes))
	}
	return nil
}
