package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

type cmdErase struct {
	global *cmdGlobal
}

func (c *cmdErase) Command() *cobra.Command {
	cmd := &cobra.Command{}
	cmd.Use = "erase <target-table>..."
	cmd.Short = "Delete every row of target tables"
	cmd.Long = `Description:
  Delete every row of target tables

  Each table is cleared in its own transaction. The command stops at the
  first table that cannot be cleared.
`
	cmd.Args = cobra.MinimumNArgs(1)
	cmd.RunE = c.Run

	return cmd
}

func (c *cmdErase) Run(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	dst, err := c.global.openTarget(ctx)
	if err != nil {
		return err
	}
	m, err := c.global.migrator(nil, dst, nil)
	if err != nil {
		return err
	}
	for _, table := range args {
		n, err := m.EraseTarget(ctx, table)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %d rows deleted\n", table, n)
	}
	return nil
}
