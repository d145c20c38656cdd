package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

type cmdTables struct {
	global *cmdGlobal
}

func (c *cmdTables) Command() *cobra.Command {
	cmd := &cobra.Command{}
	cmd.Use = "tables"
	cmd.Short = "List the tables of the source database"
	cmd.Args = cobra.NoArgs
	cmd.RunE = c.Run

	return cmd
}

func (c *cmdTables) Run(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	src, err := c.global.openSource(ctx)
	if err != nil {
		return err
	}
	m, err := c.global.migrator(src, nil, nil)
	if err != nil {
		return err
	}
	tables, err := m.ListSourceTables(ctx)
	if err != nil {
		return err
	}
	for _, t := range tables {
		fmt.Fprintln(cmd.OutOrStdout(), t)
	}
	return nil
}
