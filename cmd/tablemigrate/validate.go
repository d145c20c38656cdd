package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"tablemigrate/internal/config"
	"tablemigrate/internal/mapping"
)

var errInvalidConfig = errors.New("configuration is invalid")

type cmdValidate struct {
	global *cmdGlobal
}

func (c *cmdValidate) Command() *cobra.Command {
	cmd := &cobra.Command{}
	cmd.Use = "validate"
	cmd.Short = "Check the run configuration and mapping file"
	cmd.Long = `Description:
  Check the run configuration and mapping file

  Nothing is connected to. Errors make the command exit with status 1;
  warnings are printed only.
`
	cmd.Args = cobra.NoArgs
	cmd.RunE = c.Run

	return cmd
}

func (c *cmdValidate) Run(cmd *cobra.Command, args []string) error {
	g := c.global
	w := cmd.OutOrStdout()

	issues := config.Validate(*g.cfg)
	if g.cfg.Mappings != "" {
		issues = append(issues, mappingIssues(g.cfg.Mappings)...)
	}
	for _, iss := range issues {
		fmt.Fprintf(w, "%s: %s: %s\n", iss.Severity, iss.Path, iss.Message)
	}
	if config.HasErrors(issues) {
		return errInvalidConfig
	}
	fmt.Fprintln(w, "configuration is valid")
	return nil
}

// mappingIssues loads the mapping file and lints every mapping in it.
func mappingIssues(path string) []config.Issue {
	maps, warns, err := mapping.Load(path)
	if err != nil {
		return []config.Issue{{Severity: config.SeverityError, Path: "mappings", Message: err.Error()}}
	}

	var issues []config.Issue
	for _, w := range warns {
		issues = append(issues, config.Issue{Severity: config.SeverityWarning, Path: "mappings", Message: w.Error()})
	}
	active := 0
	for i, m := range maps {
		if err := m.Validate(); err != nil {
			issues = append(issues, config.Issue{
				Severity: config.SeverityError,
				Path:     fmt.Sprintf("mappings[%d]", i),
				Message:  err.Error(),
			})
		}
		if m.Active {
			active++
		}
	}
	if active == 0 {
		issues = append(issues, config.Issue{
			Severity: config.SeverityWarning,
			Path:     "mappings",
			Message:  "no active mappings; run will not migrate anything",
		})
	}
	return issues
}
