package main

import (
	"context"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"tablemigrate/internal/config"
	"tablemigrate/internal/logging"
	"tablemigrate/internal/mapping"
	"tablemigrate/internal/migrate"
	"tablemigrate/internal/storage"
)

// openRepository is a test seam; production opens registered backends.
var openRepository = storage.New

// cmdGlobal holds state shared by every subcommand: the resolved run
// configuration, the logger and the output streams.
type cmdGlobal struct {
	flags  *config.Flags
	getenv func(string) string

	cfg *config.Run
	log *logrus.Logger

	out    io.Writer
	errOut io.Writer

	closers []func()
}

func newGlobal(out, errOut io.Writer, getenv func(string) string) *cmdGlobal {
	return &cmdGlobal{out: out, errOut: errOut, getenv: getenv}
}

func newApp(g *cmdGlobal) *cobra.Command {
	app := &cobra.Command{}
	app.Use = "tablemigrate"
	app.Short = "Copy rows between databases table by table"
	app.Long = `Description:
  Copy rows between databases table by table

  Rows are read from the source in pages and written to the target one
  transaction per batch. Which tables are copied, how their columns are
  renamed and which blank values are replaced is described by a mapping
  file. Every flag can also be set in the run file (--config) or through a
  TABLEMIGRATE_* environment variable.
`
	app.SilenceUsage = true
	app.SilenceErrors = true
	app.CompletionOptions = cobra.CompletionOptions{HiddenDefaultCmd: true}
	app.SetOut(g.out)
	app.SetErr(g.errOut)

	g.flags = config.Bind(app.PersistentFlags(), g.getenv)
	app.PersistentPreRunE = g.PreRun

	runCmd := cmdRun{global: g}
	app.AddCommand(runCmd.Command())

	tableCmd := cmdTable{global: g}
	app.AddCommand(tableCmd.Command())

	tablesCmd := cmdTables{global: g}
	app.AddCommand(tablesCmd.Command())

	eraseCmd := cmdErase{global: g}
	app.AddCommand(eraseCmd.Command())

	validateCmd := cmdValidate{global: g}
	app.AddCommand(validateCmd.Command())

	return app
}

// PreRun resolves the configuration and sets up logging and metrics.
func (g *cmdGlobal) PreRun(cmd *cobra.Command, args []string) error {
	if cmd.Name() == "help" {
		return nil
	}

	cfg, err := g.flags.Resolve()
	if err != nil {
		return err
	}
	g.cfg = cfg

	log, err := logging.New(logging.Options{Level: cfg.Log.Level, Format: cfg.Log.Format, Output: g.errOut})
	if err != nil {
		return err
	}
	g.log = log

	if cmd.Name() == "validate" {
		return nil
	}
	flush, err := setupMetrics(cfg, log)
	if err != nil {
		return err
	}
	g.closers = append(g.closers, flush)
	return nil
}

// close releases everything opened during the command, newest first.
func (g *cmdGlobal) close() {
	for i := len(g.closers) - 1; i >= 0; i-- {
		g.closers[i]()
	}
	g.closers = nil
}

func (g *cmdGlobal) open(ctx context.Context, side string, e config.Endpoint) (storage.Repository, error) {
	g.log.WithFields(logrus.Fields{"side": side, "kind": e.Kind, "dsn": e.Redacted()}).Debug("connecting")
	repo, err := openRepository(ctx, storage.Config{Kind: e.Kind, DSN: e.DSN})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", side, err)
	}
	g.closers = append(g.closers, repo.Close)
	return repo, nil
}

func (g *cmdGlobal) openSource(ctx context.Context) (storage.Repository, error) {
	return g.open(ctx, "source", g.cfg.Source)
}

func (g *cmdGlobal) openTarget(ctx context.Context) (storage.Repository, error) {
	return g.open(ctx, "target", g.cfg.Target)
}

// migrator builds a Migrator from the resolved configuration.
func (g *cmdGlobal) migrator(src storage.Source, dst storage.Target, progress migrate.Progress) (*migrate.Migrator, error) {
	policy, err := migrate.ParseErasePolicy(g.cfg.ErasePolicy)
	if err != nil {
		return nil, err
	}
	return migrate.New(src, dst,
		migrate.WithBatchSize(g.cfg.Runtime.BatchSize),
		migrate.WithLogger(g.log.WithField("job", g.cfg.Job)),
		migrate.WithErasePolicy(policy),
		migrate.WithProgress(progress),
		migrate.WithJob(g.cfg.Job),
	), nil
}

// progress picks the progress sink: a bar on the error stream, or log lines.
func (g *cmdGlobal) progress(bar bool) migrate.Progress {
	if bar {
		return newBarProgress(g.errOut)
	}
	return migrate.NewLogProgress(g.log)
}

// logMappingWarnings reports discarded column mappings.
func logMappingWarnings(log logrus.FieldLogger, warns []*mapping.ValidationError) {
	for _, w := range warns {
		log.WithField("mapping", w.Mapping).Warn(w.Error())
	}
}
