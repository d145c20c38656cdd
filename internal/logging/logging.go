// Package logging builds the logrus logger shared by the CLI and the
// migration engine.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// Options configures New.
type Options struct {
	Level  string    // debug, info, warn, error; empty means info
	Format string    // text or json; empty means text
	Output io.Writer // defaults to os.Stderr
}

// New returns a logger configured from opts. Text output uses full RFC3339
// timestamps.
func New(opts Options) (*logrus.Logger, error) {
	log := logrus.New()

	out := opts.Output
	if out == nil {
		out = os.Stderr
	}
	log.SetOutput(out)

	switch strings.ToLower(strings.TrimSpace(opts.Format)) {
	case "", "text":
		log.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: time.RFC3339,
		})
	case "json":
		log.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339})
	default:
		return nil, fmt.Errorf("logging: unknown format %q (want text or json)", opts.Format)
	}

	level := logrus.InfoLevel
	if s := strings.TrimSpace(opts.Level); s != "" {
		l, err := logrus.ParseLevel(s)
		if err != nil {
			return nil, fmt.Errorf("logging: %w", err)
		}
		level = l
	}
	log.SetLevel(level)

	return log, nil
}

// Discard returns a logger that drops everything. Handy in tests.
func Discard() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}
