package config

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"tablemigrate/internal/migrate"
)

// IssueSeverity represents the severity of a configuration issue.
type IssueSeverity string

const (
	// SeverityError blocks the run.
	SeverityError IssueSeverity = "error"
	// SeverityWarning is surfaced but does not block the run.
	SeverityWarning IssueSeverity = "warning"
)

// Issue is a single validation finding. Path is a dotted path into the run
// file, e.g. "source.dsn".
type Issue struct {
	Severity IssueSeverity
	Path     string
	Message  string
}

// Error implements the error interface so an Issue can be returned as an
// error.
func (i Issue) Error() string {
	return fmt.Sprintf("%s at %s: %s", i.Severity, i.Path, i.Message)
}

// HasErrors reports whether any issue has SeverityError.
func HasErrors(issues []Issue) bool {
	for _, i := range issues {
		if i.Severity == SeverityError {
			return true
		}
	}
	return false
}

// KnownKinds lists the storage backends shipped with tablemigrate.
var KnownKinds = []string{"mssql", "mysql", "oracle", "postgres", "sqlite"}

// Validate lints a Run without connecting to anything. It does not mutate r.
// Callers decide whether warnings are fatal.
func Validate(r Run) []Issue {
	var issues []Issue

	if strings.TrimSpace(r.Job) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "job",
			Message:  "job must not be empty; it is used for metrics labeling and identifying runs",
		})
	}
	issues = append(issues, validateEndpoint("source", r.Source)...)
	issues = append(issues, validateEndpoint("target", r.Target)...)
	if r.Source.Kind != "" && r.Source == r.Target {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "target",
			Message:  "source and target are the same database; make sure no mapping reads and writes the same table",
		})
	}

	if r.Runtime.BatchSize <= 0 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "runtime.batch_size",
			Message:  fmt.Sprintf("batch_size=%d; must be positive", r.Runtime.BatchSize),
		})
	}
	if strings.TrimSpace(r.Mappings) == "" {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "mappings",
			Message:  "no mapping file configured; only single-table commands can run",
		})
	}
	if _, err := migrate.ParseErasePolicy(r.ErasePolicy); err != nil {
		issues = append(issues, Issue{Severity: SeverityError, Path: "erase_policy", Message: err.Error()})
	}

	issues = append(issues, validateLog(r.Log)...)
	issues = append(issues, validateMetrics(r.Metrics)...)
	return issues
}

func validateEndpoint(path string, e Endpoint) []Issue {
	var issues []Issue

	switch kind := strings.TrimSpace(e.Kind); {
	case kind == "":
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     path + ".kind",
			Message:  path + ".kind must not be empty",
		})
	case !known(kind):
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     path + ".kind",
			Message:  fmt.Sprintf("unknown %s kind %q; ensure a matching backend is registered", path, kind),
		})
	}
	if strings.TrimSpace(e.DSN) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     path + ".dsn",
			Message:  path + ".dsn must not be empty",
		})
	}
	return issues
}

func known(kind string) bool {
	for _, k := range KnownKinds {
		if k == kind {
			return true
		}
	}
	return false
}

func validateLog(l Log) []Issue {
	var issues []Issue
	if _, err := logrus.ParseLevel(l.Level); err != nil {
		issues = append(issues, Issue{Severity: SeverityError, Path: "log.level", Message: err.Error()})
	}
	switch strings.ToLower(l.Format) {
	case "text", "json":
	default:
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "log.format",
			Message:  fmt.Sprintf("unknown log format %q (want text or json)", l.Format),
		})
	}
	return issues
}

func validateMetrics(m Metrics) []Issue {
	var issues []Issue
	switch strings.ToLower(m.Backend) {
	case "", "none":
	case "prometheus":
		if strings.TrimSpace(m.PushgatewayURL) == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "metrics.pushgateway_url",
				Message:  "prometheus backend requires pushgateway_url",
			})
		}
	case "datadog":
		if strings.TrimSpace(m.DatadogAddr) == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "metrics.datadog_addr",
				Message:  "datadog backend requires datadog_addr",
			})
		}
	default:
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "metrics.backend",
			Message:  fmt.Sprintf("unknown metrics backend %q (want none, prometheus or datadog)", m.Backend),
		})
	}
	return issues
}
