package config

import (
	"strconv"
	"strings"

	"github.com/spf13/pflag"
)

// EnvPrefix prefixes every environment variable read by Bind.
const EnvPrefix = "TABLEMIGRATE_"

// binding copies one flag value onto a Run.
type binding struct {
	flag   string
	seeded bool // the environment supplied a usable value
	apply  func(r *Run)
}

// Flags is the set of run flags registered on a FlagSet. Environment
// variables seed each flag's default; Resolve merges them over the run file.
type Flags struct {
	fs       *pflag.FlagSet
	getenv   func(string) string
	path     string
	bindings []binding
}

// Bind registers the run flags on fs. getenv is usually os.Getenv; tests
// pass a map-backed func to stay hermetic.
func Bind(fs *pflag.FlagSet, getenv func(string) string) *Flags {
	f := &Flags{fs: fs, getenv: getenv}

	fs.StringVarP(&f.path, "config", "c", getenv(EnvPrefix+"CONFIG"), "run file (.json, .yaml or .yml)")

	f.str("job", "JOB", "job name used to label metrics and logs", func(r *Run) *string { return &r.Job })
	f.str("source-kind", "SOURCE_KIND", "source backend: postgres, mssql, sqlite, mysql or oracle", func(r *Run) *string { return &r.Source.Kind })
	f.str("source-dsn", "SOURCE_DSN", "source connection string", func(r *Run) *string { return &r.Source.DSN })
	f.str("target-kind", "TARGET_KIND", "target backend: postgres, mssql, sqlite, mysql or oracle", func(r *Run) *string { return &r.Target.Kind })
	f.str("target-dsn", "TARGET_DSN", "target connection string", func(r *Run) *string { return &r.Target.DSN })
	f.integer("batch-size", "BATCH_SIZE", "rows per batch (one transaction each)", func(r *Run) *int { return &r.Runtime.BatchSize })
	f.str("mappings", "MAPPINGS", "mapping file (.json, .yaml or .yml)", func(r *Run) *string { return &r.Mappings })
	f.boolean("clear-target", "CLEAR_TARGET", "erase every active target table before loading it", func(r *Run) *bool { return &r.ClearTarget })
	f.str("erase-policy", "ERASE_POLICY", "on erase failure: warn (load anyway) or fail (skip the table)", func(r *Run) *string { return &r.ErasePolicy })
	f.str("log-level", "LOG_LEVEL", "log level: trace, debug, info, warn, error", func(r *Run) *string { return &r.Log.Level })
	f.str("log-format", "LOG_FORMAT", "log format: text or json", func(r *Run) *string { return &r.Log.Format })
	f.str("metrics-backend", "METRICS_BACKEND", "metrics backend: none, prometheus or datadog", func(r *Run) *string { return &r.Metrics.Backend })
	f.str("pushgateway-url", "PUSHGATEWAY_URL", "Prometheus Pushgateway URL", func(r *Run) *string { return &r.Metrics.PushgatewayURL })
	f.str("datadog-addr", "DATADOG_ADDR", "DogStatsD address (host:port)", func(r *Run) *string { return &r.Metrics.DatadogAddr })

	return f
}

func (f *Flags) str(name, env, usage string, field func(*Run) *string) {
	v := f.getenv(EnvPrefix + env)
	p := new(string)
	f.fs.StringVar(p, name, v, usage)
	f.bindings = append(f.bindings, binding{flag: name, seeded: v != "", apply: func(r *Run) { *field(r) = *p }})
}

func (f *Flags) integer(name, env, usage string, field func(*Run) *int) {
	v, ok := intEnv(f.getenv, EnvPrefix+env)
	p := new(int)
	f.fs.IntVar(p, name, v, usage)
	f.bindings = append(f.bindings, binding{flag: name, seeded: ok, apply: func(r *Run) { *field(r) = *p }})
}

func (f *Flags) boolean(name, env, usage string, field func(*Run) *bool) {
	v, ok := boolEnv(f.getenv, EnvPrefix+env)
	p := new(bool)
	f.fs.BoolVar(p, name, v, usage)
	f.bindings = append(f.bindings, binding{flag: name, seeded: ok, apply: func(r *Run) { *field(r) = *p }})
}

// Resolve builds the Run: defaults, then the run file if one is named, then
// every flag that was set explicitly or seeded from the environment.
func (f *Flags) Resolve() (*Run, error) {
	r := &Run{}
	if f.path != "" {
		loaded, err := Load(f.path)
		if err != nil {
			return nil, err
		}
		r = loaded
	}
	for _, b := range f.bindings {
		if b.seeded || f.fs.Changed(b.flag) {
			b.apply(r)
		}
	}
	r.applyDefaults()
	return r, nil
}

// LoadFromArgs binds the run flags on fs, parses args and resolves the Run.
func LoadFromArgs(fs *pflag.FlagSet, getenv func(string) string, args []string) (*Run, error) {
	f := Bind(fs, getenv)
	if args == nil {
		args = []string{}
	}
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return f.Resolve()
}

// intEnv parses k as a decimal integer. ok is false when k is unset or
// not a number.
func intEnv(getenv func(string) string, k string) (int, bool) {
	if v := strings.TrimSpace(getenv(k)); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i, true
		}
	}
	return 0, false
}

// boolEnv accepts 1/0, true/false, yes/no and on/off in any case.
func boolEnv(getenv func(string) string, k string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(getenv(k))) {
	case "1", "true", "yes", "on":
		return true, true
	case "0", "false", "no", "off":
		return false, true
	}
	return false, false
}
