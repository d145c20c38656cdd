package mapping

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Format selects the mapping file encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFor picks the format from a file extension.
func FormatFor(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("mapping file %s: unsupported extension (want .json, .yaml or .yml)", path)
	}
}

// record is the on-disk shape of one mapping. Active is a pointer so an
// absent key can default to true.
type record struct {
	SourceTable               string   `json:"source_table" yaml:"source_table"`
	TargetTable               string   `json:"target_table" yaml:"target_table"`
	Active                    *bool    `json:"active" yaml:"active"`
	Description               string   `json:"description" yaml:"description"`
	Filter                    string   `json:"filter" yaml:"filter"`
	OrderBy                   string   `json:"order_by" yaml:"order_by"`
	ClearTarget               bool     `json:"clear_target" yaml:"clear_target"`
	SourceColumns             []string `json:"source_columns" yaml:"source_columns"`
	TargetColumns             []string `json:"target_columns" yaml:"target_columns"`
	EmptyToReplacementColumns []string `json:"empty_to_replacement_columns" yaml:"empty_to_replacement_columns"`
	ReplacementValue          string   `json:"replacement_value" yaml:"replacement_value"`
}

type file struct {
	Mappings []record `json:"mappings" yaml:"mappings"`
}

// Load reads a mapping file, choosing JSON or YAML by extension.
//
// Unknown keys fail the load. Otherwise decoding is best-effort: records
// are trimmed and defaulted but not validated, since the engine validates
// each mapping before use. Column lists of unequal length or with blank
// names do not fail the load; the affected mappings fall back to identity
// column names and the returned warnings say which.
func Load(path string) ([]Mapping, []*ValidationError, error) {
	format, err := FormatFor(path)
	if err != nil {
		return nil, nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read mapping file: %w", err)
	}
	ms, warns, err := Parse(data, format)
	if err != nil {
		return nil, nil, fmt.Errorf("mapping file %s: %w", path, err)
	}
	return ms, warns, nil
}

// Parse decodes mapping records from data.
func Parse(data []byte, format Format) ([]Mapping, []*ValidationError, error) {
	var f file
	switch format {
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
			return nil, nil, fmt.Errorf("decode json: %w", err)
		}
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
			return nil, nil, fmt.Errorf("decode yaml: %w", err)
		}
	default:
		return nil, nil, fmt.Errorf("unknown mapping format %q", format)
	}

	var warns []*ValidationError
	out := make([]Mapping, 0, len(f.Mappings))
	for _, r := range f.Mappings {
		m, warn := r.toMapping()
		if warn != nil {
			warns = append(warns, warn)
		}
		out = append(out, m)
	}
	return out, warns, nil
}

func (r record) toMapping() (Mapping, *ValidationError) {
	m := Mapping{
		SourceTable:               strings.TrimSpace(r.SourceTable),
		TargetTable:               strings.TrimSpace(r.TargetTable),
		Active:                    true,
		Description:               r.Description,
		Filter:                    strings.TrimSpace(r.Filter),
		OrderBy:                   strings.TrimSpace(r.OrderBy),
		ClearTarget:               r.ClearTarget,
		EmptyToReplacementColumns: NewColumnSet(trimAll(r.EmptyToReplacementColumns)...),
		ReplacementValue:          DefaultReplacementValue,
	}
	if r.Active != nil {
		m.Active = *r.Active
	}
	if r.ReplacementValue != "" {
		m.ReplacementValue = r.ReplacementValue
	}

	cm, err := NewColumnMap(r.SourceColumns, r.TargetColumns)
	var verr *ValidationError
	if errors.As(err, &verr) {
		verr.Mapping = m.String()
		return m, verr
	}
	m.ColumnMap = cm
	return m, nil
}

func trimAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
