package migrate

import (
	"bytes"
	"strings"

	"tablemigrate/internal/mapping"
)

// Substituter replaces blank text in selected columns with a fixed value.
// NULL is never replaced.
type Substituter struct {
	columns     mapping.ColumnSet
	replacement string
}

// NewSubstituter returns a Substituter for columns (matched ignoring case).
func NewSubstituter(columns mapping.ColumnSet, replacement string) Substituter {
	return Substituter{columns: columns, replacement: replacement}
}

// Applies reports whether values of column are subject to substitution.
func (s Substituter) Applies(column string) bool { return s.columns.Contains(column) }

// Apply returns the value to bind for v read from column.
func (s Substituter) Apply(column string, v any) any {
	if !s.Applies(column) {
		return v
	}
	return s.replace(v)
}

func (s Substituter) replace(v any) any {
	switch t := v.(type) {
	case string:
		if strings.TrimSpace(t) == "" {
			return s.replacement
		}
	case []byte:
		if len(bytes.TrimSpace(t)) == 0 {
			return s.replacement
		}
	}
	return v
}
