package mapping

import (
	"strings"

	"golang.org/x/text/cases"
)

// Fold returns the case-folded form used for every case-insensitive column
// comparison.
func Fold(s string) string {
	// A Caser keeps state, so each call gets its own.
	return cases.Fold().String(s)
}

// ColumnMap maps source column names to target column names. Keys are
// compared case-insensitively. The zero value is the identity mapping.
type ColumnMap map[string]string

// NewColumnMap pairs sourceCols[i] with targetCols[i]; names are trimmed.
// When both lists are empty the result is the identity mapping. When the
// lengths differ, or a pair has a blank name on either side, the identity
// mapping is returned together with a *ValidationError.
func NewColumnMap(sourceCols, targetCols []string) (ColumnMap, error) {
	if len(sourceCols) == 0 && len(targetCols) == 0 {
		return nil, nil
	}
	if len(sourceCols) != len(targetCols) {
		return nil, &ValidationError{SourceColumns: len(sourceCols), TargetColumns: len(targetCols)}
	}
	m := make(ColumnMap, len(sourceCols))
	for i := range sourceCols {
		src, dst := strings.TrimSpace(sourceCols[i]), strings.TrimSpace(targetCols[i])
		if src == "" || dst == "" {
			return nil, &ValidationError{SourceColumns: len(sourceCols), TargetColumns: len(targetCols), Blank: i + 1}
		}
		m[Fold(src)] = dst
	}
	return m, nil
}

// ColumnMapOf builds a ColumnMap from explicit source->target pairs.
func ColumnMapOf(pairs map[string]string) ColumnMap {
	if len(pairs) == 0 {
		return nil
	}
	m := make(ColumnMap, len(pairs))
	for src, dst := range pairs {
		m[Fold(src)] = dst
	}
	return m
}

// Target returns the mapped name for column, or column itself on a miss.
func (m ColumnMap) Target(column string) string {
	if len(m) == 0 {
		return column
	}
	if t, ok := m[Fold(column)]; ok {
		return t
	}
	return column
}

// ColumnSet is a case-insensitive set of column names.
type ColumnSet map[string]struct{}

// NewColumnSet returns a set holding names.
func NewColumnSet(names ...string) ColumnSet {
	if len(names) == 0 {
		return nil
	}
	s := make(ColumnSet, len(names))
	for _, n := range names {
		s[Fold(n)] = struct{}{}
	}
	return s
}

// Contains reports whether name is in the set, ignoring case.
func (s ColumnSet) Contains(name string) bool {
	if len(s) == 0 {
		return false
	}
	_, ok := s[Fold(name)]
	return ok
}
