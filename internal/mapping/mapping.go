// Package mapping defines the table mapping records consumed by the migration
// engine and decodes them from JSON or YAML files.
//
// A mapping file looks like:
//
//	mappings:
//	  - source_table: dbo.Employees
//	    target_table: HR.EMPLOYEES
//	    filter: IsActive = 1
//	    clear_target: true
//	    source_columns: [EmployeeID, FullName]
//	    target_columns: [EMP_ID, FULL_NAME]
//	    empty_to_replacement_columns: [FullName]
//	  - source_table: dbo.Departments
//	    target_table: HR.DEPARTMENTS
//	    active: false
package mapping

import (
	"errors"
	"fmt"
	"strings"
)

// DefaultReplacementValue is written in place of blank text when a mapping
// does not name its own replacement.
const DefaultReplacementValue = "-"

// ErrInvalidMapping is returned for mappings that cannot be used at all.
var ErrInvalidMapping = errors.New("invalid mapping")

// Mapping pairs one source table with one target table plus its filter and
// value options. The engine never mutates a Mapping.
type Mapping struct {
	SourceTable string
	TargetTable string
	Active      bool
	Description string

	// Filter is appended verbatim after WHERE; empty selects every row.
	Filter string

	// OrderBy is appended verbatim after ORDER BY. Without it pages follow
	// whatever order the database returns.
	OrderBy string

	// ClearTarget deletes every target row before loading.
	ClearTarget bool

	ColumnMap                 ColumnMap
	EmptyToReplacementColumns ColumnSet
	ReplacementValue          string
}

// Validate rejects mappings without a source or target table.
func (m Mapping) Validate() error {
	var missing []string
	if strings.TrimSpace(m.SourceTable) == "" {
		missing = append(missing, "source_table")
	}
	if strings.TrimSpace(m.TargetTable) == "" {
		missing = append(missing, "target_table")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s must not be empty", ErrInvalidMapping, strings.Join(missing, " and "))
	}
	return nil
}

// String identifies the mapping in logs.
func (m Mapping) String() string {
	return m.SourceTable + " -> " + m.TargetTable
}

// ValidationError reports a column mapping that was discarded. It is a
// warning: the mapping stays usable with identity column names.
type ValidationError struct {
	Mapping       string // "source -> target", empty when not known yet
	SourceColumns int
	TargetColumns int
	Blank         int // 1-based position of a blank column name, 0 if none
}

func (e *ValidationError) Error() string {
	var msg string
	if e.Blank > 0 {
		msg = fmt.Sprintf("column pair %d has a blank name; using identity column mapping", e.Blank)
	} else {
		msg = fmt.Sprintf("column lists differ in length (%d source, %d target); using identity column mapping",
			e.SourceColumns, e.TargetColumns)
	}
	if e.Mapping != "" {
		return e.Mapping + ": " + msg
	}
	return msg
}
