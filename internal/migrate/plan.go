package migrate

import (
	"unicode"

	"github.com/sirupsen/logrus"

	"tablemigrate/internal/mapping"
)

// PlanColumn is one retained source column and the target column it is
// written to.
type PlanColumn struct {
	SourceIndex int
	SourceName  string
	TargetName  string
}

// Plan is the column mapping of one batch. It is built once per batch and
// reused to bind every row of it.
type Plan struct {
	Columns []PlanColumn
	Dropped []string // source columns rejected as identifiers
}

// BuildPlan keeps the columns whose names are valid identifiers (letters,
// digits and underscore) and resolves each through cm, falling back to the
// source name. Dropped columns are logged as warnings.
func BuildPlan(columns []string, cm mapping.ColumnMap, log logrus.FieldLogger) Plan {
	p := Plan{Columns: make([]PlanColumn, 0, len(columns))}
	for i, name := range columns {
		if !validIdentifier(name) {
			p.Dropped = append(p.Dropped, name)
			log.WithField("column", name).Warn("dropping column: name is not a plain identifier")
			continue
		}
		p.Columns = append(p.Columns, PlanColumn{
			SourceIndex: i,
			SourceName:  name,
			TargetName:  cm.Target(name),
		})
	}
	return p
}

// Empty reports whether no column survived. Rows of such a batch are skipped.
func (p Plan) Empty() bool { return len(p.Columns) == 0 }

// TargetColumns returns the target column names in bind order.
func (p Plan) TargetColumns() []string {
	out := make([]string, len(p.Columns))
	for i, c := range p.Columns {
		out[i] = c.TargetName
	}
	return out
}

// Bind builds the positional arguments for every row. The input rows are
// not modified.
func (p Plan) Bind(rows [][]any, sub Substituter) [][]any {
	replace := make([]bool, len(p.Columns))
	for j, c := range p.Columns {
		replace[j] = sub.Applies(c.SourceName)
	}

	out := make([][]any, len(rows))
	for i, row := range rows {
		args := make([]any, len(p.Columns))
		for j, c := range p.Columns {
			var v any
			if c.SourceIndex < len(row) {
				v = row[c.SourceIndex]
			}
			if replace[j] {
				v = sub.replace(v)
			}
			args[j] = v
		}
		out[i] = args
	}
	return out
}

func validIdentifier(name string) bool {
	if name == "" {
		return false
	}
	for _, r := range name {
		if r != '_' && !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
