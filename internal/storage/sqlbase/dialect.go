// Package sqlbase is the portable database/sql implementation shared by the
// SQL Server, SQLite, MySQL and Oracle backends; Postgres reuses only the
// statement builders. Backends differ in how they quote identifiers, spell
// bind parameters, page results and list tables, and those differences live
// in a Dialect value.
package sqlbase

import (
	"fmt"
	"strings"
)

// PageStyle selects how a page of rows is requested.
type PageStyle int

const (
	// LimitOffset appends "LIMIT <n> OFFSET <m>" (SQLite, MySQL, Postgres).
	LimitOffset PageStyle = iota
	// OffsetFetch appends "OFFSET <m> ROWS FETCH NEXT <n> ROWS ONLY"
	// (SQL Server 2012+, Oracle 12c+).
	OffsetFetch
)

// Dialect captures the SQL spelling differences between engines.
type Dialect struct {
	// Name is used in error messages, e.g. "sqlite".
	Name string

	// Quote quotes a single column identifier.
	Quote func(ident string) string

	// Bind returns the placeholder for the n-th (1-based) parameter.
	Bind func(n int) string

	Page PageStyle

	// DefaultOrder is used with OffsetFetch when the caller supplied no
	// ordering, for engines that require ORDER BY before OFFSET. It
	// imposes no actual order.
	DefaultOrder string

	// ListTablesSQL returns one row per user table with a single text column.
	ListTablesSQL string

	// ScanValue, when set, post-processes each scanned value given the
	// column's database type name (e.g. "VARCHAR"). Drivers that return
	// text as []byte use it to hand strings to the engine.
	ScanValue func(dbType string, v any) any
}

// QuestionBind spells every parameter as "?".
func QuestionBind(int) string { return "?" }

// AtPBind spells parameters as "@p1", "@p2", ... (SQL Server).
func AtPBind(n int) string { return fmt.Sprintf("@p%d", n) }

// ColonBind spells parameters as ":1", ":2", ... (Oracle).
func ColonBind(n int) string { return fmt.Sprintf(":%d", n) }

// DollarBind spells parameters as "$1", "$2", ... (Postgres).
func DollarBind(n int) string { return fmt.Sprintf("$%d", n) }

// DoubleQuote quotes with "..." doubling embedded quotes.
func DoubleQuote(id string) string { return `"` + strings.ReplaceAll(id, `"`, `""`) + `"` }

// BracketQuote quotes with [...] escaping ] (SQL Server).
func BracketQuote(id string) string { return `[` + strings.ReplaceAll(id, `]`, `]]`) + `]` }

// BacktickQuote quotes with `...` doubling embedded backticks (MySQL).
func BacktickQuote(id string) string { return "`" + strings.ReplaceAll(id, "`", "``") + "`" }

// CountSQL builds the row-count query. Table and filter are trusted operator
// input and are used verbatim.
func (d Dialect) CountSQL(table, filter string) string {
	var b strings.Builder
	b.WriteString("SELECT COUNT(*) FROM ")
	b.WriteString(table)
	writeWhere(&b, filter)
	return b.String()
}

// PageSQL builds the page query and its bind arguments.
func (d Dialect) PageSQL(table, filter, orderBy string, offset, limit int64) (string, []any) {
	var b strings.Builder
	b.WriteString("SELECT * FROM ")
	b.WriteString(table)
	writeWhere(&b, filter)

	order := strings.TrimSpace(orderBy)
	if order == "" && d.Page == OffsetFetch {
		order = d.DefaultOrder
	}
	if order != "" {
		b.WriteString(" ORDER BY ")
		b.WriteString(order)
	}

	switch d.Page {
	case OffsetFetch:
		fmt.Fprintf(&b, " OFFSET %s ROWS FETCH NEXT %s ROWS ONLY", d.Bind(1), d.Bind(2))
		return b.String(), []any{offset, limit}
	default:
		fmt.Fprintf(&b, " LIMIT %s OFFSET %s", d.Bind(1), d.Bind(2))
		return b.String(), []any{limit, offset}
	}
}

// InsertSQL builds the parameterized INSERT used for every row of a batch.
func (d Dialect) InsertSQL(table string, columns []string) string {
	cols := make([]string, len(columns))
	binds := make([]string, len(columns))
	for i, c := range columns {
		cols[i] = d.Quote(c)
		binds[i] = d.Bind(i + 1)
	}
	return fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s)",
		table,
		strings.Join(cols, ", "),
		strings.Join(binds, ", "),
	)
}

// DeleteSQL builds the statement that clears a table.
func (d Dialect) DeleteSQL(table string) string { return "DELETE FROM " + table }

func writeWhere(b *strings.Builder, filter string) {
	if f := strings.TrimSpace(filter); f != "" {
		b.WriteString(" WHERE ")
		b.WriteString(f)
	}
}
