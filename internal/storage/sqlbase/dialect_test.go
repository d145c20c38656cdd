package sqlbase

import (
	"reflect"
	"testing"
)

var (
	testLimitDialect = Dialect{
		Name:  "lite",
		Quote: DoubleQuote,
		Bind:  QuestionBind,
		Page:  LimitOffset,
	}
	testFetchDialect = Dialect{
		Name:         "ms",
		Quote:        BracketQuote,
		Bind:         AtPBind,
		Page:         OffsetFetch,
		DefaultOrder: "(SELECT NULL)",
	}
)

func TestQuoteFuncs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		fn   func(string) string
		in   string
		want string
	}{
		{"double", DoubleQuote, `col`, `"col"`},
		{"double escapes", DoubleQuote, `a"b`, `"a""b"`},
		{"bracket", BracketQuote, `col`, `[col]`},
		{"bracket escapes", BracketQuote, `a]b`, `[a]]b]`},
		{"backtick", BacktickQuote, "col", "`col`"},
		{"backtick escapes", BacktickQuote, "a`b", "`a``b`"},
	}
	for _, tt := range tests {
		if got := tt.fn(tt.in); got != tt.want {
			t.Errorf("%s(%q) = %q, want %q", tt.name, tt.in, got, tt.want)
		}
	}
}

func TestBindFuncs(t *testing.T) {
	t.Parallel()

	if got := QuestionBind(3); got != "?" {
		t.Errorf("QuestionBind(3) = %q", got)
	}
	if got := AtPBind(3); got != "@p3" {
		t.Errorf("AtPBind(3) = %q", got)
	}
	if got := ColonBind(3); got != ":3" {
		t.Errorf("ColonBind(3) = %q", got)
	}
	if got := DollarBind(3); got != "$3" {
		t.Errorf("DollarBind(3) = %q", got)
	}
}

func TestCountSQL(t *testing.T) {
	t.Parallel()

	if got, want := testLimitDialect.CountSQL("dbo.Employees", ""), "SELECT COUNT(*) FROM dbo.Employees"; got != want {
		t.Fatalf("CountSQL no filter = %q, want %q", got, want)
	}
	if got, want := testLimitDialect.CountSQL("Employees", "  IsActive = 1 "), "SELECT COUNT(*) FROM Employees WHERE IsActive = 1"; got != want {
		t.Fatalf("CountSQL filter = %q, want %q", got, want)
	}
}

func TestPageSQL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		d        Dialect
		filter   string
		orderBy  string
		wantSQL  string
		wantArgs []any
	}{
		{
			name:     "limit offset, no order",
			d:        testLimitDialect,
			wantSQL:  "SELECT * FROM t LIMIT ? OFFSET ?",
			wantArgs: []any{int64(50), int64(100)},
		},
		{
			name:     "limit offset, filter and order",
			d:        testLimitDialect,
			filter:   "a > 1",
			orderBy:  "id",
			wantSQL:  "SELECT * FROM t WHERE a > 1 ORDER BY id LIMIT ? OFFSET ?",
			wantArgs: []any{int64(50), int64(100)},
		},
		{
			name:     "offset fetch uses default order",
			d:        testFetchDialect,
			wantSQL:  "SELECT * FROM t ORDER BY (SELECT NULL) OFFSET @p1 ROWS FETCH NEXT @p2 ROWS ONLY",
			wantArgs: []any{int64(100), int64(50)},
		},
		{
			name:     "offset fetch keeps explicit order",
			d:        testFetchDialect,
			filter:   "x = 'y'",
			orderBy:  "EmployeeID",
			wantSQL:  "SELECT * FROM t WHERE x = 'y' ORDER BY EmployeeID OFFSET @p1 ROWS FETCH NEXT @p2 ROWS ONLY",
			wantArgs: []any{int64(100), int64(50)},
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			gotSQL, gotArgs := tt.d.PageSQL("t", tt.filter, tt.orderBy, 100, 50)
			if gotSQL != tt.wantSQL {
				t.Fatalf("PageSQL sql = %q, want %q", gotSQL, tt.wantSQL)
			}
			if !reflect.DeepEqual(gotArgs, tt.wantArgs) {
				t.Fatalf("PageSQL args = %v, want %v", gotArgs, tt.wantArgs)
			}
		})
	}
}

func TestInsertSQL(t *testing.T) {
	t.Parallel()

	got := testFetchDialect.InsertSQL("HR.EMPLOYEES", []string{"ID", "FULL_NAME"})
	want := "INSERT INTO HR.EMPLOYEES ([ID], [FULL_NAME]) VALUES (@p1, @p2)"
	if got != want {
		t.Fatalf("InsertSQL = %q, want %q", got, want)
	}
}

func TestDeleteSQL(t *testing.T) {
	t.Parallel()

	if got, want := testLimitDialect.DeleteSQL("t"), "DELETE FROM t"; got != want {
		t.Fatalf("DeleteSQL = %q, want %q", got, want)
	}
}
