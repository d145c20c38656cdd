package migrate

import (
	"reflect"
	"testing"

	"tablemigrate/internal/logging"
	"tablemigrate/internal/mapping"
)

func TestBuildPlan(t *testing.T) {
	t.Parallel()

	cm := mapping.ColumnMapOf(map[string]string{"employeeid": "EMP_ID"})
	p := BuildPlan([]string{"EmployeeID", "Full Name", "", "Straße", "名前", "dept-id", "x_1"}, cm, logging.Discard())

	want := []PlanColumn{
		{SourceIndex: 0, SourceName: "EmployeeID", TargetName: "EMP_ID"},
		{SourceIndex: 3, SourceName: "Straße", TargetName: "Straße"},
		{SourceIndex: 4, SourceName: "名前", TargetName: "名前"},
		{SourceIndex: 6, SourceName: "x_1", TargetName: "x_1"},
	}
	if !reflect.DeepEqual(p.Columns, want) {
		t.Fatalf("Columns = %+v\nwant %+v", p.Columns, want)
	}
	if !reflect.DeepEqual(p.Dropped, []string{"Full Name", "", "dept-id"}) {
		t.Fatalf("Dropped = %q", p.Dropped)
	}
	if got := p.TargetColumns(); !reflect.DeepEqual(got, []string{"EMP_ID", "Straße", "名前", "x_1"}) {
		t.Fatalf("TargetColumns = %q", got)
	}
}

func TestBuildPlanEmpty(t *testing.T) {
	t.Parallel()

	p := BuildPlan([]string{"a b", "c;d"}, nil, logging.Discard())
	if !p.Empty() {
		t.Fatalf("Empty() = false for %+v", p)
	}
}

func TestPlanBind(t *testing.T) {
	t.Parallel()

	p := BuildPlan([]string{"id", "bad col", "Name"}, nil, logging.Discard())
	sub := NewSubstituter(mapping.NewColumnSet("name"), "-")
	rows := [][]any{
		{int64(1), "ignored", "Ada"},
		{int64(2), "ignored", "   "},
		{int64(3), "ignored", nil},
	}

	got := p.Bind(rows, sub)
	want := [][]any{
		{int64(1), "Ada"},
		{int64(2), "-"},
		{int64(3), nil},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Bind = %v, want %v", got, want)
	}
	if rows[1][2] != "   " {
		t.Fatalf("Bind mutated the batch: %v", rows[1])
	}
}

func TestPlanBindShortRow(t *testing.T) {
	t.Parallel()

	p := BuildPlan([]string{"a", "b"}, nil, logging.Discard())
	got := p.Bind([][]any{{"x"}}, Substituter{})
	if !reflect.DeepEqual(got, [][]any{{"x", nil}}) {
		t.Fatalf("Bind = %v", got)
	}
}
