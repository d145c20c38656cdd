package migrate

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/zeebo/xxh3"
)

func digestOf(rows [][]any) uint64 {
	h := xxh3.New()
	digestRows(h, rows)
	return h.Sum64()
}

func TestDigestDistinguishesShapes(t *testing.T) {
	t.Parallel()

	cases := map[string][][]any{
		"null":        {{nil}},
		"empty":       {{""}},
		"two values":  {{"a", "b"}},
		"joined":      {{"ab"}},
		"two rows":    {{"a"}, {"b"}},
		"int":         {{int64(1)}},
		"bool":        {{true}},
		"time":        {{time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)}},
		"float":       {{1.5}},
		"other types": {{int32(7)}},
	}
	seen := map[uint64]string{}
	for name, rows := range cases {
		d := digestOf(rows)
		if prev, ok := seen[d]; ok {
			t.Fatalf("%s and %s share digest %x", name, prev, d)
		}
		seen[d] = name
	}
}

func TestDigestTimeZoneIndependent(t *testing.T) {
	t.Parallel()

	utc := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	local := utc.In(time.FixedZone("X", 3600))
	if digestOf([][]any{{utc}}) != digestOf([][]any{{local}}) {
		t.Fatalf("same instant digests differently across zones")
	}
}

func TestReportCounts(t *testing.T) {
	t.Parallel()

	rep := newReport()
	rep.Outcomes = []Outcome{
		{OK: true, Migrated: 3},
		{OK: false, Migrated: 2, Err: errors.New("boom")},
		{OK: true, Migrated: 0},
	}
	if rep.RunID == "" || rep.Started.IsZero() {
		t.Fatalf("report identity not set: %+v", rep)
	}
	if rep.Succeeded() != 2 || rep.Failed() != 1 || rep.Rows() != 5 {
		t.Fatalf("Succeeded=%d Failed=%d Rows=%d", rep.Succeeded(), rep.Failed(), rep.Rows())
	}
	if newReport().RunID == rep.RunID {
		t.Fatalf("RunID reused")
	}
}

func TestTableErrorText(t *testing.T) {
	t.Parallel()

	err := &TableError{Source: "dbo.A", Target: "B", Stage: StageWrite, Batch: 3, Err: errors.New("boom")}
	if got, want := err.Error(), "migrate dbo.A -> B: write batch 3: boom"; got != want {
		t.Fatalf("Error() = %q, want %q", got, want)
	}
	err = &TableError{Target: "B", Stage: StageErase, Err: errors.New("locked")}
	if got, want := err.Error(), "migrate B: erase: locked"; got != want {
		t.Fatalf("Error() = %q, want %q", got, want)
	}
}

func TestLogProgress(t *testing.T) {
	t.Parallel()

	log, hook := test.NewNullLogger()
	p := NewLogProgress(log)

	p.TableStarted("E", 5)
	p.BatchDone("E", 1, 3, 3, 5)
	p.BatchDone("E", 2, 2, 5, 5)
	p.TableDone(Outcome{})

	entries := hook.AllEntries()
	if len(entries) != 3 {
		t.Fatalf("entries = %d, want 3", len(entries))
	}
	last := entries[2]
	if last.Level != logrus.InfoLevel || last.Data["target"] != "E" {
		t.Fatalf("last entry = %+v", last)
	}
	if !strings.HasPrefix(last.Message, "batch #2: rps=") || !strings.Contains(last.Message, "inserted=2 total_inserted=5/5") {
		t.Fatalf("message = %q", last.Message)
	}
}
