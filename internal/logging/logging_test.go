package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestNewDefaults(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log, err := New(Options{Output: &buf})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if log.GetLevel() != logrus.InfoLevel {
		t.Fatalf("level = %v, want info", log.GetLevel())
	}
	log.Debug("hidden")
	log.WithField("table", "Employees").Info("visible")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("debug line written at info level: %q", out)
	}
	if !strings.Contains(out, "table=Employees") || !strings.Contains(out, "visible") {
		t.Fatalf("output = %q, want text line with table field", out)
	}
}

func TestNewJSON(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log, err := New(Options{Level: "debug", Format: "JSON", Output: &buf})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	log.WithField("rows", 7).Debug("batch written")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not JSON: %v (%q)", err, buf.String())
	}
	if entry["msg"] != "batch written" || entry["rows"] != float64(7) {
		t.Fatalf("entry = %v", entry)
	}
}

func TestNewRejectsBadOptions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		opts Options
	}{
		{"bad level", Options{Level: "loud"}},
		{"bad format", Options{Format: "xml"}},
	}
	for _, tt := range tests {
		if _, err := New(tt.opts); err == nil {
			t.Errorf("%s: New(%+v) error = nil, want error", tt.name, tt.opts)
		}
	}
}

func TestDiscard(t *testing.T) {
	t.Parallel()

	log := Discard()
	log.Error("nowhere")
}
