package commands

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/regdb/regdb/pkg/log"
)

var base = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

func createTestDiagFile(t *testing.T, events []log.Event) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test"+log.FileExt)
	logger, err := log.NewFileLogger(path)
	if err != nil {
		t.Fatalf("failed to create test file: %v", err)
	}
	for _, e := range events {
		logger.Log(e)
	}
	logger.Close()
	return path
}

func sampleEvents() []log.Event {
	return []log.Event{
		{Timestamp: base, SessionID: "session-one-1234", Severity: log.SeverityInfo, Code: log.CodeConfigured, Register: "status"},
		{Timestamp: base.Add(time.Second), SessionID: "session-one-1234", Severity: log.SeverityWarning,
			Code: log.CodeLayoutOverlap, Register: "ctrl", Field: "inner", Message: "overlaps wide",
			Context: map[string]string{"other": "wide"}},
		{Timestamp: base.Add(2 * time.Second), SessionID: "session-two-5678", Severity: log.SeverityError,
			Code: log.CodeNotFound, Register: "missing"},
	}
}

func TestViewFormatsEvents(t *testing.T) {
	path := createTestDiagFile(t, sampleEvents())

	var buf bytes.Buffer
	if err := RunView(path, FilterOptions{}, &buf); err != nil {
		t.Fatalf("RunView failed: %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"[session:session-] INFO",
		"Target: ctrl.inner",
		"Message: overlaps wide",
		"other: wide",
		"NOT_FOUND",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestViewFilters(t *testing.T) {
	path := createTestDiagFile(t, sampleEvents())

	tests := []struct {
		name string
		opts FilterOptions
		want int
	}{
		{"none", FilterOptions{}, 3},
		{"severity", FilterOptions{MinSeverity: "warning"}, 2},
		{"code", FilterOptions{Code: "layout-overlap"}, 1},
		{"session", FilterOptions{SessionID: "session-two-5678"}, 1},
		{"register", FilterOptions{Register: "status"}, 1},
		{"time", FilterOptions{TimeStart: base.Add(time.Second).Format(time.RFC3339)}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := RunView(path, tt.opts, &buf); err != nil {
				t.Fatalf("RunView failed: %v", err)
			}
			if got := strings.Count(buf.String(), "[session:"); got != tt.want {
				t.Errorf("got %d events, want %d", got, tt.want)
			}
		})
	}
}

func TestFilterOptionsErrors(t *testing.T) {
	for _, opts := range []FilterOptions{
		{MinSeverity: "loud"},
		{Code: "NOPE"},
		{TimeStart: "yesterday"},
		{TimeEnd: "2026-13-01"},
	} {
		if _, err := opts.Build(); err == nil {
			t.Errorf("Build(%+v) succeeded, want error", opts)
		}
	}
}

func TestRunFilterWritesSubset(t *testing.T) {
	path := createTestDiagFile(t, sampleEvents())
	out := filepath.Join(t.TempDir(), "subset"+log.FileExt)

	n, err := RunFilter(path, out, FilterOptions{SessionID: "session-one-1234"})
	if err != nil {
		t.Fatalf("RunFilter failed: %v", err)
	}
	if n != 2 {
		t.Errorf("wrote %d events, want 2", n)
	}

	r, err := log.NewReader(out)
	if err != nil {
		t.Fatalf("NewReader failed: %v", err)
	}
	defer r.Close()
	events, err := r.ReadAll()
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}
	if len(events) != 2 || events[1].Context["other"] != "wide" {
		t.Errorf("unexpected events: %+v", events)
	}
}

func TestExportJSONL(t *testing.T) {
	path := createTestDiagFile(t, sampleEvents())
	out := filepath.Join(t.TempDir(), "events.jsonl")

	if err := RunExport(path, "jsonl", out, FilterOptions{}); err != nil {
		t.Fatalf("RunExport failed: %v", err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want 3", len(lines))
	}
	var e jsonEvent
	if err := json.Unmarshal([]byte(lines[1]), &e); err != nil {
		t.Fatalf("invalid JSON line: %v", err)
	}
	if e.Code != "LAYOUT_OVERLAP" || e.Severity != "WARNING" || e.Field != "inner" {
		t.Errorf("unexpected event: %+v", e)
	}
}

func TestExportCSV(t *testing.T) {
	path := createTestDiagFile(t, sampleEvents())
	out := filepath.Join(t.TempDir(), "events.csv")

	if err := RunExport(path, "csv", out, FilterOptions{Code: "not_found"}); err != nil {
		t.Fatalf("RunExport failed: %v", err)
	}
	f, err := os.Open(out)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("invalid CSV: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want header + 1", len(records))
	}
	if records[1][3] != "NOT_FOUND" || records[1][4] != "missing" {
		t.Errorf("unexpected record: %v", records[1])
	}
}

func TestExportUnknownFormat(t *testing.T) {
	path := createTestDiagFile(t, sampleEvents())
	if err := RunExport(path, "xml", filepath.Join(t.TempDir(), "x"), FilterOptions{}); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestStats(t *testing.T) {
	path := createTestDiagFile(t, sampleEvents())

	stats, err := Collect(path)
	if err != nil {
		t.Fatalf("Collect failed: %v", err)
	}
	if stats.TotalEvents != 3 || len(stats.Sessions) != 2 {
		t.Errorf("stats = %+v", stats)
	}
	if stats.Sessions["session-one-1234"].Conflicts != 1 {
		t.Errorf("conflicts = %d, want 1", stats.Sessions["session-one-1234"].Conflicts)
	}

	var buf bytes.Buffer
	if err := RunStats(path, &buf); err != nil {
		t.Fatalf("RunStats failed: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"Total Events: 3", "LAYOUT_OVERLAP:", "WARNING:", "Sessions: 2", "Layout conflicts: 1"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}
