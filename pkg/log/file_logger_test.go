package log

import (
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

func createTestDiagFile(t *testing.T, events []Event) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test"+FileExt)

	logger, err := NewFileLogger(path)
	if err != nil {
		t.Fatalf("failed to create test file: %v", err)
	}
	for _, e := range events {
		logger.Log(e)
	}
	logger.Close()
	return path
}

func TestFileLoggerCreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test"+FileExt)

	logger, err := NewFileLogger(path)
	if err != nil {
		t.Fatalf("NewFileLogger failed: %v", err)
	}
	defer logger.Close()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Error("diagnostic file was not created")
	}
}

func TestFileLoggerAppends(t *testing.T) {
	path := createTestDiagFile(t, []Event{{Code: CodeConfigured, Register: "a"}})

	logger, err := NewFileLogger(path)
	if err != nil {
		t.Fatalf("NewFileLogger failed: %v", err)
	}
	logger.Log(Event{Code: CodeLocked, Register: "a"})
	if logger.Written() != 1 {
		t.Errorf("Written() = %d, want 1", logger.Written())
	}
	logger.Close()

	r, err := NewReader(path)
	if err != nil {
		t.Fatalf("NewReader failed: %v", err)
	}
	defer r.Close()

	events, err := r.ReadAll()
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}
	if events[0].Code != CodeConfigured || events[1].Code != CodeLocked {
		t.Errorf("unexpected order: %v, %v", events[0].Code, events[1].Code)
	}
}

func TestFileLoggerCloseIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test"+FileExt)
	logger, err := NewFileLogger(path)
	if err != nil {
		t.Fatalf("NewFileLogger failed: %v", err)
	}
	if err := logger.Close(); err != nil {
		t.Fatalf("first Close failed: %v", err)
	}
	if err := logger.Close(); err != nil {
		t.Errorf("second Close failed: %v", err)
	}
	// Dropped silently.
	logger.Log(Event{Code: CodeReset})
	if logger.Written() != 0 {
		t.Errorf("Written() = %d after close, want 0", logger.Written())
	}
}

func TestFileLoggerConcurrent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test"+FileExt)
	logger, err := NewFileLogger(path)
	if err != nil {
		t.Fatalf("NewFileLogger failed: %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				logger.Log(Event{Timestamp: time.Now(), Code: CodeConfigured})
			}
		}()
	}
	wg.Wait()
	logger.Close()

	r, err := NewReader(path)
	if err != nil {
		t.Fatalf("NewReader failed: %v", err)
	}
	defer r.Close()

	n := 0
	for {
		_, err := r.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("Next failed: %v", err)
		}
		n++
	}
	if n != 100 {
		t.Errorf("got %d events, want 100", n)
	}
}

func TestFilteredReader(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	events := []Event{
		{Timestamp: base, SessionID: "s1", Severity: SeverityInfo, Code: CodeConfigured, Register: "a"},
		{Timestamp: base.Add(time.Second), SessionID: "s1", Severity: SeverityWarning, Code: CodeParseError, Register: "a"},
		{Timestamp: base.Add(2 * time.Second), SessionID: "s2", Severity: SeverityWarning, Code: CodeLayoutOverlap, Register: "b"},
		{Timestamp: base.Add(3 * time.Second), SessionID: "s2", Severity: SeverityError, Code: CodeNotFound, Register: "c"},
	}
	path := createTestDiagFile(t, events)

	warn := SeverityWarning
	overlap := CodeLayoutOverlap
	start := base.Add(time.Second)
	end := base.Add(3 * time.Second)

	tests := []struct {
		name   string
		filter Filter
		want   int
	}{
		{"all", Filter{}, 4},
		{"session", Filter{SessionID: "s2"}, 2},
		{"min severity", Filter{MinSeverity: &warn}, 3},
		{"code", Filter{Code: &overlap}, 1},
		{"register", Filter{Register: "a"}, 2},
		{"time window", Filter{TimeStart: &start, TimeEnd: &end}, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := NewFilteredReader(path, tt.filter)
			if err != nil {
				t.Fatalf("NewFilteredReader failed: %v", err)
			}
			defer r.Close()

			got, err := r.ReadAll()
			if err != nil {
				t.Fatalf("ReadAll failed: %v", err)
			}
			if len(got) != tt.want {
				t.Errorf("got %d events, want %d", len(got), tt.want)
			}
		})
	}
}

func TestReaderMissingFile(t *testing.T) {
	if _, err := NewReader(filepath.Join(t.TempDir(), "missing"+FileExt)); err == nil {
		t.Error("expected error for missing file")
	}
}
