package log

import (
	"testing"
	"time"
)

func TestSeverityString(t *testing.T) {
	tests := []struct {
		s    Severity
		want string
	}{
		{SeverityDebug, "DEBUG"},
		{SeverityInfo, "INFO"},
		{SeverityWarning, "WARNING"},
		{SeverityError, "ERROR"},
		{Severity(99), "UNKNOWN"},
	}
	for _, tt := range tests {
		if got := tt.s.String(); got != tt.want {
			t.Errorf("Severity(%d).String() = %q, want %q", tt.s, got, tt.want)
		}
	}
}

func TestParseSeverity(t *testing.T) {
	for _, in := range []string{"warning", "WARN", "Warning"} {
		got, err := ParseSeverity(in)
		if err != nil {
			t.Fatalf("ParseSeverity(%q) failed: %v", in, err)
		}
		if got != SeverityWarning {
			t.Errorf("ParseSeverity(%q) = %v", in, got)
		}
	}
	if _, err := ParseSeverity("loud"); err == nil {
		t.Error("expected error for unknown severity")
	}
}

func TestCodeNamesRoundTrip(t *testing.T) {
	if len(Codes()) != len(codeNames) {
		t.Fatalf("Codes() lists %d codes, want %d", len(Codes()), len(codeNames))
	}
	for _, c := range Codes() {
		name := c.String()
		if name == "UNKNOWN" {
			t.Fatalf("code %d has no name", c)
		}
		got, err := ParseCode(name)
		if err != nil {
			t.Fatalf("ParseCode(%q) failed: %v", name, err)
		}
		if got != c {
			t.Errorf("ParseCode(%q) = %v, want %v", name, got, c)
		}
	}

	got, err := ParseCode("layout-overlap")
	if err != nil || got != CodeLayoutOverlap {
		t.Errorf("ParseCode(layout-overlap) = %v, %v", got, err)
	}
	if _, err := ParseCode("nope"); err == nil {
		t.Error("expected error for unknown code")
	}
}

func TestIsLayoutConflict(t *testing.T) {
	for _, c := range Codes() {
		want := c == CodeLayoutOverflow || c == CodeLayoutOverlap
		if got := c.IsLayoutConflict(); got != want {
			t.Errorf("%v.IsLayoutConflict() = %v, want %v", c, got, want)
		}
	}
}

func TestEventString(t *testing.T) {
	e := Event{
		Severity: SeverityWarning,
		Code:     CodeParseError,
		Register: "ctrl",
		Field:    "mode",
		Message:  "bad literal",
	}
	if got, want := e.String(), "WARNING PARSE_ERROR ctrl.mode: bad literal"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestEventCBORRoundTrip(t *testing.T) {
	event := Event{
		Timestamp: time.Date(2024, 5, 1, 12, 0, 0, 123456789, time.UTC),
		SessionID: "sess-1",
		Severity:  SeverityWarning,
		Code:      CodeLayoutOverlap,
		Register:  "ctrl",
		Field:     "b",
		Message:   "overlaps a",
		Context:   map[string]string{"other": "a"},
	}

	data, err := EncodeEvent(event)
	if err != nil {
		t.Fatalf("EncodeEvent failed: %v", err)
	}
	decoded, err := DecodeEvent(data)
	if err != nil {
		t.Fatalf("DecodeEvent failed: %v", err)
	}

	if !decoded.Timestamp.Equal(event.Timestamp) {
		t.Errorf("Timestamp: got %v, want %v", decoded.Timestamp, event.Timestamp)
	}
	if decoded.Code != event.Code || decoded.Severity != event.Severity {
		t.Errorf("Code/Severity: got %v/%v", decoded.Code, decoded.Severity)
	}
	if decoded.Context["other"] != "a" {
		t.Errorf("Context: got %v", decoded.Context)
	}
}
