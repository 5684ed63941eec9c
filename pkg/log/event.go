package log

import (
	"fmt"
	"strings"
	"time"
)

// Event is one diagnostic record.
// CBOR encoding uses integer keys for compactness.
type Event struct {
	// Timestamp when the event occurred (nanosecond precision).
	Timestamp time.Time `cbor:"1,keyasint"`

	// SessionID identifies the session that produced the event (UUID).
	SessionID string `cbor:"2,keyasint,omitempty"`

	// Severity of the event.
	Severity Severity `cbor:"3,keyasint"`

	// Code is the stable event classifier.
	Code Code `cbor:"4,keyasint"`

	// Register is the register name, if any.
	Register string `cbor:"5,keyasint,omitempty"`

	// Field is the field name, if any.
	Field string `cbor:"6,keyasint,omitempty"`

	// Message is a human readable description.
	Message string `cbor:"7,keyasint,omitempty"`

	// Context carries code-specific details such as the offending literal
	// or the conflicting field.
	Context map[string]string `cbor:"8,keyasint,omitempty"`
}

// String renders the event on one line.
func (e Event) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s", e.Severity, e.Code)
	if e.Register != "" {
		b.WriteString(" ")
		b.WriteString(e.Register)
		if e.Field != "" {
			b.WriteString(".")
			b.WriteString(e.Field)
		}
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	return b.String()
}

// Severity orders events by importance.
type Severity uint8

const (
	// SeverityDebug is for tracing.
	SeverityDebug Severity = 0
	// SeverityInfo marks lifecycle progress.
	SeverityInfo Severity = 1
	// SeverityWarning marks a recovered problem.
	SeverityWarning Severity = 2
	// SeverityError marks a failed operation.
	SeverityError Severity = 3
)

// String returns the severity name.
func (s Severity) String() string {
	switch s {
	case SeverityDebug:
		return "DEBUG"
	case SeverityInfo:
		return "INFO"
	case SeverityWarning:
		return "WARNING"
	case SeverityError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseSeverity parses a severity name, case-insensitively.
func ParseSeverity(s string) (Severity, error) {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return SeverityDebug, nil
	case "INFO":
		return SeverityInfo, nil
	case "WARNING", "WARN":
		return SeverityWarning, nil
	case "ERROR":
		return SeverityError, nil
	default:
		return 0, fmt.Errorf("invalid severity: %s (use debug, info, warning, error)", s)
	}
}

// Code classifies an event.
type Code uint8

const (
	// CodeConfigured reports a register materialized from the store.
	CodeConfigured Code = 0
	// CodeLocked reports a register entering the Locked state.
	CodeLocked Code = 1
	// CodeReset reports a mirror reset.
	CodeReset Code = 2
	// CodeParseError reports a malformed literal replaced by zero.
	CodeParseError Code = 3
	// CodeLayoutOverflow reports field widths exceeding the register size.
	CodeLayoutOverflow Code = 4
	// CodeLayoutOverlap reports a field overlapping a neighbour.
	CodeLayoutOverlap Code = 5
	// CodeLockViolation reports a mutation attempted on a locked register.
	CodeLockViolation Code = 6
	// CodeNotFound reports a register or block missing from the store.
	CodeNotFound Code = 7
	// CodeConnection reports an unusable store handle.
	CodeConnection Code = 8
	// CodeSkipped reports a block register left out after a failed build.
	CodeSkipped Code = 9
)

var codeNames = map[Code]string{
	CodeConfigured:     "CONFIGURED",
	CodeLocked:         "LOCKED",
	CodeReset:          "RESET",
	CodeParseError:     "PARSE_ERROR",
	CodeLayoutOverflow: "LAYOUT_OVERFLOW",
	CodeLayoutOverlap:  "LAYOUT_OVERLAP",
	CodeLockViolation:  "LOCK_VIOLATION",
	CodeNotFound:       "NOT_FOUND",
	CodeConnection:     "CONNECTION",
	CodeSkipped:        "SKIPPED",
}

// String returns the code name.
func (c Code) String() string {
	if name, ok := codeNames[c]; ok {
		return name
	}
	return "UNKNOWN"
}

// IsLayoutConflict reports whether c is one of the layout conflict codes.
func (c Code) IsLayoutConflict() bool {
	return c == CodeLayoutOverflow || c == CodeLayoutOverlap
}

// ParseCode parses a code name such as "layout_overlap" or "parse-error".
func ParseCode(s string) (Code, error) {
	name := strings.ReplaceAll(strings.ToUpper(s), "-", "_")
	for c, n := range codeNames {
		if n == name {
			return c, nil
		}
	}
	return 0, fmt.Errorf("invalid code: %s", s)
}

// Codes returns every known code in numeric order.
func Codes() []Code {
	out := make([]Code, 0, len(codeNames))
	for c := CodeConfigured; c <= CodeSkipped; c++ {
		out = append(out, c)
	}
	return out
}
