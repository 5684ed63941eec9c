package commands

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/regdb/regdb/pkg/log"
)

// jsonEvent is the exported form of an event with readable enums.
type jsonEvent struct {
	Timestamp time.Time         `json:"timestamp"`
	SessionID string            `json:"session_id,omitempty"`
	Severity  string            `json:"severity"`
	Code      string            `json:"code"`
	Register  string            `json:"register,omitempty"`
	Field     string            `json:"field,omitempty"`
	Message   string            `json:"message,omitempty"`
	Context   map[string]string `json:"context,omitempty"`
}

// RunExport exports the events of path matching opts in the given format.
func RunExport(path, format, output string, opts FilterOptions) error {
	filter, err := opts.Build()
	if err != nil {
		return err
	}

	reader, err := log.NewFilteredReader(path, filter)
	if err != nil {
		return fmt.Errorf("failed to open diagnostics file: %w", err)
	}
	defer reader.Close()

	var w io.Writer = os.Stdout
	if output != "" {
		f, err := os.Create(output)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		w = f
	}

	switch format {
	case "jsonl":
		return exportJSONL(reader, w)
	case "csv":
		return exportCSV(reader, w)
	default:
		return fmt.Errorf("unknown format: %s (supported: jsonl, csv)", format)
	}
}

func exportJSONL(reader *log.Reader, w io.Writer) error {
	encoder := json.NewEncoder(w)
	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}
		if err := encoder.Encode(jsonEvent{
			Timestamp: event.Timestamp,
			SessionID: event.SessionID,
			Severity:  event.Severity.String(),
			Code:      event.Code.String(),
			Register:  event.Register,
			Field:     event.Field,
			Message:   event.Message,
			Context:   event.Context,
		}); err != nil {
			return fmt.Errorf("failed to encode event: %w", err)
		}
	}
	return nil
}

func exportCSV(reader *log.Reader, w io.Writer) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	header := []string{"timestamp", "session_id", "severity", "code", "register", "field", "message"}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}
		record := []string{
			event.Timestamp.UTC().Format(time.RFC3339Nano),
			event.SessionID,
			event.Severity.String(),
			event.Code.String(),
			event.Register,
			event.Field,
			event.Message,
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write record: %w", err)
		}
	}
	return cw.Error()
}
