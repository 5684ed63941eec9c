// Package commands implements the regdb-log CLI commands.
package commands

import (
	"fmt"
	"io"
	"maps"
	"slices"

	"github.com/regdb/regdb/pkg/log"
)

// formatEvent writes a human-readable representation of the event to w.
func formatEvent(w io.Writer, event log.Event) {
	ts := event.Timestamp.UTC().Format("2006-01-02T15:04:05.000000Z")
	fmt.Fprintf(w, "%s [session:%s] %-7s %s\n", ts, shortenID(event.SessionID), event.Severity, event.Code)

	if event.Register != "" {
		target := event.Register
		if event.Field != "" {
			target += "." + event.Field
		}
		fmt.Fprintf(w, "  Target: %s\n", target)
	}
	if event.Message != "" {
		fmt.Fprintf(w, "  Message: %s\n", event.Message)
	}
	for _, k := range slices.Sorted(maps.Keys(event.Context)) {
		fmt.Fprintf(w, "  %s: %s\n", k, event.Context[k])
	}

	fmt.Fprintln(w)
}

// shortenID returns the first 8 characters of a session ID.
func shortenID(id string) string {
	if len(id) >= 8 {
		return id[:8]
	}
	return id
}

// RunView prints the events of path matching opts.
func RunView(path string, opts FilterOptions, output io.Writer) error {
	filter, err := opts.Build()
	if err != nil {
		return err
	}

	reader, err := log.NewFilteredReader(path, filter)
	if err != nil {
		return fmt.Errorf("failed to open diagnostics file: %w", err)
	}
	defer reader.Close()

	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}
		formatEvent(output, event)
	}

	return nil
}
