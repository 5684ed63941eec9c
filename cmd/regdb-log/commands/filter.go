package commands

import (
	"fmt"
	"io"
	"time"

	"github.com/regdb/regdb/pkg/log"
)

// FilterOptions specifies filtering criteria shared by the view, export and
// filter commands.
type FilterOptions struct {
	SessionID   string
	MinSeverity string
	Code        string
	Register    string
	TimeStart   string
	TimeEnd     string
}

// Build converts the options into a log.Filter.
func (o FilterOptions) Build() (log.Filter, error) {
	filter := log.Filter{
		SessionID: o.SessionID,
		Register:  o.Register,
	}

	if o.MinSeverity != "" {
		s, err := log.ParseSeverity(o.MinSeverity)
		if err != nil {
			return log.Filter{}, err
		}
		filter.MinSeverity = &s
	}

	if o.Code != "" {
		c, err := log.ParseCode(o.Code)
		if err != nil {
			return log.Filter{}, err
		}
		filter.Code = &c
	}

	if o.TimeStart != "" {
		t, err := time.Parse(time.RFC3339, o.TimeStart)
		if err != nil {
			return log.Filter{}, fmt.Errorf("invalid time-start format: %w", err)
		}
		filter.TimeStart = &t
	}

	if o.TimeEnd != "" {
		t, err := time.Parse(time.RFC3339, o.TimeEnd)
		if err != nil {
			return log.Filter{}, fmt.Errorf("invalid time-end format: %w", err)
		}
		filter.TimeEnd = &t
	}

	return filter, nil
}

// RunFilter writes the events of path matching opts to output and returns
// how many were written.
func RunFilter(path, output string, opts FilterOptions) (int, error) {
	filter, err := opts.Build()
	if err != nil {
		return 0, err
	}

	reader, err := log.NewFilteredReader(path, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to open diagnostics file: %w", err)
	}
	defer reader.Close()

	writer, err := log.NewFileLogger(output)
	if err != nil {
		return 0, fmt.Errorf("failed to create output file: %w", err)
	}
	defer writer.Close()

	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return writer.Written(), fmt.Errorf("failed to read event: %w", err)
		}
		writer.Log(event)
	}
	return writer.Written(), nil
}
