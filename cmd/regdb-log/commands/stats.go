package commands

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/regdb/regdb/pkg/log"
)

// Stats holds aggregate statistics about a diagnostics file.
type Stats struct {
	TotalEvents      int
	EventsByCode     map[log.Code]int
	EventsBySeverity map[log.Severity]int
	Sessions         map[string]*SessionStats
	TimeRange        struct {
		Start time.Time
		End   time.Time
	}
}

// SessionStats holds statistics for a single session.
type SessionStats struct {
	FirstSeen time.Time
	LastSeen  time.Time
	Events    int
	Registers map[string]bool
	Conflicts int
}

// Collect reads every event of path.
func Collect(path string) (*Stats, error) {
	reader, err := log.NewReader(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open diagnostics file: %w", err)
	}
	defer reader.Close()

	stats := &Stats{
		EventsByCode:     make(map[log.Code]int),
		EventsBySeverity: make(map[log.Severity]int),
		Sessions:         make(map[string]*SessionStats),
	}

	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read event: %w", err)
		}

		stats.TotalEvents++
		stats.EventsByCode[event.Code]++
		stats.EventsBySeverity[event.Severity]++

		if stats.TimeRange.Start.IsZero() || event.Timestamp.Before(stats.TimeRange.Start) {
			stats.TimeRange.Start = event.Timestamp
		}
		if event.Timestamp.After(stats.TimeRange.End) {
			stats.TimeRange.End = event.Timestamp
		}

		sess, ok := stats.Sessions[event.SessionID]
		if !ok {
			sess = &SessionStats{
				FirstSeen: event.Timestamp,
				LastSeen:  event.Timestamp,
				Registers: make(map[string]bool),
			}
			stats.Sessions[event.SessionID] = sess
		}
		sess.Events++
		if event.Timestamp.After(sess.LastSeen) {
			sess.LastSeen = event.Timestamp
		}
		if event.Register != "" {
			sess.Registers[event.Register] = true
		}
		if event.Code.IsLayoutConflict() {
			sess.Conflicts++
		}
	}
	return stats, nil
}

// RunStats analyzes the diagnostics file and prints statistics.
func RunStats(path string, w io.Writer) error {
	stats, err := Collect(path)
	if err != nil {
		return err
	}
	printStats(w, stats)
	return nil
}

func printStats(w io.Writer, stats *Stats) {
	fmt.Fprintln(w, "=== regdb Diagnostics Statistics ===")
	fmt.Fprintln(w)

	if stats.TotalEvents > 0 {
		fmt.Fprintf(w, "Time Range: %s to %s\n",
			stats.TimeRange.Start.Format(time.RFC3339),
			stats.TimeRange.End.Format(time.RFC3339))
		fmt.Fprintf(w, "Duration:   %s\n", stats.TimeRange.End.Sub(stats.TimeRange.Start).Round(time.Millisecond))
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "Total Events: %d\n", stats.TotalEvents)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Events by Severity:")
	for _, sev := range []log.Severity{log.SeverityDebug, log.SeverityInfo, log.SeverityWarning, log.SeverityError} {
		if count := stats.EventsBySeverity[sev]; count > 0 {
			fmt.Fprintf(w, "  %-16s %d\n", sev.String()+":", count)
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Events by Code:")
	for _, code := range log.Codes() {
		if count := stats.EventsByCode[code]; count > 0 {
			fmt.Fprintf(w, "  %-16s %d\n", code.String()+":", count)
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "Sessions: %d\n", len(stats.Sessions))
	if len(stats.Sessions) == 0 {
		return
	}

	type sessionInfo struct {
		id    string
		stats *SessionStats
	}
	sessions := make([]sessionInfo, 0, len(stats.Sessions))
	for id, ss := range stats.Sessions {
		sessions = append(sessions, sessionInfo{id, ss})
	}
	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].stats.FirstSeen.Before(sessions[j].stats.FirstSeen)
	})

	fmt.Fprintln(w)
	for _, s := range sessions {
		duration := s.stats.LastSeen.Sub(s.stats.FirstSeen).Round(time.Millisecond)
		fmt.Fprintf(w, "  [%s] %d events, %d registers, duration %s\n",
			shortenID(s.id), s.stats.Events, len(s.stats.Registers), duration)
		if s.stats.Conflicts > 0 {
			fmt.Fprintf(w, "           Layout conflicts: %d\n", s.stats.Conflicts)
		}
	}
}
