package log

import "slices"

// Predicate selects events. It returns true to keep an event.
type Predicate func(Event) bool

// FilteredLogger forwards only the events its predicate keeps.
type FilteredLogger struct {
	next Logger
	keep Predicate
}

// NewFilteredLogger wraps next. A nil predicate keeps everything.
func NewFilteredLogger(next Logger, keep Predicate) *FilteredLogger {
	return &FilteredLogger{next: OrNoop(next), keep: keep}
}

// Log forwards the event if the predicate keeps it.
func (f *FilteredLogger) Log(event Event) {
	if f.keep == nil || f.keep(event) {
		f.next.Log(event)
	}
}

// MinSeverity keeps events at or above s.
func MinSeverity(s Severity) Predicate {
	return func(e Event) bool { return e.Severity >= s }
}

// Suppress drops events carrying any of the given codes.
func Suppress(codes ...Code) Predicate {
	return func(e Event) bool { return !slices.Contains(codes, e.Code) }
}

// All keeps an event only when every predicate keeps it.
func All(preds ...Predicate) Predicate {
	return func(e Event) bool {
		for _, p := range preds {
			if p != nil && !p(e) {
				return false
			}
		}
		return true
	}
}

// Compile-time interface satisfaction check.
var _ Logger = (*FilteredLogger)(nil)
