// Package log provides the structured diagnostic channel of regdb.
//
// Materialization never fails on a malformed literal or an illegal field
// placement. Those problems are reported as Events carrying a stable
// (Severity, Code, context) tuple and delivered to a Logger. Callers decide
// what to keep by installing a predicate, not by matching message text:
//
//	// Drop overlap reports, keep everything else
//	logger := log.NewFilteredLogger(next, func(e log.Event) bool {
//	    return e.Code != log.CodeLayoutOverlap
//	})
//
// It is separate from operational logging (slog). SlogAdapter bridges the two
// for console output.
//
// # Sinks
//
//   - Collector keeps events in memory for inspection and tests.
//   - FileLogger appends CBOR-encoded events to a .rdiag file.
//   - SlogAdapter writes events to an slog.Logger.
//   - MultiLogger fans out to several sinks.
//
// # File Format
//
// Diagnostic files are a stream of CBOR maps with integer keys. The regdb-log
// tool views, filters, summarizes and exports them.
package log
