// Command regdb-log views and analyzes regdb diagnostics files.
//
// Diagnostics files are written by regdb-test and regdb-shell with the
// -diagnostics flag, and by any session configured with a diagnostics path.
//
// Usage:
//
//	regdb-log <command> [flags] <file.rdiag>
//
// Commands:
//
//	view     View diagnostics in human-readable format
//	export   Export diagnostics to JSONL or CSV format
//	filter   Filter diagnostics and write to a new file
//	stats    Show statistics about the diagnostics file
//
// Examples:
//
//	# View warnings and errors only
//	regdb-log view -severity warning run.rdiag
//
//	# View layout overlaps of one register
//	regdb-log view -code layout-overlap -register ctrl run.rdiag
//
//	# Export one session to JSONL
//	regdb-log export -session TC-LAYOUT-001 -format jsonl run.rdiag
//
//	# Show statistics
//	regdb-log stats run.rdiag
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/regdb/regdb/cmd/regdb-log/commands"
)

const usage = `regdb-log - regdb Diagnostics Analyzer

Usage:
  regdb-log <command> [flags] <file.rdiag>

Commands:
  view     View diagnostics in human-readable format
  export   Export diagnostics to JSONL or CSV format
  filter   Filter diagnostics and write to a new file
  stats    Show statistics about the diagnostics file

Use "regdb-log <command> -help" for more information about a command.
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	switch cmd {
	case "view":
		runView(args)
	case "export":
		runExport(args)
	case "filter":
		runFilter(args)
	case "stats":
		runStats(args)
	case "-h", "-help", "--help", "help":
		fmt.Print(usage)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}
}

// filterFlags registers the shared filter flags on fs.
func filterFlags(fs *flag.FlagSet) *commands.FilterOptions {
	opts := &commands.FilterOptions{}
	fs.StringVar(&opts.SessionID, "session", "", "Filter by session ID")
	fs.StringVar(&opts.MinSeverity, "severity", "", "Minimum severity (debug, info, warning, error)")
	fs.StringVar(&opts.Code, "code", "", "Filter by event code (e.g. layout-overlap)")
	fs.StringVar(&opts.Register, "register", "", "Filter by register name")
	fs.StringVar(&opts.TimeStart, "time-start", "", "Filter by start time (RFC3339, inclusive)")
	fs.StringVar(&opts.TimeEnd, "time-end", "", "Filter by end time (RFC3339, exclusive)")
	return opts
}

func newFlagSet(name, summary, usageLine string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "regdb-log %s - %s\n\nUsage:\n  %s\n\nFlags:\n", name, summary, usageLine)
		fs.PrintDefaults()
	}
	return fs
}

// pathArg parses args and returns the single file argument.
func pathArg(fs *flag.FlagSet, args []string) string {
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Error: diagnostics file path required")
		fs.Usage()
		os.Exit(1)
	}
	return fs.Arg(0)
}

func fail(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}

func runView(args []string) {
	fs := newFlagSet("view", "View diagnostics in human-readable format", "regdb-log view [flags] <file.rdiag>")
	opts := filterFlags(fs)
	path := pathArg(fs, args)

	if err := commands.RunView(path, *opts, os.Stdout); err != nil {
		fail(err)
	}
}

func runExport(args []string) {
	fs := newFlagSet("export", "Export diagnostics to JSONL or CSV format", "regdb-log export [flags] <file.rdiag>")
	opts := filterFlags(fs)
	format := fs.String("format", "jsonl", "Output format (jsonl, csv)")
	output := fs.String("o", "", "Output file (default: stdout)")
	path := pathArg(fs, args)

	if err := commands.RunExport(path, *format, *output, *opts); err != nil {
		fail(err)
	}
}

func runFilter(args []string) {
	fs := newFlagSet("filter", "Filter diagnostics and write to a new file", "regdb-log filter -o <out.rdiag> [flags] <file.rdiag>")
	opts := filterFlags(fs)
	output := fs.String("o", "", "Output file (required)")
	path := pathArg(fs, args)

	if *output == "" {
		fmt.Fprintln(os.Stderr, "Error: output file (-o) required")
		fs.Usage()
		os.Exit(1)
	}

	n, err := commands.RunFilter(path, *output, *opts)
	if err != nil {
		fail(err)
	}
	fmt.Printf("Wrote %d events to %s\n", n, *output)
}

func runStats(args []string) {
	fs := newFlagSet("stats", "Show statistics about the diagnostics file", "regdb-log stats <file.rdiag>")
	path := pathArg(fs, args)

	if err := commands.RunStats(path, os.Stdout); err != nil {
		fail(err)
	}
}
