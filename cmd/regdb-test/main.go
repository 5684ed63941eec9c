// Command regdb-test runs YAML scenarios against register descriptions.
//
// Each scenario seeds its fixture into a fresh in-memory store, then
// configures, locks and exercises registers step by step, checking the
// outputs against the scenario's expectations.
//
// Usage:
//
//	regdb-test [flags] [id-prefix,...]
//
// Flags:
//
//	-tests string        Path to scenario directory (default "./testdata/scenarios")
//	-tags string         Comma-separated tags to run
//	-timeout duration    Scenario timeout (default 30s)
//	-stop-on-failure     Stop after the first failed scenario
//	-verbose             Enable verbose output
//	-json                Output results as JSON
//	-junit               Output results as JUnit XML
//	-diagnostics string  File path for diagnostics (CBOR format)
//
// Examples:
//
//	# Run every scenario
//	regdb-test -tests ./scenarios
//
//	# Run the layout scenarios with diagnostics
//	regdb-test -diagnostics run.rdiag TC-LAYOUT
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/regdb/regdb/internal/testharness/runner"
)

var (
	tests         = flag.String("tests", "./testdata/scenarios", "Path to scenario directory")
	tags          = flag.String("tags", "", "Comma-separated tags to run")
	timeout       = flag.Duration("timeout", 30*time.Second, "Scenario timeout")
	stopOnFailure = flag.Bool("stop-on-failure", false, "Stop after the first failed scenario")
	verbose       = flag.Bool("verbose", false, "Enable verbose output")
	jsonOut       = flag.Bool("json", false, "Output results as JSON")
	junitOut      = flag.Bool("junit", false, "Output results as JUnit XML")
	diagnostics   = flag.String("diagnostics", "", "File path for diagnostics (CBOR format)")
)

func main() {
	flag.Parse()

	pattern := ""
	if flag.NArg() > 0 {
		pattern = flag.Arg(0)
	}

	outputFormat := "text"
	if *jsonOut {
		outputFormat = "json"
	} else if *junitOut {
		outputFormat = "junit"
	}

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	config := &runner.Config{
		TestDir:         *tests,
		Pattern:         pattern,
		Timeout:         *timeout,
		StopOnFailure:   *stopOnFailure,
		Verbose:         *verbose,
		Output:          os.Stdout,
		OutputFormat:    outputFormat,
		DiagnosticsPath: *diagnostics,
		Logger:          logger,
	}
	if *tags != "" {
		config.Tags = strings.Split(*tags, ",")
	}

	if outputFormat == "text" {
		printBanner()
	}

	r, err := runner.New(config)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	result, err := r.Run(ctx)
	cancel()
	if cerr := r.Close(); cerr != nil {
		logger.Warn("closing diagnostics", "error", cerr)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if result.FailCount > 0 {
		os.Exit(1)
	}
}

func printBanner() {
	fmt.Print(`
 _ __ ___  __ _  __| | |__
| '__/ _ \/ _' |/ _' | '_ \
| | |  __/ (_| | (_| | |_) |
|_|  \___|\__, |\__,_|_.__/
          |___/
Register Scenario Runner
`)
}
