// Command regdb-shell explores a register description store interactively.
//
// Usage:
//
//	regdb-shell [flags] <store.db>
//
// Flags:
//
//	-config string       YAML session configuration (store, diagnostics, filters)
//	-diagnostics string  File path for diagnostics (CBOR format)
//	-severity string     Minimum diagnostic severity to keep (default "debug")
//	-verbose             Mirror diagnostics to the operational log
//
// Examples:
//
//	# Explore a store
//	regdb-shell uart.db
//
//	# Keep warnings and above in a diagnostics file
//	regdb-shell -severity warning -diagnostics shell.rdiag uart.db
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/regdb/regdb/cmd/regdb-shell/interactive"
	"github.com/regdb/regdb/pkg/log"
	"github.com/regdb/regdb/pkg/session"
)

var (
	configPath  = flag.String("config", "", "YAML session configuration")
	diagnostics = flag.String("diagnostics", "", "File path for diagnostics (CBOR format)")
	severity    = flag.String("severity", "", "Minimum diagnostic severity to keep")
	verbose     = flag.Bool("verbose", false, "Mirror diagnostics to the operational log")
)

func main() {
	flag.Parse()

	cfg := session.DefaultConfig()
	if *configPath != "" {
		var err error
		if cfg, err = session.LoadConfig(*configPath); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}
	if flag.NArg() > 0 {
		cfg.StorePath = flag.Arg(0)
	}
	if *diagnostics != "" {
		cfg.DiagnosticsPath = *diagnostics
	}
	if *severity != "" {
		cfg.MinSeverity = *severity
	}
	if cfg.StorePath == "" {
		fmt.Fprintln(os.Stderr, "Error: store path is required")
		flag.Usage()
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	var opts []session.Option
	if *verbose {
		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
		opts = append(opts, session.WithLogger(log.NewSlogAdapter(logger)))
	}

	sess, err := session.Open(ctx, cfg, opts...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer sess.Close()

	fmt.Printf("regdb shell: %s (session %s)\n", cfg.StorePath, sess.ID())
	if err := interactive.New(sess, os.Stdout).Run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
