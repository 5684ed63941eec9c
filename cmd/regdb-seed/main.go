// Command regdb-seed builds register description stores from YAML
// descriptions and exports them back.
//
// Usage:
//
//	regdb-seed <command> [flags] <args>
//
// Commands:
//
//	load      Seed YAML descriptions into a store
//	export    Export a stored component as YAML
//	checksum  Print the content checksum of YAML descriptions
//	set       Update columns of a stored register
//	delete    Remove a stored component
//
// Examples:
//
//	# Create uart.db from a description
//	regdb-seed load -db uart.db uart.yaml
//
//	# Export the stored component
//	regdb-seed export -db uart.db -o uart-out.yaml uart
//
//	# Shrink a register and clear its reset value
//	regdb-seed set -db uart.db ctrl/data size=8 resetValue=null
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/regdb/regdb/cmd/regdb-seed/commands"
)

const usage = `regdb-seed - regdb Store Builder

Usage:
  regdb-seed <command> [flags] <args>

Commands:
  load      Seed YAML descriptions into a store
  export    Export a stored component as YAML
  checksum  Print the content checksum of YAML descriptions
  set       Update columns of a stored register
  delete    Remove a stored component

Use "regdb-seed <command> -help" for more information about a command.
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	switch cmd {
	case "load":
		runLoad(args)
	case "export":
		runExport(args)
	case "checksum":
		runChecksum(args)
	case "set":
		runSet(args)
	case "delete":
		runDelete(args)
	case "-h", "-help", "--help", "help":
		fmt.Print(usage)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}
}

func fail(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}

func runLoad(args []string) {
	fs := flag.NewFlagSet("load", flag.ExitOnError)
	db := fs.String("db", "", "Store path (required)")
	verbose := fs.Bool("verbose", false, "Enable verbose output")
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	if *db == "" || fs.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "Usage: regdb-seed load -db <store.db> <description.yaml>...")
		fs.PrintDefaults()
		os.Exit(1)
	}

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelInfo
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	if err := commands.RunLoad(context.Background(), *db, fs.Args(), logger); err != nil {
		fail(err)
	}
}

func runExport(args []string) {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	db := fs.String("db", "", "Store path (required)")
	output := fs.String("o", "", "Output file (default: stdout)")
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	if *db == "" || fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Usage: regdb-seed export -db <store.db> [-o out.yaml] <component>")
		fs.PrintDefaults()
		os.Exit(1)
	}

	var w io.Writer = os.Stdout
	if *output != "" {
		f, err := os.Create(*output)
		if err != nil {
			fail(err)
		}
		defer f.Close()
		w = f
	}
	if err := commands.RunExport(context.Background(), *db, fs.Arg(0), w); err != nil {
		fail(err)
	}
}

func runChecksum(args []string) {
	fs := flag.NewFlagSet("checksum", flag.ExitOnError)
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	if fs.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "Usage: regdb-seed checksum <description.yaml>...")
		os.Exit(1)
	}
	if err := commands.RunChecksum(fs.Args(), os.Stdout); err != nil {
		fail(err)
	}
}

func runSet(args []string) {
	fs := flag.NewFlagSet("set", flag.ExitOnError)
	db := fs.String("db", "", "Store path (required)")
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	if *db == "" || fs.NArg() < 2 {
		fmt.Fprintln(os.Stderr, "Usage: regdb-seed set -db <store.db> <[block/]register> <column=value>...")
		fs.PrintDefaults()
		os.Exit(1)
	}
	if err := commands.RunSet(context.Background(), *db, fs.Arg(0), fs.Args()[1:], os.Stdout); err != nil {
		fail(err)
	}
}

func runDelete(args []string) {
	fs := flag.NewFlagSet("delete", flag.ExitOnError)
	db := fs.String("db", "", "Store path (required)")
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	if *db == "" || fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Usage: regdb-seed delete -db <store.db> <component>")
		fs.PrintDefaults()
		os.Exit(1)
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	if err := commands.RunDelete(context.Background(), *db, fs.Arg(0), logger); err != nil {
		fail(err)
	}
}
