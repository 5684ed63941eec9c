// Command regdb-gen generates Go register constants from a register
// description store.
//
// For every address block it writes <block>_gen.go holding address, mask,
// shift and reset constants for each register and field, plus a typed enum
// per enumerated field.
//
// Usage:
//
//	regdb-gen -db <store.db> -output <dir> [-package regs] [-block name,...]
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/regdb/regdb/pkg/codegen"
	"github.com/regdb/regdb/pkg/session"
)

func main() {
	db := flag.String("db", "", "Register description store (required)")
	outputDir := flag.String("output", "", "Output directory for generated Go files (required)")
	pkg := flag.String("package", "regs", "Package name of the generated files")
	blocks := flag.String("block", "", "Comma-separated blocks to generate (default: all)")
	flag.Parse()

	if *db == "" || *outputDir == "" {
		fmt.Fprintln(os.Stderr, "Usage: regdb-gen -db <store.db> -output <dir> [-package regs] [-block name,...]")
		flag.PrintDefaults()
		os.Exit(1)
	}

	var names []string
	if *blocks != "" {
		names = strings.Split(*blocks, ",")
	}
	files, err := run(context.Background(), *db, *outputDir, *pkg, names)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	for _, f := range files {
		fmt.Printf("  generated %s\n", f)
	}
}

// run generates one file per block and returns the written paths.
func run(ctx context.Context, dbPath, outputDir, pkg string, blocks []string) ([]string, error) {
	cfg := session.DefaultConfig()
	cfg.StorePath = dbPath
	cfg.ReadOnly = true
	// Generation reports problems through the returned error, not the
	// diagnostic stream.
	cfg.MinSeverity = "error"

	sess, err := session.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}
	defer sess.Close()

	if len(blocks) == 0 {
		if blocks, err = sess.Materializer().Blocks(ctx); err != nil {
			return nil, fmt.Errorf("listing blocks: %w", err)
		}
	}

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output dir: %w", err)
	}

	var written []string
	for _, name := range blocks {
		block, err := sess.ConfigureBlock(ctx, name)
		if err != nil {
			return written, fmt.Errorf("block %s: %w", name, err)
		}
		code, err := codegen.GenerateBlock(block, codegen.Options{
			Package: pkg,
			Source:  filepath.Base(dbPath),
		})
		if err != nil {
			return written, fmt.Errorf("generating %s: %w", name, err)
		}
		outPath := filepath.Join(outputDir, fileName(name))
		if err := codegen.WriteFormatted(outPath, code); err != nil {
			return written, fmt.Errorf("writing %s: %w", outPath, err)
		}
		written = append(written, outPath)
	}
	if err := sess.Lock(); err != nil {
		return written, err
	}
	return written, nil
}

// fileName returns the generated file name for a block.
func fileName(block string) string {
	name := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_':
			return r
		case r >= 'A' && r <= 'Z':
			return r + ('a' - 'A')
		default:
			return '_'
		}
	}, block)
	return name + "_gen.go"
}
