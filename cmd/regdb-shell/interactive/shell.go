// Package interactive provides the interactive command-line interface
// for regdb-shell.
package interactive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"github.com/davecgh/go-spew/spew"

	"github.com/regdb/regdb/pkg/inspect"
	"github.com/regdb/regdb/pkg/log"
	"github.com/regdb/regdb/pkg/session"
)

// Shell handles interactive mode for regdb-shell.
type Shell struct {
	sess      *session.Session
	inspector *inspect.Inspector
	catalog   *inspect.Catalog
	formatter *inspect.Formatter
	dumper    *spew.ConfigState
	out       io.Writer
}

// New creates a shell over sess writing to out.
func New(sess *session.Session, out io.Writer) *Shell {
	if out == nil {
		out = os.Stdout
	}
	f := inspect.NewFormatter()
	f.ShowMetadata = true
	f.ShowConflicts = true
	return &Shell{
		sess:      sess,
		inspector: inspect.NewInspector(sess),
		catalog:   inspect.NewCatalog(sess.Materializer()),
		formatter: f,
		dumper: &spew.ConfigState{
			Indent:                  "  ",
			DisablePointerAddresses: true,
			DisableCapacities:       true,
			SortKeys:                true,
		},
		out: out,
	}
}

// Run starts the interactive command loop on the terminal.
func (s *Shell) Run(ctx context.Context) error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "regdb> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
		AutoComplete:    s.completer(ctx),
	})
	if err != nil {
		return fmt.Errorf("failed to create readline: %w", err)
	}
	defer rl.Close()
	s.out = rl.Stdout()

	s.printHelp()

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		line, err := rl.Readline()
		if err != nil {
			if errors.Is(err, readline.ErrInterrupt) {
				continue
			}
			fmt.Fprintln(s.out, "Exiting...")
			return nil
		}
		if !s.Execute(ctx, line) {
			return nil
		}
	}
}

// completer completes commands and the names the store describes.
func (s *Shell) completer(ctx context.Context) *readline.PrefixCompleter {
	names := readline.PcItemDynamic(func(line string) []string {
		fields := strings.Fields(line)
		prefix := ""
		if len(fields) > 1 && !strings.HasSuffix(line, " ") {
			prefix = fields[len(fields)-1]
		}
		out, err := s.catalog.Complete(ctx, prefix)
		if err != nil {
			return nil
		}
		return out
	})
	return readline.NewPrefixCompleter(
		readline.PcItem("help"),
		readline.PcItem("list"),
		readline.PcItem("configure", names),
		readline.PcItem("block", names),
		readline.PcItem("inspect", names),
		readline.PcItem("read", names),
		readline.PcItem("write", names),
		readline.PcItem("dump", names),
		readline.PcItem("lock"),
		readline.PcItem("reset"),
		readline.PcItem("diag"),
		readline.PcItem("quit"),
	)
}

// Execute runs one command line. It returns false when the shell should
// exit.
func (s *Shell) Execute(ctx context.Context, line string) bool {
	input := strings.TrimSpace(line)
	if input == "" {
		return true
	}

	parts := strings.Fields(input)
	cmd := strings.ToLower(parts[0])
	args := parts[1:]

	switch cmd {
	case "help", "?":
		s.printHelp()
	case "list", "ls":
		s.cmdList(ctx)
	case "configure", "c":
		s.cmdConfigure(ctx, args)
	case "block", "b":
		s.cmdBlock(ctx, args)
	case "inspect", "i":
		s.cmdInspect(args)
	case "read", "r":
		s.cmdRead(args)
	case "write", "w":
		s.cmdWrite(args)
	case "dump":
		s.cmdDump(args)
	case "lock":
		s.report(s.sess.Lock())
	case "reset":
		s.sess.Reset()
		fmt.Fprintln(s.out, "Mirrors reset")
	case "diag", "d":
		s.cmdDiag(args)
	case "quit", "exit", "q":
		fmt.Fprintln(s.out, "Exiting...")
		return false
	default:
		fmt.Fprintf(s.out, "Unknown command: %s (type 'help' for commands)\n", cmd)
	}
	return true
}

func (s *Shell) printHelp() {
	fmt.Fprintln(s.out, `
regdb Shell Commands:
  Store:
    list                   - List the blocks and registers in the store
    configure <register>   - Build a register from the store
    block <block>          - Build every register of a block

  Inspection:
    inspect [path]         - Inspect built registers (or one register/block)
    read <path>            - Read a mirrored register or field value
    write <path> <value>   - Predict a write (numbers, 8'hFF literals, enum names)
    dump <register>        - Dump the register model

  Lifecycle:
    lock                   - Lock every built register
    reset                  - Reset every mirror to its reset value
    diag [code]            - Show diagnostics, optionally one code

  quit                     - Exit`)
}

func (s *Shell) report(err error) {
	if err != nil {
		fmt.Fprintf(s.out, "Error: %v\n", err)
		return
	}
	fmt.Fprintln(s.out, "OK")
}

func (s *Shell) cmdList(ctx context.Context) {
	entries, err := s.catalog.Entries(ctx)
	if err != nil {
		s.report(err)
		return
	}
	if len(entries) == 0 {
		fmt.Fprintln(s.out, "(store describes no blocks)")
		return
	}
	fmt.Fprint(s.out, s.catalog.Format(entries, s.formatter))
}

func (s *Shell) cmdConfigure(ctx context.Context, args []string) {
	if len(args) != 1 {
		fmt.Fprintln(s.out, "Usage: configure <register>")
		return
	}
	if _, err := s.sess.Configure(ctx, args[0]); err != nil {
		s.report(err)
		return
	}
	s.cmdInspect(args)
}

func (s *Shell) cmdBlock(ctx context.Context, args []string) {
	if len(args) != 1 {
		fmt.Fprintln(s.out, "Usage: block <block>")
		return
	}
	if _, err := s.sess.ConfigureBlock(ctx, args[0]); err != nil {
		s.report(err)
		return
	}
	s.cmdInspect([]string{strings.TrimSuffix(args[0], "/") + "/"})
}

func (s *Shell) cmdInspect(args []string) {
	if len(args) == 0 {
		regs := s.inspector.InspectAll()
		if len(regs) == 0 {
			fmt.Fprintln(s.out, "(no registers built; use configure or block)")
			return
		}
		for i := range regs {
			fmt.Fprint(s.out, s.formatter.FormatRegister(&regs[i]))
		}
		return
	}

	path, err := inspect.ParsePath(args[0])
	if err != nil {
		s.report(err)
		return
	}
	if path.Register == "" {
		info, err := s.inspector.InspectBlock(path.Block)
		if err != nil {
			s.report(err)
			return
		}
		fmt.Fprint(s.out, s.formatter.FormatBlock(info))
		return
	}
	info, err := s.inspector.InspectRegister(path)
	if err != nil {
		s.report(err)
		return
	}
	fmt.Fprint(s.out, s.formatter.FormatRegister(info))
}

func (s *Shell) cmdRead(args []string) {
	if len(args) != 1 {
		fmt.Fprintln(s.out, "Usage: read <path>")
		return
	}
	path, err := inspect.ParsePath(args[0])
	if err != nil {
		s.report(err)
		return
	}
	reg, f, err := s.inspector.Resolve(path)
	if err != nil {
		s.report(err)
		return
	}
	v, err := s.inspector.Read(path)
	if err != nil {
		s.report(err)
		return
	}
	if f == nil {
		fmt.Fprintf(s.out, "%s = %s\n", path, inspect.FormatValue(v, reg.TotalBits()))
		return
	}
	fmt.Fprintf(s.out, "%s = %s\n", path, inspect.FormatFieldValue(inspect.FieldInfo{
		Field: *f, Value: v, Enum: inspect.GetEnumName(*f, v),
	}))
}

func (s *Shell) cmdWrite(args []string) {
	if len(args) != 2 {
		fmt.Fprintln(s.out, "Usage: write <path> <value>")
		return
	}
	path, err := inspect.ParsePath(args[0])
	if err != nil {
		s.report(err)
		return
	}
	if err := s.inspector.Write(path, args[1]); err != nil {
		s.report(err)
		return
	}
	reg, _, _ := s.inspector.Resolve(path)
	fmt.Fprintf(s.out, "%s = %s\n", reg.Name(), inspect.FormatValue(reg.Mirror(), reg.TotalBits()))
}

// cmdDump prints the register model with go-spew for debugging.
func (s *Shell) cmdDump(args []string) {
	if len(args) != 1 {
		fmt.Fprintln(s.out, "Usage: dump <register>")
		return
	}
	path, err := inspect.ParsePath(args[0])
	if err != nil {
		s.report(err)
		return
	}
	info, err := s.inspector.InspectRegister(path)
	if err != nil {
		s.report(err)
		return
	}
	s.dumper.Fdump(s.out, info)
}

func (s *Shell) cmdDiag(args []string) {
	events := s.sess.Diagnostics()
	if len(args) > 0 {
		code, err := log.ParseCode(args[0])
		if err != nil {
			s.report(err)
			return
		}
		var kept []log.Event
		for _, e := range events {
			if e.Code == code {
				kept = append(kept, e)
			}
		}
		events = kept
	}
	if len(events) == 0 {
		fmt.Fprintln(s.out, "(no diagnostics)")
		return
	}
	for _, e := range events {
		fmt.Fprintln(s.out, e.String())
	}
}
