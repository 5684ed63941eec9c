// Package runner executes regdb scenarios against in-memory register
// description stores.
//
// Every scenario gets a fresh session: an in-memory SQLite store with the
// schema applied, seeded from the scenario's fixture when it names one.
// Steps drive the session through the action handlers in handlers.go.
package runner

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/regdb/regdb/internal/testharness/engine"
	"github.com/regdb/regdb/internal/testharness/loader"
	"github.com/regdb/regdb/internal/testharness/reporter"
	"github.com/regdb/regdb/pkg/fixture"
	"github.com/regdb/regdb/pkg/log"
	"github.com/regdb/regdb/pkg/session"
	"github.com/regdb/regdb/pkg/store"
)

// Config configures the scenario runner.
type Config struct {
	// TestDir is the directory searched recursively for scenario files.
	TestDir string

	// Pattern keeps scenarios whose ID starts with one of these
	// comma-separated prefixes.
	Pattern string

	// Tags keeps scenarios carrying at least one of these tags.
	Tags []string

	// Timeout is the per-scenario timeout.
	Timeout time.Duration

	// StopOnFailure stops the suite after the first failed scenario.
	StopOnFailure bool

	// Verbose reports step details and mirrors diagnostics to Logger.
	Verbose bool

	// Output receives the report.
	Output io.Writer

	// OutputFormat is "text", "json" or "junit".
	OutputFormat string

	// DiagnosticsPath, when set, appends every session's diagnostics to
	// this CBOR file. Events carry the scenario ID as session ID.
	DiagnosticsPath string

	// Logger receives operational messages.
	Logger *slog.Logger
}

// Runner runs scenarios.
type Runner struct {
	config   *Config
	engine   *engine.Engine
	reporter reporter.Reporter
	diag     *log.FileLogger
	logger   *slog.Logger
}

// New creates a runner. It fails when the report format is unknown or the
// diagnostics file cannot be opened.
func New(config *Config) (*Runner, error) {
	if config.Output == nil {
		config.Output = os.Stdout
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	rep, err := reporter.New(config.OutputFormat, config.Output, config.Verbose)
	if err != nil {
		return nil, err
	}

	engineConfig := engine.DefaultConfig()
	if config.Timeout > 0 {
		engineConfig.DefaultTimeout = config.Timeout
	}
	engineConfig.StopOnFirstFailure = config.StopOnFailure

	r := &Runner{
		config:   config,
		engine:   engine.NewWithConfig(engineConfig),
		reporter: rep,
		logger:   logger,
	}

	if config.DiagnosticsPath != "" {
		r.diag, err = log.NewFileLogger(config.DiagnosticsPath)
		if err != nil {
			return nil, fmt.Errorf("diagnostics file: %w", err)
		}
	}

	engineConfig.Setup = r.setupScenario
	engineConfig.Teardown = r.teardownScenario
	if r.streaming() {
		engineConfig.OnTestComplete = func(result *engine.TestResult) {
			r.reporter.ReportTest(result)
		}
	}

	r.registerHandlers()
	return r, nil
}

// Engine returns the underlying engine.
func (r *Runner) Engine() *engine.Engine {
	return r.engine
}

// Run loads the scenarios under TestDir, applies the filters and runs them.
func (r *Runner) Run(ctx context.Context) (*engine.SuiteResult, error) {
	cases, err := loader.LoadDirectoryRecursive(r.config.TestDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load scenarios: %w", err)
	}
	if r.config.Pattern != "" {
		cases = loader.FilterByID(cases, strings.Split(r.config.Pattern, ","))
	}
	if len(r.config.Tags) > 0 {
		cases = loader.FilterByTags(cases, r.config.Tags)
	}
	if len(cases) == 0 {
		return nil, fmt.Errorf("no scenarios found matching filters (pattern=%q, tags=%v)",
			r.config.Pattern, r.config.Tags)
	}

	r.logger.Info("running scenarios", "dir", r.config.TestDir, "count", len(cases))
	result := r.RunCases(ctx, cases)
	r.reportSummary(result)
	return result, nil
}

// RunCases runs already loaded scenarios as one suite without reporting the
// summary.
func (r *Runner) RunCases(ctx context.Context, cases []*loader.TestCase) *engine.SuiteResult {
	return r.engine.RunSuite(ctx, fmt.Sprintf("regdb scenarios (%s)", r.config.TestDir), cases)
}

// streaming reports whether scenarios are reported as they complete. The
// structured formats are written once as a whole suite.
func (r *Runner) streaming() bool {
	return r.config.OutputFormat == "" || r.config.OutputFormat == "text"
}

func (r *Runner) reportSummary(result *engine.SuiteResult) {
	if r.streaming() {
		fmt.Fprintf(r.config.Output, "\n--- Summary ---\nPassed: %d  Failed: %d  Skipped: %d  (%s)\n",
			result.PassCount, result.FailCount, result.SkipCount, result.Duration.Round(time.Millisecond))
		return
	}
	r.reporter.ReportSuite(result)
}

// Close releases the diagnostics file.
func (r *Runner) Close() error {
	if r.diag != nil {
		return r.diag.Close()
	}
	return nil
}

// setupScenario opens a fresh session for tc and seeds its fixture.
func (r *Runner) setupScenario(ctx context.Context, tc *loader.TestCase, state *engine.ExecutionState) error {
	repo, err := store.OpenMemory(ctx)
	if err != nil {
		return err
	}

	if path := tc.FixturePath(); path != "" {
		if _, err := seedFixture(ctx, repo, path); err != nil {
			repo.Close()
			return err
		}
	}

	opts := []session.Option{session.WithSessionID(tc.ID)}
	if r.diag != nil {
		opts = append(opts, session.WithLogger(r.diag))
	}
	if r.config.Verbose {
		opts = append(opts, session.WithLogger(log.NewSlogAdapter(r.logger)))
	}

	state.Custom[stateRepo] = repo
	state.Custom[stateDir] = tc.Dir
	state.Custom[stateSession] = session.New(repo, opts...)
	r.logger.Debug("scenario setup", "id", tc.ID, "fixture", tc.FixturePath())
	return nil
}

// teardownScenario counts the scenario's diagnostics by code and closes its
// session.
func (r *Runner) teardownScenario(tc *loader.TestCase, state *engine.ExecutionState, result *engine.TestResult) {
	sess, ok := state.Custom[stateSession].(*session.Session)
	if !ok {
		return
	}
	counts := make(map[string]int)
	for _, e := range sess.Diagnostics() {
		counts[e.Code.String()]++
	}
	if len(counts) > 0 {
		result.Diagnostics = counts
	}
	if err := sess.Close(); err != nil {
		r.logger.Warn("closing session", "id", tc.ID, "error", err)
	}
	r.logger.Debug("scenario teardown", "id", tc.ID,
		"codes", slices.Sorted(maps.Keys(counts)))
}

func seedFixture(ctx context.Context, repo *store.SQLite, path string) (int64, error) {
	d, err := fixture.Load(path)
	if err != nil {
		return 0, err
	}
	if err := d.Validate(); err != nil {
		return 0, err
	}
	return fixture.Seed(ctx, repo, d, path)
}
