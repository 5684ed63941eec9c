package engine

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/regdb/regdb/internal/testharness/loader"
)

// Engine executes scenarios.
type Engine struct {
	config   *EngineConfig
	handlers map[string]ActionHandler
	checkers map[string]ExpectChecker
	mu       sync.RWMutex
}

// New creates a new engine with default configuration.
func New() *Engine {
	return NewWithConfig(DefaultConfig())
}

// NewWithConfig creates a new engine with the given configuration.
func NewWithConfig(config *EngineConfig) *Engine {
	if config == nil {
		config = DefaultConfig()
	}

	e := &Engine{
		config:   config,
		handlers: make(map[string]ActionHandler),
		checkers: make(map[string]ExpectChecker),
	}

	e.RegisterChecker(CheckerNameDefault, defaultChecker)
	e.RegisterChecker(CheckerNameValueEquals, CheckerValueEquals)
	e.RegisterChecker(CheckerNameValueNot, CheckerValueNot)
	e.RegisterChecker(CheckerNameValueGT, CheckerValueGT)
	e.RegisterChecker(CheckerNameValueLTE, CheckerValueLTE)
	e.RegisterChecker(CheckerNameValueIn, CheckerValueIn)
	e.RegisterChecker(CheckerNameContains, CheckerContains)
	e.RegisterChecker(CheckerNameSaveAs, CheckerSaveAs)
	e.RegisterChecker(CheckerNameValueEqualsSaved, CheckerValueEqualsSaved)
	e.RegisterChecker(CheckerNameErrorContains, CheckerErrorContains)

	return e
}

// Config returns the engine configuration.
func (e *Engine) Config() *EngineConfig {
	return e.config
}

// RegisterHandler registers an action handler.
func (e *Engine) RegisterHandler(action string, handler ActionHandler) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.handlers[action] = handler
}

// RegisterChecker registers an expectation checker.
func (e *Engine) RegisterChecker(key string, checker ExpectChecker) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.checkers[key] = checker
}

// Actions returns the registered action names, sorted.
func (e *Engine) Actions() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]string, 0, len(e.handlers))
	for name := range e.handlers {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Run executes a single scenario.
func (e *Engine) Run(ctx context.Context, tc *loader.TestCase) *TestResult {
	result := &TestResult{
		TestCase:  tc,
		StartTime: time.Now(),
	}
	defer func() {
		result.EndTime = time.Now()
		result.Duration = result.EndTime.Sub(result.StartTime)
	}()

	if tc.Skip {
		result.Skipped = true
		result.SkipReason = tc.SkipReason
		if result.SkipReason == "" {
			result.SkipReason = "skipped by scenario definition"
		}
		return result
	}

	timeout := e.config.DefaultTimeout
	if tc.Timeout != "" {
		if d, err := time.ParseDuration(tc.Timeout); err == nil {
			timeout = d
		}
	}

	testCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	state := NewExecutionState(testCtx)

	if e.config.Setup != nil {
		if err := e.config.Setup(testCtx, tc, state); err != nil {
			result.Error = fmt.Errorf("setup failed: %w", err)
			return result
		}
	}
	if e.config.Teardown != nil {
		defer e.config.Teardown(tc, state, result)
	}

	for i := range tc.Steps {
		step := &tc.Steps[i]
		stepResult := e.executeStep(testCtx, step, i, state)
		result.StepResults = append(result.StepResults, stepResult)

		if !stepResult.Passed {
			result.Error = stepResult.Error
			return result
		}
	}

	result.Passed = true
	return result
}

// executeStep executes a single step.
func (e *Engine) executeStep(ctx context.Context, step *loader.Step, index int, state *ExecutionState) *StepResult {
	result := &StepResult{
		Step:          step,
		StepIndex:     index,
		ExpectResults: make(map[string]*ExpectResult),
		Output:        make(map[string]any),
	}

	startTime := time.Now()
	defer func() { result.Duration = time.Since(startTime) }()

	timeout := e.config.StepTimeout
	if step.Timeout != "" {
		if d, err := time.ParseDuration(step.Timeout); err == nil {
			timeout = d
		}
	}

	stepCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	e.mu.RLock()
	handler, exists := e.handlers[step.Action]
	e.mu.RUnlock()

	if !exists {
		result.Error = fmt.Errorf("unknown action: %s", step.Action)
		return result
	}

	// Handlers see interpolated params.
	resolved := *step
	resolved.Params = InterpolateParams(step.Params, state)

	outputs, err := handler(stepCtx, &resolved, state)
	if err != nil {
		result.Error = fmt.Errorf("step %d (%s): %w", index+1, step.Action, err)
		return result
	}

	for k, v := range outputs {
		state.Set(k, v)
		result.Output[k] = v
	}
	state.Set(InternalStepOutput, result.Output)

	// Check expectations in key order so save_as results are stable.
	result.Passed = true
	expect := InterpolateParams(step.Expect, state)
	keys := make([]string, 0, len(expect))
	for k := range expect {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, key := range keys {
		er := e.checkExpectation(key, expect[key], state)
		result.ExpectResults[key] = er
		if !er.Passed && result.Passed {
			result.Passed = false
			result.Error = fmt.Errorf("step %d (%s): expectation failed: %s - %s", index+1, step.Action, key, er.Message)
		}
	}

	return result
}

// checkExpectation checks a single expectation.
func (e *Engine) checkExpectation(key string, expected any, state *ExecutionState) *ExpectResult {
	e.mu.RLock()
	checker, exists := e.checkers[key]
	if !exists {
		checker = e.checkers[CheckerNameDefault]
	}
	e.mu.RUnlock()

	return checker(key, expected, state)
}

// RunSuite executes all scenarios in order.
func (e *Engine) RunSuite(ctx context.Context, name string, cases []*loader.TestCase) *SuiteResult {
	result := &SuiteResult{
		SuiteName: name,
	}

	startTime := time.Now()
	defer func() { result.Duration = time.Since(startTime) }()

	for _, tc := range cases {
		select {
		case <-ctx.Done():
			return result
		default:
		}

		testResult := e.Run(ctx, tc)
		result.Results = append(result.Results, testResult)

		switch {
		case testResult.Skipped:
			result.SkipCount++
		case testResult.Passed:
			result.PassCount++
		default:
			result.FailCount++
		}

		if e.config.OnTestComplete != nil {
			e.config.OnTestComplete(testResult)
		}

		if !testResult.Passed && !testResult.Skipped && e.config.StopOnFirstFailure {
			break
		}
	}

	return result
}
