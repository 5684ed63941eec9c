// Package loader provides YAML scenario loading for the regdb test harness.
package loader

import "fmt"

// TestCase represents a single scenario loaded from YAML.
type TestCase struct {
	// ID is the unique scenario identifier (e.g., "TC-LAYOUT-001").
	ID string `yaml:"id"`

	// Name is a human-readable name for the scenario.
	Name string `yaml:"name"`

	// Description explains what the scenario validates.
	Description string `yaml:"description"`

	// Fixture is a YAML register description seeded into a fresh in-memory
	// store before the first step. Relative paths resolve against Dir.
	Fixture string `yaml:"fixture,omitempty"`

	// Steps are the actions to execute in order.
	Steps []Step `yaml:"steps"`

	// Timeout is the maximum duration for the scenario (e.g., "30s").
	Timeout string `yaml:"timeout,omitempty"`

	// Tags for categorizing scenarios.
	Tags []string `yaml:"tags,omitempty"`

	// Skip marks the scenario as skipped.
	Skip bool `yaml:"skip,omitempty"`

	// SkipReason explains why the scenario is skipped.
	SkipReason string `yaml:"skip_reason,omitempty"`

	// Dir is the directory the scenario was loaded from.
	Dir string `yaml:"-"`
}

// Step represents a single action in a scenario.
type Step struct {
	// Action is the action to perform (e.g., "configure_register", "lock").
	Action string `yaml:"action"`

	// Params are parameters for the action.
	Params map[string]any `yaml:"params,omitempty"`

	// Expect defines expected outcomes after the action.
	Expect map[string]any `yaml:"expect,omitempty"`

	// Timeout overrides the default step timeout.
	Timeout string `yaml:"timeout,omitempty"`

	// Description explains what this step does.
	Description string `yaml:"description,omitempty"`
}

// LoadError provides details about a scenario loading error.
type LoadError struct {
	// File is the path to the file that failed to load.
	File string

	// Line is the line number where the error occurred (0 if unknown).
	Line int

	// Message describes the error.
	Message string

	// Cause is the underlying error, if any.
	Cause error
}

func (e *LoadError) Error() string {
	loc := e.File
	if loc != "" && e.Line > 0 {
		loc = fmt.Sprintf("%s:%d", loc, e.Line)
	}
	msg := e.Message
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	if loc == "" {
		return msg
	}
	return loc + ": " + msg
}

func (e *LoadError) Unwrap() error {
	return e.Cause
}
