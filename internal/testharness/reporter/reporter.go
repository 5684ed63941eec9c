// Package reporter provides scenario result formatting and output.
package reporter

import (
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"maps"
	"slices"
	"time"

	"github.com/regdb/regdb/internal/testharness/engine"
)

// Reporter formats and outputs scenario results.
type Reporter interface {
	// ReportSuite reports results for a suite.
	ReportSuite(result *engine.SuiteResult)

	// ReportTest reports results for a single scenario.
	ReportTest(result *engine.TestResult)
}

// New returns the reporter for format: "text", "json" or "junit".
func New(format string, w io.Writer, verbose bool) (Reporter, error) {
	switch format {
	case "", "text":
		return NewTextReporter(w, verbose), nil
	case "json":
		return NewJSONReporter(w, verbose), nil
	case "junit":
		return NewJUnitReporter(w), nil
	default:
		return nil, fmt.Errorf("unknown report format %q", format)
	}
}

func status(r *engine.TestResult) string {
	switch {
	case r.Skipped:
		return "skipped"
	case r.Passed:
		return "passed"
	default:
		return "failed"
	}
}

func passRate(r *engine.SuiteResult) float64 {
	total := r.PassCount + r.FailCount
	if total == 0 {
		return 0
	}
	return float64(r.PassCount) / float64(total) * 100
}

// TextReporter outputs human-readable text reports.
type TextReporter struct {
	writer  io.Writer
	verbose bool
}

// NewTextReporter creates a new text reporter.
func NewTextReporter(w io.Writer, verbose bool) *TextReporter {
	return &TextReporter{
		writer:  w,
		verbose: verbose,
	}
}

// ReportSuite reports suite results in text format.
func (r *TextReporter) ReportSuite(result *engine.SuiteResult) {
	fmt.Fprintf(r.writer, "\n=== Suite: %s ===\n", result.SuiteName)
	fmt.Fprintf(r.writer, "Duration: %s\n\n", result.Duration.Round(time.Millisecond))

	for _, tr := range result.Results {
		r.ReportTest(tr)
	}

	fmt.Fprintf(r.writer, "\n--- Summary ---\n")
	fmt.Fprintf(r.writer, "Total:   %d\n", len(result.Results))
	fmt.Fprintf(r.writer, "Passed:  %d\n", result.PassCount)
	fmt.Fprintf(r.writer, "Failed:  %d\n", result.FailCount)
	fmt.Fprintf(r.writer, "Skipped: %d\n", result.SkipCount)
	if result.PassCount+result.FailCount > 0 {
		fmt.Fprintf(r.writer, "Pass Rate: %.1f%%\n", passRate(result))
	}
}

// ReportTest reports a single scenario result in text format.
func (r *TextReporter) ReportTest(result *engine.TestResult) {
	tc := result.TestCase
	labels := map[string]string{"skipped": "SKIP", "passed": "PASS", "failed": "FAIL"}

	fmt.Fprintf(r.writer, "[%s] %s - %s (%s)\n",
		labels[status(result)], tc.ID, tc.Name, result.Duration.Round(time.Millisecond))

	if result.Skipped && result.SkipReason != "" {
		fmt.Fprintf(r.writer, "       Skip reason: %s\n", result.SkipReason)
	}
	if !result.Passed && result.Error != nil {
		fmt.Fprintf(r.writer, "       Error: %v\n", result.Error)
	}

	if !r.verbose {
		return
	}
	for _, sr := range result.StepResults {
		stepStatus := "PASS"
		if !sr.Passed {
			stepStatus = "FAIL"
		}
		fmt.Fprintf(r.writer, "    [%s] Step %d: %s (%s)\n",
			stepStatus, sr.StepIndex+1, sr.Step.Action, sr.Duration.Round(time.Millisecond))

		for _, key := range slices.Sorted(maps.Keys(sr.ExpectResults)) {
			er := sr.ExpectResults[key]
			expStatus := "OK"
			if !er.Passed {
				expStatus = "FAILED"
			}
			fmt.Fprintf(r.writer, "           [%s] %s: %s\n", expStatus, key, er.Message)
		}
	}
	if len(result.Diagnostics) > 0 {
		fmt.Fprintf(r.writer, "    Diagnostics:")
		for _, code := range slices.Sorted(maps.Keys(result.Diagnostics)) {
			fmt.Fprintf(r.writer, " %s=%d", code, result.Diagnostics[code])
		}
		fmt.Fprintln(r.writer)
	}
}

// JSONReporter outputs JSON-formatted reports.
type JSONReporter struct {
	writer io.Writer
	pretty bool
}

// NewJSONReporter creates a new JSON reporter.
func NewJSONReporter(w io.Writer, pretty bool) *JSONReporter {
	return &JSONReporter{
		writer: w,
		pretty: pretty,
	}
}

// JSONSuiteResult is the JSON representation of suite results.
type JSONSuiteResult struct {
	SuiteName string           `json:"suite_name"`
	Duration  string           `json:"duration"`
	Total     int              `json:"total"`
	Passed    int              `json:"passed"`
	Failed    int              `json:"failed"`
	Skipped   int              `json:"skipped"`
	PassRate  float64          `json:"pass_rate"`
	Tests     []JSONTestResult `json:"tests"`
}

// JSONTestResult is the JSON representation of a scenario result.
type JSONTestResult struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	Status      string           `json:"status"`
	Duration    string           `json:"duration"`
	Error       string           `json:"error,omitempty"`
	SkipReason  string           `json:"skip_reason,omitempty"`
	Diagnostics map[string]int   `json:"diagnostics,omitempty"`
	Steps       []JSONStepResult `json:"steps,omitempty"`
}

// JSONStepResult is the JSON representation of a step result.
type JSONStepResult struct {
	Index    int                   `json:"index"`
	Action   string                `json:"action"`
	Status   string                `json:"status"`
	Duration string                `json:"duration"`
	Error    string                `json:"error,omitempty"`
	Expects  map[string]JSONExpect `json:"expects,omitempty"`
	Outputs  map[string]any        `json:"outputs,omitempty"`
}

// JSONExpect is the JSON representation of an expectation result.
type JSONExpect struct {
	Passed   bool   `json:"passed"`
	Expected any    `json:"expected"`
	Actual   any    `json:"actual"`
	Message  string `json:"message"`
}

// ReportSuite reports suite results in JSON format.
func (r *JSONReporter) ReportSuite(result *engine.SuiteResult) {
	jr := JSONSuiteResult{
		SuiteName: result.SuiteName,
		Duration:  result.Duration.Round(time.Millisecond).String(),
		Total:     len(result.Results),
		Passed:    result.PassCount,
		Failed:    result.FailCount,
		Skipped:   result.SkipCount,
		PassRate:  passRate(result),
		Tests:     make([]JSONTestResult, 0, len(result.Results)),
	}
	for _, tr := range result.Results {
		jr.Tests = append(jr.Tests, testToJSON(tr))
	}
	r.writeJSON(jr)
}

// ReportTest reports a single scenario result in JSON format.
func (r *JSONReporter) ReportTest(result *engine.TestResult) {
	r.writeJSON(testToJSON(result))
}

func testToJSON(result *engine.TestResult) JSONTestResult {
	jr := JSONTestResult{
		ID:          result.TestCase.ID,
		Name:        result.TestCase.Name,
		Status:      status(result),
		Duration:    result.Duration.Round(time.Millisecond).String(),
		SkipReason:  result.SkipReason,
		Diagnostics: result.Diagnostics,
	}
	if result.Error != nil {
		jr.Error = result.Error.Error()
	}

	for _, sr := range result.StepResults {
		jsr := JSONStepResult{
			Index:    sr.StepIndex,
			Action:   sr.Step.Action,
			Status:   "passed",
			Duration: sr.Duration.Round(time.Millisecond).String(),
			Outputs:  sr.Output,
		}
		if !sr.Passed {
			jsr.Status = "failed"
		}
		if sr.Error != nil {
			jsr.Error = sr.Error.Error()
		}
		if len(sr.ExpectResults) > 0 {
			jsr.Expects = make(map[string]JSONExpect, len(sr.ExpectResults))
			for key, er := range sr.ExpectResults {
				jsr.Expects[key] = JSONExpect{
					Passed:   er.Passed,
					Expected: er.Expected,
					Actual:   er.Actual,
					Message:  er.Message,
				}
			}
		}
		jr.Steps = append(jr.Steps, jsr)
	}
	return jr
}

func (r *JSONReporter) writeJSON(v any) {
	enc := json.NewEncoder(r.writer)
	if r.pretty {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(v); err != nil {
		fmt.Fprintf(r.writer, `{"error": "failed to marshal: %s"}`+"\n", err)
	}
}

// JUnitReporter outputs JUnit XML format for CI integration.
type JUnitReporter struct {
	writer io.Writer
}

// NewJUnitReporter creates a new JUnit reporter.
func NewJUnitReporter(w io.Writer) *JUnitReporter {
	return &JUnitReporter{writer: w}
}

type junitSuite struct {
	XMLName  xml.Name    `xml:"testsuite"`
	Name     string      `xml:"name,attr"`
	Tests    int         `xml:"tests,attr"`
	Failures int         `xml:"failures,attr"`
	Skipped  int         `xml:"skipped,attr"`
	Time     string      `xml:"time,attr"`
	Cases    []junitCase `xml:"testcase"`
}

type junitCase struct {
	Name      string        `xml:"name,attr"`
	ClassName string        `xml:"classname,attr"`
	Time      string        `xml:"time,attr"`
	Skipped   *junitMessage `xml:"skipped"`
	Failure   *junitFailure `xml:"failure"`
}

type junitMessage struct {
	Message string `xml:"message,attr"`
}

type junitFailure struct {
	Message string `xml:"message,attr"`
	Detail  string `xml:",cdata"`
}

func seconds(d time.Duration) string {
	return fmt.Sprintf("%.3f", d.Seconds())
}

// ReportSuite reports suite results in JUnit XML format.
func (r *JUnitReporter) ReportSuite(result *engine.SuiteResult) {
	suite := junitSuite{
		Name:     result.SuiteName,
		Tests:    len(result.Results),
		Failures: result.FailCount,
		Skipped:  result.SkipCount,
		Time:     seconds(result.Duration),
	}

	for _, tr := range result.Results {
		c := junitCase{
			Name:      tr.TestCase.Name,
			ClassName: tr.TestCase.ID,
			Time:      seconds(tr.Duration),
		}
		switch {
		case tr.Skipped:
			c.Skipped = &junitMessage{Message: tr.SkipReason}
		case !tr.Passed && tr.Error != nil:
			f := &junitFailure{Message: tr.Error.Error()}
			for _, sr := range tr.StepResults {
				if !sr.Passed {
					f.Detail += fmt.Sprintf("Step %d (%s): %v\n", sr.StepIndex+1, sr.Step.Action, sr.Error)
				}
			}
			c.Failure = f
		}
		suite.Cases = append(suite.Cases, c)
	}

	data, err := xml.MarshalIndent(suite, "", "  ")
	if err != nil {
		fmt.Fprintf(r.writer, "<!-- failed to marshal: %s -->\n", err)
		return
	}
	fmt.Fprint(r.writer, xml.Header)
	fmt.Fprintln(r.writer, string(data))
}

// ReportTest reports a single scenario in JUnit format, wrapped in a
// one-case suite.
func (r *JUnitReporter) ReportTest(result *engine.TestResult) {
	suite := &engine.SuiteResult{
		SuiteName: "Single Test",
		Results:   []*engine.TestResult{result},
		Duration:  result.Duration,
	}
	switch {
	case result.Skipped:
		suite.SkipCount = 1
	case result.Passed:
		suite.PassCount = 1
	default:
		suite.FailCount = 1
	}
	r.ReportSuite(suite)
}
