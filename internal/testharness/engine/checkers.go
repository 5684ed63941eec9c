package engine

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/regdb/regdb/pkg/literal"
)

// ToInt64 converts a handler output or YAML value to an integer. Strings
// are accepted in decimal, 0x hex and HDL literal form.
func ToInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int64:
		return n, true
	case uint8:
		return int64(n), true
	case uint16:
		return int64(n), true
	case uint32:
		return int64(n), true
	case uint64:
		return int64(n), true
	case float64:
		if n == float64(int64(n)) {
			return int64(n), true
		}
	case string:
		s := strings.TrimSpace(n)
		if i, err := strconv.ParseInt(s, 10, 64); err == nil {
			return i, true
		}
		if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") || strings.Contains(s, "'") {
			if u, ok := literal.ParseLiteral(strings.Replace(s, "0X", "0x", 1)); ok {
				return int64(u), true
			}
		}
	}
	return 0, false
}

// valuesEqual compares numerically when both sides are numbers and by
// formatted text otherwise.
func valuesEqual(expected, actual any) bool {
	if e, ok := ToInt64(expected); ok {
		if a, ok := ToInt64(actual); ok {
			return e == a
		}
	}
	return fmt.Sprintf("%v", expected) == fmt.Sprintf("%v", actual)
}

func pass(key string, expected, actual any, msg string) *ExpectResult {
	return &ExpectResult{Key: key, Expected: expected, Actual: actual, Passed: true, Message: msg}
}

func fail(key string, expected, actual any, msg string) *ExpectResult {
	return &ExpectResult{Key: key, Expected: expected, Actual: actual, Message: msg}
}

// defaultChecker compares the output named by key with expected.
func defaultChecker(key string, expected any, state *ExecutionState) *ExpectResult {
	actual, exists := state.Get(key)
	if !exists {
		return fail(key, expected, nil, fmt.Sprintf("key %q not found in outputs", key))
	}

	// "present" means the key exists with any value.
	if s, ok := expected.(string); ok && s == "present" {
		return pass(key, expected, actual, fmt.Sprintf("%s = %v", key, actual))
	}

	if list, ok := expected.([]any); ok {
		return checkList(key, list, actual)
	}

	if valuesEqual(expected, actual) {
		return pass(key, expected, actual, fmt.Sprintf("%s = %v", key, expected))
	}
	return fail(key, expected, actual, fmt.Sprintf("expected %v, got %v", expected, actual))
}

// checkList compares an expected YAML list with a string or any slice,
// element by element.
func checkList(key string, expected []any, actual any) *ExpectResult {
	got := toList(actual)
	if got == nil && actual != nil {
		return fail(key, expected, actual, fmt.Sprintf("expected a list, got %T", actual))
	}
	if len(got) != len(expected) {
		return fail(key, expected, actual, fmt.Sprintf("expected %d items, got %d", len(expected), len(got)))
	}
	for i := range expected {
		if !valuesEqual(expected[i], got[i]) {
			return fail(key, expected, actual, fmt.Sprintf("item[%d]: expected %v, got %v", i, expected[i], got[i]))
		}
	}
	return pass(key, expected, actual, "all items match")
}

func toList(v any) []any {
	switch l := v.(type) {
	case []any:
		return l
	case []string:
		out := make([]any, len(l))
		for i, s := range l {
			out[i] = s
		}
		return out
	}
	return nil
}

func value(key string, expected any, state *ExecutionState) (any, *ExpectResult) {
	actual, ok := state.Get(KeyValue)
	if !ok {
		return nil, fail(key, expected, nil, "no value in outputs")
	}
	return actual, nil
}

// CheckerValueEquals checks that the "value" output equals expected.
func CheckerValueEquals(key string, expected any, state *ExecutionState) *ExpectResult {
	actual, res := value(key, expected, state)
	if res != nil {
		return res
	}
	if valuesEqual(expected, actual) {
		return pass(key, expected, actual, fmt.Sprintf("value = %v", actual))
	}
	return fail(key, expected, actual, fmt.Sprintf("expected value %v, got %v", expected, actual))
}

// CheckerValueNot checks that the "value" output differs from expected.
func CheckerValueNot(key string, expected any, state *ExecutionState) *ExpectResult {
	actual, res := value(key, expected, state)
	if res != nil {
		return res
	}
	if !valuesEqual(expected, actual) {
		return pass(key, expected, actual, fmt.Sprintf("value %v != %v", actual, expected))
	}
	return fail(key, expected, actual, fmt.Sprintf("value must not be %v", expected))
}

func compareValue(key string, expected any, state *ExecutionState, op string, ok func(a, e int64) bool) *ExpectResult {
	actual, res := value(key, expected, state)
	if res != nil {
		return res
	}
	a, aok := ToInt64(actual)
	e, eok := ToInt64(expected)
	if !aok || !eok {
		return fail(key, expected, actual, "value or expectation is not numeric")
	}
	if ok(a, e) {
		return pass(key, expected, actual, fmt.Sprintf("value %d %s %d", a, op, e))
	}
	return fail(key, expected, actual, fmt.Sprintf("expected value %s %d, got %d", op, e, a))
}

// CheckerValueGT checks that the "value" output is greater than expected.
func CheckerValueGT(key string, expected any, state *ExecutionState) *ExpectResult {
	return compareValue(key, expected, state, ">", func(a, e int64) bool { return a > e })
}

// CheckerValueLTE checks that the "value" output is at most expected.
func CheckerValueLTE(key string, expected any, state *ExecutionState) *ExpectResult {
	return compareValue(key, expected, state, "<=", func(a, e int64) bool { return a <= e })
}

// CheckerValueIn checks that the "value" output is one of the listed values.
func CheckerValueIn(key string, expected any, state *ExecutionState) *ExpectResult {
	actual, res := value(key, expected, state)
	if res != nil {
		return res
	}
	list, ok := expected.([]any)
	if !ok {
		return fail(key, expected, actual, "value_in expects a list")
	}
	for _, e := range list {
		if valuesEqual(e, actual) {
			return pass(key, expected, actual, fmt.Sprintf("value %v in %v", actual, list))
		}
	}
	return fail(key, expected, actual, fmt.Sprintf("value %v not in %v", actual, list))
}

// CheckerContains checks list outputs for members. expected maps an output
// key to one item or a list of items that must all be present.
func CheckerContains(key string, expected any, state *ExecutionState) *ExpectResult {
	want, ok := expected.(map[string]any)
	if !ok {
		return fail(key, expected, nil, "contains expects a map of output key to items")
	}
	for outKey, items := range want {
		actual, ok := state.Get(outKey)
		if !ok {
			return fail(key, expected, nil, fmt.Sprintf("key %q not found in outputs", outKey))
		}
		got := toList(actual)
		needed := toList(items)
		if needed == nil {
			needed = []any{items}
		}
		for _, n := range needed {
			found := false
			for _, g := range got {
				if valuesEqual(n, g) {
					found = true
					break
				}
			}
			if !found {
				return fail(key, expected, actual, fmt.Sprintf("%s does not contain %v", outKey, n))
			}
		}
	}
	return pass(key, expected, nil, "all items present")
}

// CheckerSaveAs saves the "value" output under the given name for later
// steps. It always passes when there is a value.
func CheckerSaveAs(key string, expected any, state *ExecutionState) *ExpectResult {
	name, ok := expected.(string)
	if !ok || name == "" {
		return fail(key, expected, nil, "save_as expects a name")
	}
	actual, res := value(key, expected, state)
	if res != nil {
		return res
	}
	state.Set(name, actual)
	return pass(key, expected, actual, fmt.Sprintf("saved %v as %s", actual, name))
}

// CheckerValueEqualsSaved compares the "value" output with a value saved by
// save_as.
func CheckerValueEqualsSaved(key string, expected any, state *ExecutionState) *ExpectResult {
	name, _ := expected.(string)
	saved, ok := state.Get(name)
	if !ok {
		return fail(key, expected, nil, fmt.Sprintf("no saved value %q", name))
	}
	return CheckerValueEquals(key, saved, state)
}

// CheckerErrorContains checks that the "error_message" output contains the
// expected text.
func CheckerErrorContains(key string, expected any, state *ExecutionState) *ExpectResult {
	msg, _ := state.Get("error_message")
	s := fmt.Sprintf("%v", msg)
	want := fmt.Sprintf("%v", expected)
	if msg != nil && strings.Contains(s, want) {
		return pass(key, expected, msg, fmt.Sprintf("error mentions %q", want))
	}
	return fail(key, expected, msg, fmt.Sprintf("error %q does not mention %q", s, want))
}
