package engine

import (
	"fmt"
	"regexp"
)

// variablePattern matches {{ variable }} templates.
var variablePattern = regexp.MustCompile(`\{\{\s*([a-zA-Z_][a-zA-Z0-9_]*)\s*\}\}`)

// Interpolate replaces {{ variable }} placeholders in a string with values
// from state. Undefined variables are left unchanged.
func Interpolate(template string, state *ExecutionState) string {
	if state == nil {
		return template
	}
	return variablePattern.ReplaceAllStringFunc(template, func(match string) string {
		name := variablePattern.FindStringSubmatch(match)[1]
		value, ok := state.Outputs[name]
		if !ok {
			return match
		}
		return valueToString(value)
	})
}

// InterpolateParams interpolates all string values in params. A string that
// is exactly one "{{ var }}" reference keeps the referenced value's type.
// The input map is not modified.
func InterpolateParams(params map[string]any, state *ExecutionState) map[string]any {
	if params == nil {
		return nil
	}
	out := make(map[string]any, len(params))
	for k, v := range params {
		out[k] = interpolateValue(v, state)
	}
	return out
}

func interpolateValue(value any, state *ExecutionState) any {
	switch v := value.(type) {
	case string:
		if state != nil {
			if m := variablePattern.FindStringSubmatch(v); m != nil && m[0] == v {
				if ref, ok := state.Outputs[m[1]]; ok {
					return ref
				}
			}
		}
		return Interpolate(v, state)
	case map[string]any:
		return InterpolateParams(v, state)
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = interpolateValue(item, state)
		}
		return out
	default:
		return value
	}
}

func valueToString(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case uint32:
		return fmt.Sprintf("0x%x", x)
	default:
		return fmt.Sprintf("%v", x)
	}
}
