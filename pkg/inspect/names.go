package inspect

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/regdb/regdb/pkg/literal"
	"github.com/regdb/regdb/pkg/model"
)

// ErrInvalidValue is returned when a value is neither a number nor an
// enumerated name.
var ErrInvalidValue = errors.New("invalid value")

// ParseValue parses a decimal number, a 0x hex number or an HDL literal
// such as 8'hA.
func ParseValue(s string) (uint32, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidValue
	}
	if v, err := strconv.ParseUint(s, 10, 32); err == nil {
		return uint32(v), nil
	}
	if v, ok := literal.ParseLiteral(s); ok {
		return v, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidValue, s)
}

// ResolveFieldValue resolves an enumerated name of f (case-insensitive) or
// parses s as a number. The result must fit the field width.
func ResolveFieldValue(f model.Field, s string) (uint32, error) {
	v, ok := resolveEnumName(f, s)
	if !ok {
		var err error
		if v, err = ParseValue(s); err != nil {
			return 0, err
		}
	}
	if f.Width < 32 && v>>uint(f.Width) != 0 {
		return 0, fmt.Errorf("%w: %d does not fit %s", ErrInvalidValue, v, f)
	}
	return v, nil
}

// GetEnumName returns the enumerated name for v, or "" when there is none.
func GetEnumName(f model.Field, v uint32) string {
	name, _ := f.EnumName(v)
	return name
}

func resolveEnumName(f model.Field, name string) (uint32, bool) {
	if v, ok := f.EnumValue(name); ok {
		return v, true
	}
	lname := strings.ToLower(name)
	for _, e := range f.Enums {
		if strings.ToLower(e.Name) == lname {
			return e.Value, true
		}
	}
	return 0, false
}
