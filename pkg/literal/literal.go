// Package literal parses sized hardware literals such as 8'hFF.
//
// Accepted forms, tried in order:
//
//	<width>'h<hex>   sized literal; the width is recorded but not applied
//	'h<hex>, h<hex>  unsized hex literal
//	0x<hex>          C style hex
//	<hex>            bare digits, read as hexadecimal
//
// The radix letter may be upper or lower case and '_' separators are
// ignored. Leading and trailing whitespace is not trimmed.
package literal

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrMalformed is wrapped by every ParseError.
var ErrMalformed = errors.New("malformed literal")

// ParseError describes a literal that could not be parsed.
type ParseError struct {
	Text   string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("literal %q: %s", e.Text, e.Reason)
}

func (e *ParseError) Unwrap() error {
	return ErrMalformed
}

// Literal is a parsed literal. Width is 0 when the text carried no size.
type Literal struct {
	Width int
	Value uint32
}

// Parse parses text into a Literal. On failure the returned Literal is zero.
func Parse(text string) (Literal, error) {
	var lit Literal
	digits := text

	if i := strings.IndexByte(text, '\''); i >= 0 {
		if i > 0 {
			w, err := strconv.Atoi(text[:i])
			if err != nil || w <= 0 {
				return Literal{}, &ParseError{Text: text, Reason: "invalid width"}
			}
			lit.Width = w
		}
		rest := text[i+1:]
		if rest == "" || (rest[0] != 'h' && rest[0] != 'H') {
			return Literal{}, &ParseError{Text: text, Reason: "unsupported radix"}
		}
		digits = rest[1:]
	} else if len(text) > 2 && text[0] == '0' && (text[1] == 'x' || text[1] == 'X') {
		digits = text[2:]
	} else if len(text) > 0 && (text[0] == 'h' || text[0] == 'H') {
		digits = text[1:]
	}

	digits = strings.ReplaceAll(digits, "_", "")
	if digits == "" {
		return Literal{}, &ParseError{Text: text, Reason: "no digits"}
	}
	v, err := strconv.ParseUint(digits, 16, 32)
	if err != nil {
		var numErr *strconv.NumError
		if errors.As(err, &numErr) && errors.Is(numErr.Err, strconv.ErrRange) {
			return Literal{}, &ParseError{Text: text, Reason: "value exceeds 32 bits"}
		}
		return Literal{}, &ParseError{Text: text, Reason: "invalid hex digits"}
	}
	lit.Value = uint32(v)
	return lit, nil
}

// ParseLiteral returns the value of text, or (0, false) when it is malformed.
func ParseLiteral(text string) (uint32, bool) {
	lit, err := Parse(text)
	if err != nil {
		return 0, false
	}
	return lit.Value, true
}

// Format renders v as a sized literal, e.g. Format(8, 0xA) is "8'hA".
// A width of 0 yields an unsized 'h literal.
func Format(width int, v uint32) string {
	if width <= 0 {
		return fmt.Sprintf("'h%X", v)
	}
	return fmt.Sprintf("%d'h%X", width, v)
}
