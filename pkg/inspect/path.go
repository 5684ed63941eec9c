// Package inspect provides register inspection and value manipulation
// utilities for interactive tools.
//
// The inspect package offers a unified interface for:
//   - Parsing path expressions (e.g., "ctrl/status_register.ready")
//   - Resolving enumerated names and literals to field values
//   - Reading and predicting register and field values
//   - Formatting output for display
package inspect

import (
	"errors"
	"fmt"
	"strings"
)

// Path errors.
var (
	ErrEmptyPath   = errors.New("empty path")
	ErrInvalidPath = errors.New("invalid path format")
)

// Path represents a parsed inspection path.
// Format: [block/]register[.field] or block/
type Path struct {
	// Block is the address block name (empty when not given).
	Block string

	// Register is the register name (empty for a block-only path).
	Register string

	// Field is the field name within the register.
	Field string

	// IsPartial indicates the path doesn't name a field
	// (used for inspect operations that show a whole register or block).
	IsPartial bool

	// Raw stores the original input string.
	Raw string
}

// ParsePath parses a path string into a Path struct.
//
// Supported formats:
//   - "register" - whole register
//   - "register.field" - single field
//   - "block/register" - register qualified by block
//   - "block/register.field" - field qualified by block
//   - "block/" - partial (for listing the block)
func ParsePath(input string) (*Path, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, ErrEmptyPath
	}
	if strings.HasPrefix(input, "/") || strings.Count(input, "/") > 1 {
		return nil, ErrInvalidPath
	}

	p := &Path{Raw: input}
	rest := input
	if block, r, ok := strings.Cut(input, "/"); ok {
		if !validName(block) {
			return nil, fmt.Errorf("%w: block %q", ErrInvalidPath, block)
		}
		p.Block = block
		rest = r
		if rest == "" {
			p.IsPartial = true
			return p, nil
		}
	}

	parts := strings.Split(rest, ".")
	if len(parts) > 2 {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPath, rest)
	}
	for _, part := range parts {
		if !validName(part) {
			return nil, fmt.Errorf("%w: name %q", ErrInvalidPath, part)
		}
	}

	p.Register = parts[0]
	if len(parts) == 2 {
		p.Field = parts[1]
	} else {
		p.IsPartial = true
	}
	return p, nil
}

// String returns the path as a string.
func (p *Path) String() string {
	var sb strings.Builder

	if p.Block != "" {
		sb.WriteString(p.Block)
		sb.WriteString("/")
	}
	sb.WriteString(p.Register)
	if p.Field != "" {
		sb.WriteString(".")
		sb.WriteString(p.Field)
	}
	return sb.String()
}

// validName reports whether s can be a block, register or field name.
func validName(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		switch {
		case r == '_' || r == '-' || r == '[' || r == ']':
		case r >= '0' && r <= '9':
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		default:
			return false
		}
	}
	return true
}
