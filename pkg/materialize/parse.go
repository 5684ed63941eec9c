package materialize

import (
	"strconv"

	"github.com/regdb/regdb/pkg/literal"
	"github.com/regdb/regdb/pkg/log"
	"github.com/regdb/regdb/pkg/store"
)

// parser converts raw cells for one register and reports malformed values
// as parse errors.
type parser struct {
	m        *Materializer
	register string
}

// sized parses a sized literal. NULL yields def; a malformed literal is
// reported and yields 0.
func (p *parser) sized(field, column string, c store.Cell, def uint32) uint32 {
	if !c.Valid {
		return def
	}
	v, err := literal.Parse(c.Text)
	if err != nil {
		p.report(field, column, c.Text, err.Error())
		return 0
	}
	return v.Value
}

// integer parses a decimal column. NULL yields def; a malformed value is
// reported and yields def.
func (p *parser) integer(field, column string, c store.Cell, def int) int {
	if !c.Valid {
		return def
	}
	n, err := strconv.Atoi(c.Text)
	if err != nil {
		p.report(field, column, c.Text, "invalid integer")
		return def
	}
	return n
}

// size parses the register size, falling back to DefaultSize for NULL,
// malformed or non-positive values.
func (p *parser) size(c store.Cell) int {
	n := p.integer("", "size", c, DefaultSize)
	if n <= 0 {
		p.report("", "size", c.Text, "size must be positive")
		return DefaultSize
	}
	return n
}

func (p *parser) report(field, column, text, msg string) {
	p.m.emit(log.SeverityWarning, log.CodeParseError, p.register, field, msg, map[string]string{
		"column": column,
		"text":   text,
	})
}
