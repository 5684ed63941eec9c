// Package codegen renders built registers as Go constants.
//
// For every register the generated file holds its offset, absolute address,
// reset value and size, and for every field its shift, width, mask and reset.
// Enumerated field values become a named type with a String method.
package codegen

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"golang.org/x/tools/imports"

	"github.com/regdb/regdb/pkg/model"
)

// ErrNoRegisters is returned when there is nothing to generate.
var ErrNoRegisters = errors.New("no registers to generate")

// Options controls generation.
type Options struct {
	// Package is the package clause of the generated file.
	Package string

	// Source names the description the file was generated from.
	Source string
}

// GenerateBlock renders every register of b. Register constants are
// prefixed with the block name.
func GenerateBlock(b *model.Block, opts Options) (string, error) {
	data := fileData{
		Package: opts.Package,
		Source:  opts.Source,
		Block:   b.Name,
		Base:    b.BaseAddress,
	}
	for _, r := range b.Registers() {
		data.Registers = append(data.Registers, registerFor(r, goName(b.Name)+goName(r.Name()), b.Address(r)))
	}
	return render(data)
}

// GenerateRegisters renders standalone registers. Addresses equal offsets.
func GenerateRegisters(regs []*model.Register, opts Options) (string, error) {
	data := fileData{Package: opts.Package, Source: opts.Source}
	for _, r := range regs {
		data.Registers = append(data.Registers, registerFor(r, goName(r.Name()), r.Offset()))
	}
	return render(data)
}

func render(data fileData) (string, error) {
	if len(data.Registers) == 0 {
		return "", ErrNoRegisters
	}
	if data.Package == "" {
		data.Package = "regs"
	}
	if data.Source == "" {
		data.Source = "a register description"
	}

	var b strings.Builder
	if err := templates.ExecuteTemplate(&b, "file", data); err != nil {
		return "", fmt.Errorf("template: %w", err)
	}
	return b.String(), nil
}

func registerFor(r *model.Register, prefix string, address uint32) registerData {
	cfg := r.Config()
	rd := registerData{
		Prefix:      prefix,
		Name:        r.Name(),
		Description: cfg.Description,
		Offset:      cfg.Offset,
		Address:     address,
		Size:        cfg.Size,
		Access:      cfg.Access.String(),
		Reset:       r.ResetValue(),
	}
	for _, f := range r.Fields() {
		fd := fieldData{
			Prefix: prefix + goName(f.Name),
			Name:   f.Name,
			LSB:    f.LSB,
			Width:  f.Width,
			Mask:   f.Mask(),
			Access: f.Access.String(),
			Reset:  f.Reset,
		}
		// The first name of a value wins; a switch cannot repeat a case.
		seen := map[uint32]bool{}
		consts := map[string]bool{}
		for _, e := range f.Enums {
			c := fd.Prefix + goName(strings.ToLower(e.Name))
			if seen[e.Value] || consts[c] {
				continue
			}
			seen[e.Value], consts[c] = true, true
			fd.Enums = append(fd.Enums, enumData{Const: c, Name: e.Name, Value: e.Value})
		}
		rd.Fields = append(rd.Fields, fd)
	}
	return rd
}

// Format runs goimports over generated code. path is used for import
// resolution only.
func Format(path, code string) ([]byte, error) {
	formatted, err := imports.Process(path, []byte(code), nil)
	if err != nil {
		return nil, fmt.Errorf("goimports %s: %w", filepath.Base(path), err)
	}
	return formatted, nil
}

// WriteFormatted formats code with goimports and writes it to path.
func WriteFormatted(path, code string) error {
	formatted, err := Format(path, code)
	if err != nil {
		// Write unformatted so you can debug the generator output
		_ = os.WriteFile(path+".broken", []byte(code), 0o644)
		return err
	}
	return os.WriteFile(path, formatted, 0o644)
}

// goName converts "status_register" or "rx-fifo" to "StatusRegister" and
// "RxFifo". Names starting with a digit get an X prefix.
func goName(s string) string {
	var b strings.Builder
	upper := true
	for _, r := range s {
		switch {
		case r == '_' || r == '-' || r == '.' || r == ' ' || r == '[' || r == ']':
			upper = true
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			if b.Len() == 0 && unicode.IsDigit(r) {
				b.WriteByte('X')
			}
			if upper {
				r = unicode.ToUpper(r)
				upper = false
			}
			b.WriteRune(r)
		}
	}
	return b.String()
}
