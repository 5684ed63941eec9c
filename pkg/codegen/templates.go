package codegen

import (
	"fmt"
	"strings"
	"text/template"
)

// funcMap provides helper functions available to all templates.
var funcMap = template.FuncMap{
	"goName": goName,
	"hex":    func(v uint32) string { return fmt.Sprintf("0x%X", v) },
	"hex8":   func(v uint32) string { return fmt.Sprintf("0x%08X", v) },
	"quote":  func(s string) string { return fmt.Sprintf("%q", s) },
	"comment": func(s string) string {
		return strings.Join(strings.Fields(s), " ")
	},
}

// templates holds all parsed code generation templates.
var templates = template.Must(template.New("").Funcs(funcMap).Parse(
	fileTmpl +
		registerTmpl +
		enumTmpl,
))

// --- Template data types ---

type fileData struct {
	Package   string
	Source    string
	Block     string
	Base      uint32
	Registers []registerData
}

type registerData struct {
	Prefix      string
	Name        string
	Description string
	Offset      uint32
	Address     uint32
	Size        int
	Access      string
	Reset       uint32
	Fields      []fieldData
}

type fieldData struct {
	Prefix string
	Name   string
	LSB    int
	Width  int
	Mask   uint32
	Access string
	Reset  uint32
	Enums  []enumData
}

type enumData struct {
	Const string
	Name  string
	Value uint32
}

// --- Template definitions ---

const fileTmpl = `{{define "file"}}// Code generated by regdb-gen from {{.Source}}. DO NOT EDIT.

package {{.Package}}
{{if .Block}}
// {{goName .Block}}Base is the base address of block {{.Block}}.
const {{goName .Block}}Base uint32 = {{hex8 .Base}}
{{end}}
{{- range .Registers}}
{{template "register" .}}
{{- end}}
{{- range .Registers}}{{range .Fields}}{{if .Enums}}
{{template "enum" .}}
{{- end}}{{end}}{{end}}
{{end}}`

const registerTmpl = `{{define "register"}}
// {{.Prefix}} is register {{.Name}} ({{.Size}} bits, {{.Access}}).
{{- if .Description}}
// {{comment .Description}}
{{- end}}
const (
	{{.Prefix}}Offset  uint32 = {{hex .Offset}}
	{{.Prefix}}Address uint32 = {{hex8 .Address}}
	{{.Prefix}}Reset   uint32 = {{hex .Reset}}
	{{.Prefix}}Size           = {{.Size}}
)
{{- if .Fields}}

// {{.Prefix}} fields.
const (
{{- range .Fields}}
	{{.Prefix}}Shift = {{.LSB}}
	{{.Prefix}}Width = {{.Width}}
	{{.Prefix}}Mask  uint32 = {{hex .Mask}}
	{{.Prefix}}Reset uint32 = {{hex .Reset}}
{{- end}}
)
{{- end}}
{{end}}`

const enumTmpl = `{{define "enum"}}
// {{.Prefix}}Value enumerates the values of field {{.Name}}.
type {{.Prefix}}Value uint32

const (
{{- $p := .Prefix}}
{{- range .Enums}}
	{{.Const}} {{$p}}Value = {{hex .Value}}
{{- end}}
)

// String returns the enumerated name.
func (v {{.Prefix}}Value) String() string {
	switch v {
{{- range .Enums}}
	case {{.Const}}:
		return {{quote .Name}}
{{- end}}
	default:
		return fmt.Sprintf("{{.Prefix}}Value(%d)", uint32(v))
	}
}
{{end}}`
