package inspect

import (
	"fmt"
	"strings"

	"github.com/regdb/regdb/pkg/model"
)

// Formatter formats inspection output.
type Formatter struct {
	// ShowMetadata includes access, reset and state information
	ShowMetadata bool

	// ShowConflicts lists layout conflicts under each register
	ShowConflicts bool

	// IndentWidth is the number of spaces per indent level
	IndentWidth int
}

// NewFormatter creates a new Formatter with default settings.
func NewFormatter() *Formatter {
	return &Formatter{
		ShowMetadata:  true,
		ShowConflicts: true,
		IndentWidth:   2,
	}
}

// Indent returns the content with indentation.
func (f *Formatter) Indent(depth int, content string) string {
	width := f.IndentWidth
	if width == 0 {
		width = 2
	}
	indent := strings.Repeat(" ", depth*width)
	return indent + content
}

// FormatValue formats a value as zero-padded hex sized to bits.
func FormatValue(v uint32, bits int) string {
	if bits <= 0 || bits > 32 {
		bits = 32
	}
	digits := (bits + 3) / 4
	return fmt.Sprintf("0x%0*x", digits, v)
}

// FormatFieldValue formats a field value with its enumerated name.
func FormatFieldValue(fi FieldInfo) string {
	s := FormatValue(fi.Value, fi.Field.Width)
	if fi.Enum != "" {
		s += " (" + fi.Enum + ")"
	}
	return s
}

// FormatAccess formats an access level for display. The raw token is shown
// when it differs from the collapsed access.
func FormatAccess(access model.Access, raw string) string {
	s := access.String()
	if raw != "" && raw != s {
		return fmt.Sprintf("%s (%s)", s, raw)
	}
	return s
}

// FormatRegister formats a register with its field table.
func (f *Formatter) FormatRegister(info *RegisterInfo) string {
	var sb strings.Builder
	f.formatRegister(&sb, info, 0)
	return sb.String()
}

func (f *Formatter) formatRegister(sb *strings.Builder, info *RegisterInfo, depth int) {
	header := fmt.Sprintf("%s @ %s = %s", info.Name, FormatValue(info.Address, 32), FormatValue(info.Value, info.Size))
	sb.WriteString(f.Indent(depth, header))
	if f.ShowMetadata {
		sb.WriteString(fmt.Sprintf(" [%d bits, %s, reset %s, %s]",
			info.Size, FormatAccess(info.Access, info.RawAccess), FormatValue(info.Reset, info.Size), info.State))
	}
	sb.WriteString("\n")
	sb.WriteString(f.FormatFieldTable(info.Fields, depth+1))

	if f.ShowConflicts {
		for _, c := range info.Conflicts {
			sb.WriteString(f.Indent(depth+1, "! "+c.String()))
			sb.WriteString("\n")
		}
	}
}

// FormatBlock formats a block and all its registers.
func (f *Formatter) FormatBlock(info *BlockInfo) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s @ %s, range %s\n", info.Name, FormatValue(info.BaseAddress, 32), FormatValue(info.Range, 32)))
	if len(info.Registers) == 0 {
		sb.WriteString(f.Indent(1, "(no registers)\n"))
	}
	for i := range info.Registers {
		f.formatRegister(&sb, &info.Registers[i], 1)
	}
	return sb.String()
}

// FormatFieldTable formats a list of fields as a table, most significant
// field first.
func (f *Formatter) FormatFieldTable(fields []FieldInfo, depth int) string {
	if len(fields) == 0 {
		return f.Indent(depth, "(no fields)\n")
	}

	width := 0
	for _, fi := range fields {
		width = max(width, len(fi.Field.String()))
	}

	var sb strings.Builder
	for i := len(fields) - 1; i >= 0; i-- {
		fi := fields[i]
		line := fmt.Sprintf("%-*s = %s", width, fi.Field.String(), FormatFieldValue(fi))
		if f.ShowMetadata {
			line += " [" + FormatAccess(fi.Field.Access, fi.Field.RawAccess) + "]"
		}
		sb.WriteString(f.Indent(depth, line))
		sb.WriteString("\n")
	}
	return sb.String()
}
