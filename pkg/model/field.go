package model

import "fmt"

// EnumValue is a named value of a field.
type EnumValue struct {
	Name        string
	Value       uint32
	Description string
}

// Field describes one bit field of a register.
type Field struct {
	Name        string
	DisplayName string
	Description string

	// LSB is the bit offset of the least significant bit.
	LSB int

	// Width is the number of bits.
	Width int

	// Access is the normalized access. RawAccess keeps the stored token.
	Access    Access
	RawAccess string

	// Reset is the field reset value, not shifted into register position.
	Reset uint32

	Volatile               bool
	Reserved               bool
	IndividuallyAccessible bool
	Rand                   bool
	Mirror                 bool

	Enums []EnumValue
}

// MSB returns the bit offset of the most significant bit.
func (f Field) MSB() int {
	return f.LSB + f.Width - 1
}

// Mask returns the field bits in register position. Bits beyond 31 are
// dropped.
func (f Field) Mask() uint32 {
	return widthMask(f.Width) << uint(f.LSB)
}

// Overlaps reports whether the bit ranges of f and g intersect.
func (f Field) Overlaps(g Field) bool {
	return f.LSB < g.LSB+g.Width && g.LSB < f.LSB+f.Width
}

// Extract returns the field value from a register value.
func (f Field) Extract(reg uint32) uint32 {
	return (reg >> uint(f.LSB)) & widthMask(f.Width)
}

// Insert returns reg with the field bits replaced by v.
func (f Field) Insert(reg, v uint32) uint32 {
	return (reg &^ f.Mask()) | ((v << uint(f.LSB)) & f.Mask())
}

// EnumName returns the name of the enumerated value v.
func (f Field) EnumName(v uint32) (string, bool) {
	for _, e := range f.Enums {
		if e.Value == v {
			return e.Name, true
		}
	}
	return "", false
}

// EnumValue returns the value of the named enumeration.
func (f Field) EnumValue(name string) (uint32, bool) {
	for _, e := range f.Enums {
		if e.Name == name {
			return e.Value, true
		}
	}
	return 0, false
}

// String returns "name[msb:lsb]".
func (f Field) String() string {
	if f.Width == 1 {
		return fmt.Sprintf("%s[%d]", f.Name, f.LSB)
	}
	return fmt.Sprintf("%s[%d:%d]", f.Name, f.MSB(), f.LSB)
}

func widthMask(width int) uint32 {
	switch {
	case width <= 0:
		return 0
	case width >= 32:
		return 0xFFFF_FFFF
	default:
		return 1<<uint(width) - 1
	}
}

// SizeMask returns a mask of the low bits bits, saturating at 32.
func SizeMask(bits int) uint32 {
	return widthMask(bits)
}
