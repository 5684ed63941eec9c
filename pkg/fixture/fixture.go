// Package fixture loads YAML register descriptions into a store and exports
// stored descriptions back to YAML.
//
// The YAML mirrors the hierarchical description: a component with memory
// maps, address blocks, registers, fields and enumerated values. Field layout
// is not validated here so that malformed layouts can be seeded on purpose.
package fixture

import (
	"encoding/hex"
	"errors"
	"fmt"
	"os"

	"golang.org/x/crypto/blake2b"
	"gopkg.in/yaml.v3"

	"github.com/regdb/regdb/pkg/literal"
	"github.com/regdb/regdb/pkg/schema"
)

// ErrInvalid is wrapped by every validation error.
var ErrInvalid = errors.New("invalid description")

// Description is a complete component description.
type Description struct {
	Component        Component          `yaml:"component"`
	MemoryMaps       []MemoryMap        `yaml:"memoryMaps"`
	BusInterfaces    []BusInterface     `yaml:"busInterfaces,omitempty"`
	Ports            []Port             `yaml:"ports,omitempty"`
	Parameters       []Parameter        `yaml:"parameters,omitempty"`
	VendorExtensions []VendorExtension `yaml:"vendorExtensions,omitempty"`

	source []byte
}

// Component identifies the described component.
type Component struct {
	Vendor        string `yaml:"vendor"`
	Library       string `yaml:"library"`
	Name          string `yaml:"name"`
	Version       string `yaml:"version"`
	Description   string `yaml:"description,omitempty"`
	Namespace     string `yaml:"namespace,omitempty"`
	SchemaVersion string `yaml:"schemaVersion,omitempty"`
}

// MemoryMap is a named set of address blocks.
type MemoryMap struct {
	Name            string         `yaml:"name"`
	Description     string         `yaml:"description,omitempty"`
	AddressUnitBits int            `yaml:"addressUnitBits,omitempty"`
	Endianness      string         `yaml:"endianness,omitempty"`
	AddressBlocks   []AddressBlock `yaml:"addressBlocks"`
}

// AddressBlock is a contiguous register range.
type AddressBlock struct {
	Name        string     `yaml:"name"`
	Description string     `yaml:"description,omitempty"`
	BaseAddress string     `yaml:"baseAddress"`
	Range       string     `yaml:"range"`
	Width       int        `yaml:"width,omitempty"`
	Usage       string     `yaml:"usage,omitempty"`
	Access      string     `yaml:"access,omitempty"`
	Registers   []Register `yaml:"registers"`
}

// Register describes one register. Literal values are kept as text.
type Register struct {
	Name          string  `yaml:"name"`
	Description   string  `yaml:"description,omitempty"`
	AddressOffset string  `yaml:"addressOffset"`
	Size          int     `yaml:"size,omitempty"`
	Access        string  `yaml:"access,omitempty"`
	Volatile      bool    `yaml:"volatile,omitempty"`
	ResetValue    string  `yaml:"resetValue,omitempty"`
	ResetMask     string  `yaml:"resetMask,omitempty"`
	Rand          bool    `yaml:"rand,omitempty"`
	Dim           int     `yaml:"dim,omitempty"`
	Fields        []Field `yaml:"fields,omitempty"`
}

// Field describes one bit field.
type Field struct {
	Name                   string      `yaml:"name"`
	DisplayName            string      `yaml:"displayName,omitempty"`
	Description            string      `yaml:"description,omitempty"`
	BitOffset              int         `yaml:"bitOffset"`
	BitWidth               int         `yaml:"bitWidth"`
	Access                 string      `yaml:"access,omitempty"`
	ResetValue             string      `yaml:"resetValue,omitempty"`
	Volatile               bool        `yaml:"volatile,omitempty"`
	Reserved               bool        `yaml:"reserved,omitempty"`
	IndividuallyAccessible bool        `yaml:"individuallyAccessible,omitempty"`
	Rand                   bool        `yaml:"rand,omitempty"`
	Mirror                 bool        `yaml:"mirror,omitempty"`
	ModifiedWriteValue     string      `yaml:"modifiedWriteValue,omitempty"`
	ReadAction             string      `yaml:"readAction,omitempty"`
	Enumerations           []EnumValue `yaml:"enumerations,omitempty"`
}

// EnumValue is a named field value.
type EnumValue struct {
	Name        string `yaml:"name"`
	Value       string `yaml:"value"`
	DisplayName string `yaml:"displayName,omitempty"`
	Description string `yaml:"description,omitempty"`
}

// BusInterface describes a bus interface of the component.
type BusInterface struct {
	Name            string `yaml:"name"`
	BusType         string `yaml:"busType,omitempty"`
	AbstractionType string `yaml:"abstractionType,omitempty"`
	InterfaceMode   string `yaml:"interfaceMode,omitempty"`
}

// Port describes a component port.
type Port struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description,omitempty"`
	Direction   string `yaml:"direction,omitempty"`
	Width       int    `yaml:"width,omitempty"`
	IsAddress   bool   `yaml:"isAddress,omitempty"`
	IsData      bool   `yaml:"isData,omitempty"`
}

// Parameter is a named component parameter.
type Parameter struct {
	Name        string `yaml:"name"`
	Value       string `yaml:"value,omitempty"`
	Type        string `yaml:"type,omitempty"`
	Description string `yaml:"description,omitempty"`
}

// VendorExtension is a vendor-specific key/value pair.
type VendorExtension struct {
	VendorID string `yaml:"vendorId,omitempty"`
	Key      string `yaml:"key"`
	Value    string `yaml:"value,omitempty"`
}

// Parse parses and validates a YAML description.
func Parse(data []byte) (*Description, error) {
	var d Description
	if err := yaml.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("parsing description: %w", err)
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	d.source = data
	return &d, nil
}

// Load reads and parses a YAML description file.
func Load(path string) (*Description, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading description: %w", err)
	}
	return Parse(data)
}

// Marshal renders the description as YAML.
func (d *Description) Marshal() ([]byte, error) {
	return yaml.Marshal(d)
}

// Checksum returns the hex BLAKE2b-256 digest of the source document, or of
// the marshaled description when it was built in code.
func (d *Description) Checksum() (string, error) {
	data := d.source
	if data == nil {
		var err error
		if data, err = d.Marshal(); err != nil {
			return "", err
		}
	}
	sum := blake2b.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

// Validate checks identity and naming. Field layout is left to the
// materializer.
func (d *Description) Validate() error {
	c := d.Component
	if c.Vendor == "" || c.Library == "" || c.Name == "" || c.Version == "" {
		return fmt.Errorf("%w: component needs vendor, library, name and version", ErrInvalid)
	}
	switch c.Namespace {
	case "", schema.NamespaceIPXACT, schema.NamespaceSpirit:
	default:
		return fmt.Errorf("%w: namespace %q", ErrInvalid, c.Namespace)
	}

	maps := map[string]bool{}
	for _, mm := range d.MemoryMaps {
		if mm.Name == "" || maps[mm.Name] {
			return fmt.Errorf("%w: memory map name %q empty or duplicated", ErrInvalid, mm.Name)
		}
		maps[mm.Name] = true

		blocks := map[string]bool{}
		for _, b := range mm.AddressBlocks {
			if b.Name == "" || blocks[b.Name] {
				return fmt.Errorf("%w: address block name %q empty or duplicated", ErrInvalid, b.Name)
			}
			blocks[b.Name] = true
			if b.Access != "" && !schema.IsAccessToken(b.Access) {
				return fmt.Errorf("%w: block %s access %q", ErrInvalid, b.Name, b.Access)
			}
			if err := validateRegisters(b); err != nil {
				return err
			}
		}
	}
	return nil
}

func validateRegisters(b AddressBlock) error {
	regs := map[string]bool{}
	for _, r := range b.Registers {
		if r.Name == "" || regs[r.Name] {
			return fmt.Errorf("%w: register name %q in block %s empty or duplicated", ErrInvalid, r.Name, b.Name)
		}
		regs[r.Name] = true
		if r.Size < 0 || r.Dim < 0 {
			return fmt.Errorf("%w: register %s size and dim must be positive", ErrInvalid, r.Name)
		}
		if r.Access != "" && !schema.IsAccessToken(r.Access) {
			return fmt.Errorf("%w: register %s access %q", ErrInvalid, r.Name, r.Access)
		}

		fields := map[string]bool{}
		for _, f := range r.Fields {
			if f.Name == "" || fields[f.Name] {
				return fmt.Errorf("%w: field name %q in register %s empty or duplicated", ErrInvalid, f.Name, r.Name)
			}
			fields[f.Name] = true
			if f.BitOffset < 0 || f.BitWidth <= 0 {
				return fmt.Errorf("%w: field %s.%s needs bitOffset >= 0 and bitWidth > 0", ErrInvalid, r.Name, f.Name)
			}
			if err := validateEnums(r.Name, f); err != nil {
				return err
			}
		}
	}
	return nil
}

// validateEnums rejects enumerations that repeat a name or a value.
// Unparseable values are left to the materializer, which reports them.
func validateEnums(register string, f Field) error {
	names := map[string]bool{}
	values := map[uint32]string{}
	for _, e := range f.Enumerations {
		if e.Name == "" || names[e.Name] {
			return fmt.Errorf("%w: enumeration name %q in field %s.%s empty or duplicated", ErrInvalid, e.Name, register, f.Name)
		}
		names[e.Name] = true
		v, ok := literal.ParseLiteral(e.Value)
		if !ok {
			continue
		}
		if other, dup := values[v]; dup {
			return fmt.Errorf("%w: enumerations %s and %s of field %s.%s share value %#x", ErrInvalid, other, e.Name, register, f.Name, v)
		}
		values[v] = e.Name
	}
	return nil
}
