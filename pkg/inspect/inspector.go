package inspect

import (
	"errors"
	"fmt"

	"github.com/regdb/regdb/pkg/model"
)

// Inspector errors.
var (
	ErrBlockNotFound    = errors.New("block not found")
	ErrRegisterNotFound = errors.New("register not found")
	ErrFieldNotFound    = errors.New("field not found")
	ErrNotWritable      = errors.New("field is not writable")
	ErrPartialPath      = errors.New("path does not name a register")
)

// Source provides the registers an Inspector works on.
// This is implemented by session.Session.
type Source interface {
	Register(name string) (*model.Register, bool)
	Registers() []*model.Register
	Block(name string) (*model.Block, bool)
}

// Inspector provides inspection and value prediction for built registers.
type Inspector struct {
	source Source
}

// NewInspector creates a new Inspector over the given source.
func NewInspector(source Source) *Inspector {
	return &Inspector{source: source}
}

// RegisterInfo represents register information for display.
type RegisterInfo struct {
	Name      string
	Block     string
	Offset    uint32
	Address   uint32
	Size      int
	Access    model.Access
	RawAccess string
	State     model.State
	Reset     uint32
	Value     uint32
	UsedBits  int
	Fields    []FieldInfo
	Conflicts []model.Conflict
}

// FieldInfo represents field information for display.
type FieldInfo struct {
	Field model.Field
	Value uint32
	Enum  string
}

// BlockInfo represents an address block for display.
type BlockInfo struct {
	Name        string
	BaseAddress uint32
	Range       uint32
	Registers   []RegisterInfo
}

// Resolve returns the register named by path, and the field when the path
// names one.
func (i *Inspector) Resolve(path *Path) (*model.Register, *model.Field, error) {
	if path.Register == "" {
		return nil, nil, ErrPartialPath
	}

	var reg *model.Register
	if path.Block != "" {
		b, ok := i.source.Block(path.Block)
		if !ok {
			return nil, nil, fmt.Errorf("%w: %s", ErrBlockNotFound, path.Block)
		}
		if reg, ok = b.Register(path.Register); !ok {
			return nil, nil, fmt.Errorf("%w: %s", ErrRegisterNotFound, path)
		}
	} else {
		var ok bool
		if reg, ok = i.source.Register(path.Register); !ok {
			return nil, nil, fmt.Errorf("%w: %s", ErrRegisterNotFound, path.Register)
		}
	}

	if path.Field == "" {
		return reg, nil, nil
	}
	f, ok := reg.Field(path.Field)
	if !ok {
		return nil, nil, fmt.Errorf("%w: %s", ErrFieldNotFound, path)
	}
	return reg, &f, nil
}

// InspectRegister returns information about the register named by path.
func (i *Inspector) InspectRegister(path *Path) (*RegisterInfo, error) {
	reg, _, err := i.Resolve(path)
	if err != nil {
		return nil, err
	}
	info := inspectRegister(reg)
	if path.Block != "" {
		if b, ok := i.source.Block(path.Block); ok {
			info.Block = b.Name
			info.Address = b.Address(reg)
		}
	}
	return &info, nil
}

// InspectBlock returns information about a block and all its registers.
func (i *Inspector) InspectBlock(name string) (*BlockInfo, error) {
	b, ok := i.source.Block(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrBlockNotFound, name)
	}
	info := &BlockInfo{
		Name:        b.Name,
		BaseAddress: b.BaseAddress,
		Range:       b.Range,
	}
	for _, reg := range b.Registers() {
		ri := inspectRegister(reg)
		ri.Block = b.Name
		ri.Address = b.Address(reg)
		info.Registers = append(info.Registers, ri)
	}
	return info, nil
}

// InspectAll returns information about every register of the source.
func (i *Inspector) InspectAll() []RegisterInfo {
	regs := i.source.Registers()
	out := make([]RegisterInfo, 0, len(regs))
	for _, reg := range regs {
		out = append(out, inspectRegister(reg))
	}
	return out
}

func inspectRegister(reg *model.Register) RegisterInfo {
	cfg := reg.Config()
	value := reg.Mirror()
	info := RegisterInfo{
		Name:      reg.Name(),
		Offset:    cfg.Offset,
		Address:   cfg.Offset,
		Size:      cfg.Size,
		Access:    cfg.Access,
		RawAccess: cfg.RawAccess,
		State:     reg.State(),
		Reset:     reg.ResetValue(),
		Value:     value,
		UsedBits:  reg.UsedBits(),
		Conflicts: reg.Conflicts(),
	}
	for _, f := range reg.Fields() {
		v := f.Extract(value)
		info.Fields = append(info.Fields, FieldInfo{Field: f, Value: v, Enum: GetEnumName(f, v)})
	}
	return info
}

// Read returns the mirrored value of the register or field named by path.
func (i *Inspector) Read(path *Path) (uint32, error) {
	reg, f, err := i.Resolve(path)
	if err != nil {
		return 0, err
	}
	if f == nil {
		return reg.Mirror(), nil
	}
	return reg.FieldValue(f.Name)
}

// Write predicts the effect of writing value to the register or field named
// by path. Field values may be enumerated names.
func (i *Inspector) Write(path *Path, value string) error {
	reg, f, err := i.Resolve(path)
	if err != nil {
		return err
	}
	if f == nil {
		v, err := ParseValue(value)
		if err != nil {
			return err
		}
		reg.PredictWrite(v)
		return nil
	}

	if !f.Access.CanWrite() {
		return fmt.Errorf("%w: %s", ErrNotWritable, path)
	}
	v, err := ResolveFieldValue(*f, value)
	if err != nil {
		return err
	}
	reg.PredictWrite(f.Insert(reg.Mirror(), v))
	return nil
}
