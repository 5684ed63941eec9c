package model

import (
	"errors"
	"slices"
	"sort"
)

// Block is an address block: a set of registers ordered by offset.
type Block struct {
	Name        string
	Description string
	BaseAddress uint32
	Range       uint32
	Width       int
	Access      Access
	RawAccess   string
	Usage       string

	registers []*Register
}

// NewBlock creates an empty block.
func NewBlock(name string) *Block {
	return &Block{Name: name}
}

// Add inserts r in offset order after any register at the same offset.
func (b *Block) Add(r *Register) {
	off := r.Offset()
	idx := sort.Search(len(b.registers), func(i int) bool {
		return b.registers[i].Offset() > off
	})
	b.registers = slices.Insert(b.registers, idx, r)
}

// Registers returns the registers in offset order.
func (b *Block) Registers() []*Register {
	return slices.Clone(b.registers)
}

// Len returns the number of registers.
func (b *Block) Len() int {
	return len(b.registers)
}

// Register returns the named register.
func (b *Block) Register(name string) (*Register, bool) {
	for _, r := range b.registers {
		if r.Name() == name {
			return r, true
		}
	}
	return nil, false
}

// RegisterAt returns the first register at the given offset.
func (b *Block) RegisterAt(offset uint32) (*Register, bool) {
	idx := sort.Search(len(b.registers), func(i int) bool {
		return b.registers[i].Offset() >= offset
	})
	if idx < len(b.registers) && b.registers[idx].Offset() == offset {
		return b.registers[idx], true
	}
	return nil, false
}

// Address returns the absolute address of r.
func (b *Block) Address(r *Register) uint32 {
	return b.BaseAddress + r.Offset()
}

// Lock locks every register. Registers that fail to lock are reported in the
// joined error; the rest are still locked.
func (b *Block) Lock() error {
	var errs []error
	for _, r := range b.registers {
		if err := r.Lock(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Reset resets every register mirror.
func (b *Block) Reset() {
	for _, r := range b.registers {
		r.Reset()
	}
}
