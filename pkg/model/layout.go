package model

import (
	"fmt"
	"slices"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/regdb/regdb/pkg/log"
)

// ConflictKind classifies a layout conflict.
type ConflictKind uint8

const (
	// ConflictOverflow means the summed field widths exceed the register size.
	ConflictOverflow ConflictKind = iota

	// ConflictOverlap means a field intersects a neighbouring field.
	ConflictOverlap

	// ConflictOutOfRange means a field extends past the register size.
	ConflictOutOfRange
)

// String returns the conflict kind name.
func (k ConflictKind) String() string {
	switch k {
	case ConflictOverflow:
		return "overflow"
	case ConflictOverlap:
		return "overlap"
	case ConflictOutOfRange:
		return "out-of-range"
	default:
		return "unknown"
	}
}

// Conflict is a recorded layout problem. The field that triggered it was
// still added.
type Conflict struct {
	Kind ConflictKind

	// Field is the field being added.
	Field string

	// Other is the neighbour involved in an overlap.
	Other string

	UsedBits  int
	TotalBits int
}

// String describes the conflict.
func (c Conflict) String() string {
	switch c.Kind {
	case ConflictOverlap:
		return fmt.Sprintf("field %s overlaps %s", c.Field, c.Other)
	case ConflictOverflow:
		return fmt.Sprintf("field %s brings used bits to %d of %d", c.Field, c.UsedBits, c.TotalBits)
	default:
		return fmt.Sprintf("field %s extends past bit %d", c.Field, c.TotalBits-1)
	}
}

// Layout is the ordered field set of one register.
// It is safe for concurrent use.
type Layout struct {
	mu        sync.RWMutex
	register  string
	totalBits int
	usedBits  int
	fields    []Field
	conflicts []Conflict
	locked    bool
	logger    log.Logger
}

// NewLayout creates an empty layout for a register of totalBits bits.
// Conflicts and lock violations are reported to logger, which may be nil.
func NewLayout(register string, totalBits int, logger log.Logger) *Layout {
	return &Layout{
		register:  register,
		totalBits: totalBits,
		logger:    log.OrNoop(logger),
	}
}

// AddField inserts f in LSB order after any fields with the same LSB.
//
// Overflow and overlap with the immediate predecessor or successor are
// recorded as conflicts; the field is added regardless. On a locked layout
// AddField returns ErrLocked and changes nothing.
func (l *Layout) AddField(f Field) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.locked {
		l.emit(log.SeverityWarning, log.CodeLockViolation, f.Name,
			"add field on locked register", nil)
		return fmt.Errorf("%w: add field %s to %s", ErrLocked, f.Name, l.register)
	}

	idx := sort.Search(len(l.fields), func(i int) bool {
		return l.fields[i].LSB > f.LSB
	})
	l.fields = slices.Insert(l.fields, idx, f)
	l.usedBits += f.Width

	if l.usedBits > l.totalBits {
		l.record(Conflict{Kind: ConflictOverflow, Field: f.Name})
	}
	if f.LSB+f.Width > l.totalBits {
		l.record(Conflict{Kind: ConflictOutOfRange, Field: f.Name})
	}
	if idx > 0 && l.fields[idx-1].Overlaps(f) {
		l.record(Conflict{Kind: ConflictOverlap, Field: f.Name, Other: l.fields[idx-1].Name})
	}
	if idx+1 < len(l.fields) && l.fields[idx+1].Overlaps(f) {
		l.record(Conflict{Kind: ConflictOverlap, Field: f.Name, Other: l.fields[idx+1].Name})
	}
	return nil
}

// record appends a conflict and reports it. Callers hold l.mu.
func (l *Layout) record(c Conflict) {
	c.UsedBits = l.usedBits
	c.TotalBits = l.totalBits
	l.conflicts = append(l.conflicts, c)

	code := log.CodeLayoutOverflow
	ctx := map[string]string{
		"used_bits":  strconv.Itoa(c.UsedBits),
		"total_bits": strconv.Itoa(c.TotalBits),
		"kind":       c.Kind.String(),
	}
	if c.Kind == ConflictOverlap {
		code = log.CodeLayoutOverlap
		ctx["other"] = c.Other
	}
	l.emit(log.SeverityWarning, code, c.Field, c.String(), ctx)
}

func (l *Layout) emit(sev log.Severity, code log.Code, field, msg string, ctx map[string]string) {
	l.logger.Log(log.Event{
		Timestamp: time.Now(),
		Severity:  sev,
		Code:      code,
		Register:  l.register,
		Field:     field,
		Message:   msg,
		Context:   ctx,
	})
}

// Lock makes the layout immutable. Locking twice is a no-op.
func (l *Layout) Lock() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.locked = true
}

// Locked reports whether the layout is locked.
func (l *Layout) Locked() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.locked
}

// Fields returns a copy of the ordered fields.
func (l *Layout) Fields() []Field {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return slices.Clone(l.fields)
}

// Field returns the first field with the given name.
func (l *Layout) Field(name string) (Field, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	for _, f := range l.fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Len returns the number of fields.
func (l *Layout) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.fields)
}

// UsedBits returns the summed width of all fields.
func (l *Layout) UsedBits() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.usedBits
}

// TotalBits returns the register size the layout is bound to.
func (l *Layout) TotalBits() int {
	return l.totalBits
}

// Conflicts returns a copy of the recorded conflicts.
func (l *Layout) Conflicts() []Conflict {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return slices.Clone(l.conflicts)
}

// ResetComposite returns the register value formed by every field's reset.
func (l *Layout) ResetComposite() uint32 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	var v uint32
	for _, f := range l.fields {
		v = f.Insert(v, f.Reset)
	}
	return v
}
