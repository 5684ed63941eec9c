package model

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/regdb/regdb/pkg/log"
)

// Register errors.
var (
	ErrLocked        = errors.New("register is locked")
	ErrUnbuilt       = errors.New("register is not configured")
	ErrFieldNotFound = errors.New("field not found")
	ErrInvalidSize   = errors.New("register size must be positive")
)

// State is the lifecycle state of a Register.
type State uint8

const (
	// StateUnbuilt is the state after construction.
	StateUnbuilt State = iota

	// StateConfiguring accepts fields.
	StateConfiguring

	// StateLocked rejects structural mutation. It is terminal.
	StateLocked
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateUnbuilt:
		return "UNBUILT"
	case StateConfiguring:
		return "CONFIGURING"
	case StateLocked:
		return "LOCKED"
	default:
		return "UNKNOWN"
	}
}

// RegisterConfig holds the register-level attributes read from the store.
type RegisterConfig struct {
	// DisplayName is the name shown to users. It defaults to the register name.
	DisplayName string
	Description string

	// Offset is the address offset within the block.
	Offset uint32

	// Size is the register width in bits.
	Size int

	// Access is the normalized access. RawAccess keeps the stored token.
	Access    Access
	RawAccess string

	// Reset is the register reset value. HasReset is false when the store
	// carried none.
	Reset     uint32
	ResetMask uint32
	HasReset  bool

	Volatile bool
	Rand     bool

	// Dim is the array depth; 1 for a plain register.
	Dim int
}

// RegisterOption configures a Register.
type RegisterOption func(*Register)

// WithLogger sets the diagnostic logger.
func WithLogger(l log.Logger) RegisterOption {
	return func(r *Register) { r.logger = log.OrNoop(l) }
}

// Register is a materialized register with its field layout and value mirror.
// It is safe for concurrent use.
type Register struct {
	mu     sync.RWMutex
	name   string
	state  State
	config RegisterConfig
	layout *Layout
	mirror uint32
	logger log.Logger
}

// NewRegister creates an Unbuilt register.
func NewRegister(name string, opts ...RegisterOption) *Register {
	r := &Register{
		name:   name,
		logger: log.NoopLogger{},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Name returns the register name.
func (r *Register) Name() string {
	return r.name
}

// State returns the lifecycle state.
func (r *Register) State() State {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.state
}

// IsLocked reports whether the register is Locked.
func (r *Register) IsLocked() bool {
	return r.State() == StateLocked
}

// Configure applies cfg, drops any existing fields and seeds the mirror from
// the reset value. It moves an Unbuilt register to Configuring.
func (r *Register) Configure(cfg RegisterConfig) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state == StateLocked {
		r.violation("configure")
		return fmt.Errorf("%w: configure %s", ErrLocked, r.name)
	}
	if cfg.Size <= 0 {
		return fmt.Errorf("%w: %s has size %d", ErrInvalidSize, r.name, cfg.Size)
	}
	if cfg.DisplayName == "" {
		cfg.DisplayName = r.name
	}
	if cfg.Dim <= 0 {
		cfg.Dim = 1
	}

	r.config = cfg
	r.layout = NewLayout(r.name, cfg.Size, r.logger)
	r.mirror = cfg.Reset & r.sizeMask()
	r.state = StateConfiguring
	return nil
}

// ClearFields drops all fields. It is a no-op on an Unbuilt register.
func (r *Register) ClearFields() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch r.state {
	case StateUnbuilt:
		return nil
	case StateLocked:
		r.violation("clear fields")
		return fmt.Errorf("%w: clear fields of %s", ErrLocked, r.name)
	}
	r.layout = NewLayout(r.name, r.config.Size, r.logger)
	return nil
}

// AddField adds f to the layout. Layout conflicts are recorded, not returned.
func (r *Register) AddField(f Field) error {
	r.mu.RLock()
	state, layout := r.state, r.layout
	r.mu.RUnlock()

	if state == StateUnbuilt {
		return fmt.Errorf("%w: add field %s to %s", ErrUnbuilt, f.Name, r.name)
	}
	return layout.AddField(f)
}

// SetReset replaces the reset value and reseeds the mirror.
func (r *Register) SetReset(v uint32) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch r.state {
	case StateUnbuilt:
		return fmt.Errorf("%w: set reset of %s", ErrUnbuilt, r.name)
	case StateLocked:
		r.violation("set reset")
		return fmt.Errorf("%w: set reset of %s", ErrLocked, r.name)
	}
	r.config.Reset = v
	r.config.HasReset = true
	r.mirror = v & r.sizeMask()
	return nil
}

// Lock moves a Configuring register to Locked. Locking a Locked register is
// a no-op.
func (r *Register) Lock() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch r.state {
	case StateUnbuilt:
		return fmt.Errorf("%w: lock %s", ErrUnbuilt, r.name)
	case StateLocked:
		return nil
	}
	r.layout.Lock()
	r.state = StateLocked
	r.emit(log.SeverityInfo, log.CodeLocked, "register locked")
	return nil
}

// Reset restores the mirror to the reset value.
func (r *Register) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.mirror = r.config.Reset & r.sizeMask()
	r.emit(log.SeverityDebug, log.CodeReset, "mirror reset")
}

// Mirror returns the mirrored register value.
func (r *Register) Mirror() uint32 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.mirror
}

// Predict sets the mirror to v, truncated to the register size.
func (r *Register) Predict(v uint32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.mirror = v & r.sizeMask()
}

// PredictWrite updates the mirror as a bus write of v would. Writable field
// bits take the new value and read-only field bits keep theirs. A register
// without fields follows its own access.
func (r *Register) PredictWrite(v uint32) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.layout == nil || r.layout.Len() == 0 {
		if r.config.Access.CanWrite() {
			r.mirror = v & r.sizeMask()
		}
		return
	}
	for _, f := range r.layout.Fields() {
		if f.Access.CanWrite() {
			r.mirror = f.Insert(r.mirror, f.Extract(v))
		}
	}
	r.mirror &= r.sizeMask()
}

// FieldValue returns the named field's bits from the mirror.
func (r *Register) FieldValue(name string) (uint32, error) {
	f, ok := r.Field(name)
	if !ok {
		return 0, fmt.Errorf("%w: %s.%s", ErrFieldNotFound, r.name, name)
	}
	return f.Extract(r.Mirror()), nil
}

// Field returns the named field.
func (r *Register) Field(name string) (Field, bool) {
	layout := r.currentLayout()
	if layout == nil {
		return Field{}, false
	}
	return layout.Field(name)
}

// Fields returns the fields in LSB order.
func (r *Register) Fields() []Field {
	layout := r.currentLayout()
	if layout == nil {
		return nil
	}
	return layout.Fields()
}

// Conflicts returns the layout conflicts recorded since the last Configure.
func (r *Register) Conflicts() []Conflict {
	layout := r.currentLayout()
	if layout == nil {
		return nil
	}
	return layout.Conflicts()
}

// UsedBits returns the summed field width.
func (r *Register) UsedBits() int {
	layout := r.currentLayout()
	if layout == nil {
		return 0
	}
	return layout.UsedBits()
}

// TotalBits returns the register size in bits.
func (r *Register) TotalBits() int {
	return r.Config().Size
}

// Config returns the register-level attributes.
func (r *Register) Config() RegisterConfig {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.config
}

// Offset returns the address offset within the block.
func (r *Register) Offset() uint32 {
	return r.Config().Offset
}

// Access returns the normalized register access.
func (r *Register) Access() Access {
	return r.Config().Access
}

// ResetValue returns the register reset value.
func (r *Register) ResetValue() uint32 {
	return r.Config().Reset
}

// ResetComposite returns the value formed by every field's reset.
func (r *Register) ResetComposite() uint32 {
	layout := r.currentLayout()
	if layout == nil {
		return 0
	}
	return layout.ResetComposite()
}

func (r *Register) currentLayout() *Layout {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.layout
}

// sizeMask returns the mask for the register size. Callers hold r.mu.
func (r *Register) sizeMask() uint32 {
	return widthMask(r.config.Size)
}

// violation reports a rejected mutation. Callers hold r.mu.
func (r *Register) violation(op string) {
	r.emit(log.SeverityWarning, log.CodeLockViolation, op+" on locked register")
}

func (r *Register) emit(sev log.Severity, code log.Code, msg string) {
	r.logger.Log(log.Event{
		Timestamp: time.Now(),
		Severity:  sev,
		Code:      code,
		Register:  r.name,
		Message:   msg,
	})
}
