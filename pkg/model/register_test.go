package model

import (
	"errors"
	"reflect"
	"testing"

	"github.com/regdb/regdb/pkg/log"
)

func configuredRegister(t *testing.T, l log.Logger) *Register {
	t.Helper()
	r := NewRegister("ctrl", WithLogger(l))
	err := r.Configure(RegisterConfig{
		Offset:   0x10,
		Size:     16,
		Access:   AccessRW,
		Reset:    0x00A1,
		HasReset: true,
	})
	if err != nil {
		t.Fatalf("Configure failed: %v", err)
	}
	return r
}

func TestRegisterLifecycle(t *testing.T) {
	c := log.NewCollector()
	r := NewRegister("ctrl", WithLogger(c))

	if r.State() != StateUnbuilt {
		t.Fatalf("initial state = %v, want UNBUILT", r.State())
	}
	if err := r.AddField(Field{Name: "en", LSB: 0, Width: 1}); !errors.Is(err, ErrUnbuilt) {
		t.Errorf("AddField on unbuilt = %v, want ErrUnbuilt", err)
	}
	if err := r.Lock(); !errors.Is(err, ErrUnbuilt) {
		t.Errorf("Lock on unbuilt = %v, want ErrUnbuilt", err)
	}
	if err := r.ClearFields(); err != nil {
		t.Errorf("ClearFields on unbuilt = %v, want nil", err)
	}

	if err := r.Configure(RegisterConfig{Size: 8}); err != nil {
		t.Fatalf("Configure failed: %v", err)
	}
	if r.State() != StateConfiguring {
		t.Fatalf("state = %v, want CONFIGURING", r.State())
	}
	if err := r.AddField(Field{Name: "en", LSB: 0, Width: 1}); err != nil {
		t.Fatalf("AddField failed: %v", err)
	}

	if err := r.Lock(); err != nil {
		t.Fatalf("Lock failed: %v", err)
	}
	if !r.IsLocked() {
		t.Fatal("register should be locked")
	}
	if err := r.Lock(); err != nil {
		t.Errorf("second Lock = %v, want nil", err)
	}
	if c.Count(log.CodeLocked) != 1 {
		t.Errorf("locked events = %d, want 1", c.Count(log.CodeLocked))
	}
}

func TestRegisterLockRejectsMutation(t *testing.T) {
	c := log.NewCollector()
	r := configuredRegister(t, c)
	_ = r.AddField(Field{Name: "en", LSB: 0, Width: 1})
	if err := r.Lock(); err != nil {
		t.Fatal(err)
	}

	before := r.Fields()
	beforeUsed := r.UsedBits()

	if err := r.AddField(Field{Name: "x", LSB: 1, Width: 1}); !errors.Is(err, ErrLocked) {
		t.Errorf("AddField = %v, want ErrLocked", err)
	}
	if err := r.Configure(RegisterConfig{Size: 32}); !errors.Is(err, ErrLocked) {
		t.Errorf("Configure = %v, want ErrLocked", err)
	}
	if err := r.ClearFields(); !errors.Is(err, ErrLocked) {
		t.Errorf("ClearFields = %v, want ErrLocked", err)
	}
	if err := r.SetReset(1); !errors.Is(err, ErrLocked) {
		t.Errorf("SetReset = %v, want ErrLocked", err)
	}

	if !reflect.DeepEqual(before, r.Fields()) {
		t.Error("fields changed after lock")
	}
	if r.UsedBits() != beforeUsed || r.TotalBits() != 16 {
		t.Error("bit accounting changed after lock")
	}
	if got := c.Count(log.CodeLockViolation); got != 4 {
		t.Errorf("lock violations = %d, want 4", got)
	}

	// Value operations keep working.
	r.Predict(0x1234)
	if r.Mirror() != 0x1234 {
		t.Errorf("Mirror() = %#x after Predict", r.Mirror())
	}
	r.Reset()
	if r.Mirror() != 0xA1 {
		t.Errorf("Mirror() = %#x after Reset, want 0xa1", r.Mirror())
	}
}

func TestRegisterConfigureClearsFields(t *testing.T) {
	r := configuredRegister(t, nil)
	_ = r.AddField(Field{Name: "a", LSB: 0, Width: 4})
	_ = r.AddField(Field{Name: "b", LSB: 2, Width: 4})
	if len(r.Conflicts()) != 1 {
		t.Fatalf("conflicts = %d, want 1", len(r.Conflicts()))
	}

	if err := r.Configure(RegisterConfig{Size: 32}); err != nil {
		t.Fatal(err)
	}
	if len(r.Fields()) != 0 || r.UsedBits() != 0 || len(r.Conflicts()) != 0 {
		t.Error("Configure should start a fresh layout")
	}
	if r.TotalBits() != 32 {
		t.Errorf("TotalBits() = %d, want 32", r.TotalBits())
	}

	_ = r.AddField(Field{Name: "a", LSB: 0, Width: 4})
	if err := r.ClearFields(); err != nil {
		t.Fatal(err)
	}
	if len(r.Fields()) != 0 {
		t.Error("ClearFields should drop all fields")
	}
}

func TestRegisterConfigureDefaults(t *testing.T) {
	r := NewRegister("status")
	if err := r.Configure(RegisterConfig{Size: 0}); !errors.Is(err, ErrInvalidSize) {
		t.Errorf("Configure(size 0) = %v, want ErrInvalidSize", err)
	}
	if r.State() != StateUnbuilt {
		t.Error("failed Configure should not change state")
	}

	if err := r.Configure(RegisterConfig{Size: 8, Reset: 0x1FF}); err != nil {
		t.Fatal(err)
	}
	cfg := r.Config()
	if cfg.DisplayName != "status" || cfg.Dim != 1 {
		t.Errorf("defaults: display %q dim %d", cfg.DisplayName, cfg.Dim)
	}
	if r.Mirror() != 0xFF {
		t.Errorf("Mirror() = %#x, want reset truncated to 0xff", r.Mirror())
	}
}

func TestRegisterPredictWrite(t *testing.T) {
	r := NewRegister("ctrl")
	if err := r.Configure(RegisterConfig{Size: 8, Access: AccessRW, Reset: 0x0F}); err != nil {
		t.Fatal(err)
	}
	_ = r.AddField(Field{Name: "status", LSB: 0, Width: 4, Access: AccessRO})
	_ = r.AddField(Field{Name: "mode", LSB: 4, Width: 4, Access: AccessRW})

	r.PredictWrite(0xA0 | 0x3)
	if r.Mirror() != 0xAF {
		t.Errorf("Mirror() = %#x, want 0xaf", r.Mirror())
	}

	mode, err := r.FieldValue("mode")
	if err != nil || mode != 0xA {
		t.Errorf("FieldValue(mode) = %#x, %v", mode, err)
	}
	if _, err := r.FieldValue("missing"); !errors.Is(err, ErrFieldNotFound) {
		t.Errorf("FieldValue(missing) = %v, want ErrFieldNotFound", err)
	}
}

func TestRegisterPredictWriteNoFields(t *testing.T) {
	ro := NewRegister("ro")
	_ = ro.Configure(RegisterConfig{Size: 8, Access: AccessRO, Reset: 0x5})
	ro.PredictWrite(0xFF)
	if ro.Mirror() != 0x5 {
		t.Errorf("read-only register mirror = %#x, want 0x5", ro.Mirror())
	}

	rw := NewRegister("rw")
	_ = rw.Configure(RegisterConfig{Size: 8, Access: AccessRW})
	rw.PredictWrite(0x1FF)
	if rw.Mirror() != 0xFF {
		t.Errorf("read-write register mirror = %#x, want 0xff", rw.Mirror())
	}
}

func TestRegisterSetReset(t *testing.T) {
	r := NewRegister("r")
	if err := r.SetReset(1); !errors.Is(err, ErrUnbuilt) {
		t.Errorf("SetReset on unbuilt = %v", err)
	}
	_ = r.Configure(RegisterConfig{Size: 16})
	_ = r.AddField(Field{Name: "en", LSB: 0, Width: 1, Reset: 1})
	_ = r.AddField(Field{Name: "div", LSB: 8, Width: 4, Reset: 3})

	if err := r.SetReset(r.ResetComposite()); err != nil {
		t.Fatal(err)
	}
	if r.ResetValue() != 0x301 || r.Mirror() != 0x301 {
		t.Errorf("reset = %#x mirror = %#x, want 0x301", r.ResetValue(), r.Mirror())
	}
	if !r.Config().HasReset {
		t.Error("HasReset should be set")
	}
}

func TestStateString(t *testing.T) {
	for s, want := range map[State]string{
		StateUnbuilt:     "UNBUILT",
		StateConfiguring: "CONFIGURING",
		StateLocked:      "LOCKED",
		State(9):         "UNKNOWN",
	} {
		if s.String() != want {
			t.Errorf("State(%d).String() = %q, want %q", s, s.String(), want)
		}
	}
}
