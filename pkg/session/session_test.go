package session

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/regdb/regdb/pkg/fixture"
	"github.com/regdb/regdb/pkg/log"
	"github.com/regdb/regdb/pkg/model"
	"github.com/regdb/regdb/pkg/store"
)

const uartYAML = `
component: {vendor: acme, library: periph, name: uart, version: "1.0"}
memoryMaps:
  - name: regs
    addressBlocks:
      - name: ctrl
        baseAddress: "0x4000_0000"
        range: "'h100"
        registers:
          - name: status_register
            addressOffset: "'h4"
            access: read-only
            resetValue: "32'h0000_0001"
            fields:
              - {name: ready, bitOffset: 0, bitWidth: 1, access: read-only}
              - {name: error, bitOffset: 1, bitWidth: 1, access: read-only}
          - name: overlap_register
            addressOffset: "'h8"
            fields:
              - {name: wide, bitOffset: 0, bitWidth: 8}
              - {name: inner, bitOffset: 4, bitWidth: 2}
`

// seedFile writes the UART description into a fresh database file.
func seedFile(t *testing.T) string {
	t.Helper()
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "uart.db")

	d, err := fixture.Parse([]byte(uartYAML))
	require.NoError(t, err)
	s, err := store.Open(ctx, path)
	require.NoError(t, err)
	require.NoError(t, s.Init(ctx))
	_, err = fixture.Seed(ctx, s, d, "")
	require.NoError(t, err)
	require.NoError(t, s.Close())
	return path
}

func openSession(t *testing.T, cfg Config, opts ...Option) *Session {
	t.Helper()
	s, err := Open(context.Background(), cfg, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpenMissingFile(t *testing.T) {
	cfg := DefaultConfig()
	cfg.StorePath = filepath.Join(t.TempDir(), "missing.db")

	_, err := Open(context.Background(), cfg)
	assert.ErrorIs(t, err, store.ErrConnection)

	_, statErr := os.Stat(cfg.StorePath)
	assert.True(t, os.IsNotExist(statErr), "open must not create the file")
}

func TestOpenWithoutSchema(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "empty.db")
	s, err := store.Open(ctx, path)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	cfg := DefaultConfig()
	cfg.StorePath = path
	_, err = Open(ctx, cfg)
	assert.ErrorIs(t, err, store.ErrConnection)
}

func TestOpenNoPath(t *testing.T) {
	_, err := Open(context.Background(), DefaultConfig())
	assert.ErrorIs(t, err, store.ErrConnection)
}

func TestOpenCreateIfMissing(t *testing.T) {
	cfg := DefaultConfig()
	cfg.StorePath = filepath.Join(t.TempDir(), "new.db")
	cfg.CreateIfMissing = true

	s := openSession(t, cfg)
	_, err := s.Configure(context.Background(), "status_register")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestConfigureAndLock(t *testing.T) {
	ctx := context.Background()
	cfg := DefaultConfig()
	cfg.StorePath = seedFile(t)
	cfg.ReadOnly = true
	s := openSession(t, cfg, WithSessionID("run-1"))

	reg, err := s.Configure(ctx, "status_register")
	require.NoError(t, err)
	assert.Equal(t, model.StateConfiguring, reg.State())
	assert.Equal(t, uint32(1), reg.Mirror())

	again, err := s.Configure(ctx, "status_register")
	require.NoError(t, err)
	assert.Same(t, reg, again, "reconfigure keeps the tracked register")

	require.NoError(t, s.Lock())
	assert.True(t, reg.IsLocked())

	_, err = s.Configure(ctx, "status_register")
	assert.ErrorIs(t, err, model.ErrLocked)

	reg.Predict(0xff)
	s.Reset()
	assert.Equal(t, uint32(1), reg.Mirror())

	for _, e := range s.Diagnostics() {
		assert.Equal(t, "run-1", e.SessionID)
		assert.False(t, e.Timestamp.IsZero())
	}
}

func TestConfigureBlock(t *testing.T) {
	cfg := DefaultConfig()
	cfg.StorePath = seedFile(t)
	s := openSession(t, cfg)

	block, err := s.ConfigureBlock(context.Background(), "ctrl")
	require.NoError(t, err)
	assert.Equal(t, 2, block.Len())

	got, ok := s.Block("ctrl")
	require.True(t, ok)
	assert.Same(t, block, got)

	regs := s.Registers()
	require.Len(t, regs, 2)
	assert.Equal(t, "status_register", regs[0].Name())

	_, ok = s.Register("overlap_register")
	assert.True(t, ok)
}

func TestGeneratedSessionID(t *testing.T) {
	cfg := DefaultConfig()
	cfg.StorePath = seedFile(t)
	a := openSession(t, cfg)
	b := openSession(t, cfg)
	assert.NotEmpty(t, a.ID())
	assert.NotEqual(t, a.ID(), b.ID())
}

func TestDiagnosticFilter(t *testing.T) {
	ctx := context.Background()
	path := seedFile(t)

	tests := []struct {
		name        string
		minSeverity string
		suppress    []string
		wantOverlap int
		wantInfo    bool
	}{
		{"default", "debug", nil, 1, true},
		{"warnings only", "warning", nil, 1, false},
		{"suppress overlap", "debug", []string{"layout-overlap"}, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.StorePath = path
			cfg.MinSeverity = tt.minSeverity
			cfg.Suppress = tt.suppress

			extra := log.NewCollector()
			s := openSession(t, cfg, WithLogger(extra))
			_, err := s.Configure(ctx, "overlap_register")
			require.NoError(t, err)

			overlaps := 0
			info := false
			for _, e := range s.Diagnostics() {
				if e.Code == log.CodeLayoutOverlap {
					overlaps++
				}
				if e.Severity < log.SeverityWarning {
					info = true
				}
			}
			assert.Equal(t, tt.wantOverlap, overlaps)
			assert.Equal(t, tt.wantInfo, info)
			assert.Equal(t, len(s.Diagnostics()), len(extra.Events()))
		})
	}
}

func TestDiagnosticsFile(t *testing.T) {
	ctx := context.Background()
	cfg := DefaultConfig()
	cfg.StorePath = seedFile(t)
	cfg.DiagnosticsPath = filepath.Join(t.TempDir(), "run"+log.FileExt)

	s, err := Open(ctx, cfg, WithSessionID("file-run"))
	require.NoError(t, err)
	_, err = s.Configure(ctx, "overlap_register")
	require.NoError(t, err)
	require.NoError(t, s.Close())

	r, err := log.NewFilteredReader(cfg.DiagnosticsPath, log.Filter{SessionID: "file-run"})
	require.NoError(t, err)
	defer r.Close()
	events, err := r.ReadAll()
	require.NoError(t, err)
	assert.Len(t, events, len(s.Diagnostics()))
	assert.NotEmpty(t, events)
}

func TestClose(t *testing.T) {
	ctx := context.Background()
	cfg := DefaultConfig()
	cfg.StorePath = seedFile(t)
	s, err := Open(ctx, cfg)
	require.NoError(t, err)

	_, err = s.Configure(ctx, "status_register")
	require.NoError(t, err)

	require.NoError(t, s.Close())
	require.NoError(t, s.Close())

	_, err = s.Configure(ctx, "status_register")
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, err, store.ErrConnection)
	_, err = s.ConfigureBlock(ctx, "ctrl")
	assert.ErrorIs(t, err, ErrClosed)
	assert.Empty(t, s.Registers())
}

func TestConcurrentConfigure(t *testing.T) {
	cfg := DefaultConfig()
	cfg.StorePath = seedFile(t)
	s := openSession(t, cfg)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = s.Configure(context.Background(), "status_register")
		}()
	}
	wg.Wait()
	assert.Len(t, s.Registers(), 1)
}

func TestParseConfig(t *testing.T) {
	cfg, err := ParseConfig([]byte(`
store: regs.db
read_only: true
min_severity: warning
suppress: [layout_overlap, parse_error]
`))
	require.NoError(t, err)
	assert.Equal(t, "regs.db", cfg.StorePath)
	assert.True(t, cfg.ReadOnly)
	assert.Equal(t, "warning", cfg.MinSeverity)
	assert.Len(t, cfg.Suppress, 2)

	cfg, err = ParseConfig([]byte("store: x.db\n"))
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.MinSeverity)

	_, err = ParseConfig([]byte("min_severity: loud\n"))
	assert.Error(t, err)
	_, err = ParseConfig([]byte("suppress: [nonsense]\n"))
	assert.Error(t, err)
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "regdb.yaml")
	require.NoError(t, os.WriteFile(path, []byte("store: a.db\ncreate_if_missing: true\n"), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.True(t, cfg.CreateIfMissing)

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

const twinYAML = `
component: {vendor: acme, library: periph, name: twin, version: "1.0"}
memoryMaps:
  - name: regs
    addressBlocks:
      - name: uart0
        baseAddress: "0x4000_0000"
        registers:
          - name: ctrl
            addressOffset: "'h0"
            resetValue: "32'h0000_0001"
            fields:
              - {name: enable, bitOffset: 0, bitWidth: 1}
      - name: uart1
        baseAddress: "0x4000_1000"
        registers:
          - name: ctrl
            addressOffset: "'h4"
            size: 16
            resetValue: "16'h0002"
            fields:
              - {name: enable, bitOffset: 1, bitWidth: 1}
`

func twinSession(t *testing.T) *Session {
	t.Helper()
	ctx := context.Background()
	repo, err := store.OpenMemory(ctx)
	require.NoError(t, err)
	d, err := fixture.Parse([]byte(twinYAML))
	require.NoError(t, err)
	_, err = fixture.Seed(ctx, repo, d, "")
	require.NoError(t, err)

	s := New(repo)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSameRegisterNameInTwoBlocks(t *testing.T) {
	ctx := context.Background()
	s := twinSession(t)

	_, err := s.ConfigureBlock(ctx, "uart0")
	require.NoError(t, err)
	_, err = s.ConfigureBlock(ctx, "uart1")
	require.NoError(t, err)
	require.Len(t, s.Registers(), 2)

	first, ok := s.Register("uart0/ctrl")
	require.True(t, ok)
	second, ok := s.Register("uart1/ctrl")
	require.True(t, ok)
	assert.NotSame(t, first, second)

	bare, ok := s.Register("ctrl")
	require.True(t, ok)
	assert.Same(t, first, bare, "a bare name selects the first register built")

	// Reconfiguring reads each register's own row.
	again, err := s.Configure(ctx, "uart1/ctrl")
	require.NoError(t, err)
	assert.Same(t, second, again)
	assert.Equal(t, uint32(4), second.Offset())
	assert.Equal(t, 16, second.TotalBits())

	_, err = s.Configure(ctx, "ctrl")
	require.NoError(t, err)
	assert.Equal(t, uint32(0), first.Offset())
	assert.Equal(t, 32, first.TotalBits())

	require.NoError(t, s.Lock())
	for _, reg := range []*model.Register{first, second} {
		assert.Equal(t, model.StateLocked, reg.State())
		assert.ErrorIs(t, reg.AddField(model.Field{Name: "late", LSB: 8, Width: 1}), model.ErrLocked)
		assert.Len(t, reg.Fields(), 1)
	}
}

func TestConfigureBlockAfterLock(t *testing.T) {
	ctx := context.Background()
	s := twinSession(t)

	block, err := s.ConfigureBlock(ctx, "uart0")
	require.NoError(t, err)
	rebuilt, err := s.ConfigureBlock(ctx, "uart0")
	require.NoError(t, err)
	assert.NotSame(t, block, rebuilt)
	require.Len(t, s.Registers(), 1, "rebuilding a block replaces its registers")

	require.NoError(t, s.Lock())

	_, err = s.ConfigureBlock(ctx, "uart0")
	assert.ErrorIs(t, err, model.ErrLocked)

	got, ok := s.Block("uart0")
	require.True(t, ok)
	assert.Same(t, rebuilt, got)

	reg, ok := s.Register("ctrl")
	require.True(t, ok)
	assert.Equal(t, model.StateLocked, reg.State())

	_, err = s.Configure(ctx, "ctrl")
	assert.ErrorIs(t, err, model.ErrLocked)

	violations := 0
	for _, e := range s.Diagnostics() {
		if e.Code == log.CodeLockViolation {
			violations++
		}
	}
	assert.Equal(t, 2, violations)

	// Blocks not built before the lock can still be built.
	other, err := s.ConfigureBlock(ctx, "uart1")
	require.NoError(t, err)
	assert.Equal(t, 1, other.Len())
}
