package interactive

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/regdb/regdb/pkg/fixture"
	"github.com/regdb/regdb/pkg/session"
	"github.com/regdb/regdb/pkg/store"
)

func newShell(t *testing.T) (*Shell, *bytes.Buffer) {
	t.Helper()
	ctx := context.Background()

	repo, err := store.OpenMemory(ctx)
	require.NoError(t, err)
	path := filepath.Join("..", "..", "..", "pkg", "fixture", "testdata", "uart.yaml")
	d, err := fixture.Load(path)
	require.NoError(t, err)
	_, err = fixture.Seed(ctx, repo, d, path)
	require.NoError(t, err)

	sess := session.New(repo, session.WithSessionID("shell-test"))
	t.Cleanup(func() { sess.Close() })

	var buf bytes.Buffer
	return New(sess, &buf), &buf
}

func run(t *testing.T, s *Shell, buf *bytes.Buffer, line string) string {
	t.Helper()
	buf.Reset()
	require.True(t, s.Execute(context.Background(), line), "shell exited on %q", line)
	return buf.String()
}

func TestShellList(t *testing.T) {
	s, buf := newShell(t)
	out := run(t, s, buf, "list")
	assert.Contains(t, out, "ctrl/")
	assert.Contains(t, out, "status_register")
	assert.Contains(t, out, "overlap_register")
}

func TestShellConfigureAndInspect(t *testing.T) {
	s, buf := newShell(t)

	out := run(t, s, buf, "configure status_register")
	assert.Contains(t, out, "status_register @ 0x00000004")
	assert.Contains(t, out, "CONFIGURING")

	out = run(t, s, buf, "inspect")
	assert.Contains(t, out, "status_register")

	out = run(t, s, buf, "configure nope")
	assert.Contains(t, out, "Error:")
}

func TestShellBlockReadWrite(t *testing.T) {
	s, buf := newShell(t)

	out := run(t, s, buf, "block ctrl")
	assert.Contains(t, out, "ctrl @ 0x40000000")
	assert.Contains(t, out, "! ")

	out = run(t, s, buf, "write ctrl/status_register.mode RUN")
	assert.Contains(t, out, "status_register = 0x00000011")

	out = run(t, s, buf, "read status_register.mode")
	assert.Contains(t, out, "RUN")

	out = run(t, s, buf, "write status_register.ready 0")
	assert.Contains(t, out, "not writable")
}

func TestShellLifecycleAndDiagnostics(t *testing.T) {
	s, buf := newShell(t)
	run(t, s, buf, "configure overlap_register")

	assert.Equal(t, "OK\n", run(t, s, buf, "lock"))
	assert.Contains(t, run(t, s, buf, "reset"), "Mirrors reset")

	out := run(t, s, buf, "diag layout-overlap")
	assert.Equal(t, 1, strings.Count(out, "LAYOUT_OVERLAP"))

	out = run(t, s, buf, "diag")
	assert.Contains(t, out, "LOCKED")
	assert.Contains(t, out, "CONFIGURED")
}

func TestShellDump(t *testing.T) {
	s, buf := newShell(t)
	run(t, s, buf, "configure status_register")

	out := run(t, s, buf, "dump status_register")
	assert.Contains(t, out, "RegisterInfo")
	assert.Contains(t, out, `Name: (string) (len=15) "status_register"`)
}

func TestShellUsageAndQuit(t *testing.T) {
	s, buf := newShell(t)

	assert.Contains(t, run(t, s, buf, "read"), "Usage: read <path>")
	assert.Contains(t, run(t, s, buf, "frobnicate"), "Unknown command")
	assert.Contains(t, run(t, s, buf, "help"), "regdb Shell Commands")
	assert.False(t, s.Execute(context.Background(), "quit"))
}
