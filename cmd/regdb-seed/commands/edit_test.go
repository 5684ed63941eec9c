package commands

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/regdb/regdb/pkg/schema"
	"github.com/regdb/regdb/pkg/store"
)

func loadedStore(t *testing.T) string {
	t.Helper()
	db := filepath.Join(t.TempDir(), "uart.db")
	require.NoError(t, RunLoad(context.Background(), db, []string{uartFixture}, quiet()))
	return db
}

func TestSetRegisterColumns(t *testing.T) {
	ctx := context.Background()
	db := loadedStore(t)

	var out bytes.Buffer
	require.NoError(t, RunSet(ctx, db, "ctrl/data", []string{"size=8", "resetValue=8'h7"}, &out))
	assert.Equal(t, "ctrl/data.resetValue: NULL -> 8'h7\nctrl/data.size: 16 -> 8\n", out.String())

	repo, err := store.OpenReadOnly(ctx, db)
	require.NoError(t, err)
	defer repo.Close()
	id, err := repo.FindRowID(ctx, schema.TableRegisters, schema.ColName, "data")
	require.NoError(t, err)
	size, err := repo.GetCell(ctx, schema.TableRegisters, id, schema.ColSize)
	require.NoError(t, err)
	assert.Equal(t, "8", size.Text)
}

func TestSetToNull(t *testing.T) {
	ctx := context.Background()
	db := loadedStore(t)

	var out bytes.Buffer
	require.NoError(t, RunSet(ctx, db, "status_register", []string{"resetValue=null"}, &out))
	assert.Equal(t, "status_register.resetValue: 32'h0000_0001 -> NULL\n", out.String())
}

func TestSetErrors(t *testing.T) {
	ctx := context.Background()
	db := loadedStore(t)
	var out bytes.Buffer

	tests := []struct {
		name        string
		target      string
		assignments []string
	}{
		{"no assignments", "ctrl/data", nil},
		{"missing value separator", "ctrl/data", []string{"size"}},
		{"protected column", "ctrl/data", []string{"id=3"}},
		{"unknown register", "ctrl/nope", []string{"size=8"}},
		{"unknown block", "nope/data", []string{"size=8"}},
		{"bad column name", "ctrl/data", []string{"size;drop=1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, RunSet(ctx, db, tt.target, tt.assignments, &out))
		})
	}
	assert.Empty(t, out.String())
}

func TestDeleteComponentCascades(t *testing.T) {
	ctx := context.Background()
	db := loadedStore(t)

	require.NoError(t, RunDelete(ctx, db, "uart", quiet()))
	assert.ErrorIs(t, RunDelete(ctx, db, "uart", quiet()), store.ErrNotFound)

	repo, err := store.OpenReadOnly(ctx, db)
	require.NoError(t, err)
	defer repo.Close()
	for _, table := range []string{schema.TableMetadata, schema.TableRegisters, schema.TableFields} {
		rows, err := repo.Rows(ctx, table, "", nil, schema.ColName)
		require.NoError(t, err)
		assert.Empty(t, rows, table)
	}
}

func TestDeleteMissingStore(t *testing.T) {
	err := RunDelete(context.Background(), filepath.Join(t.TempDir(), "none.db"), "uart", quiet())
	assert.ErrorIs(t, err, store.ErrConnection)
}
