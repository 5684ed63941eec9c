package store_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/regdb/regdb/pkg/schema"
	"github.com/regdb/regdb/pkg/store"
)

// seed creates one component with one block, one register and one field.
func seed(t *testing.T, s *store.SQLite) (regID, fieldID int64) {
	t.Helper()
	ctx := context.Background()

	err := s.Tx(ctx, func(w *store.Writer) error {
		metaID, err := w.Insert(ctx, schema.TableMetadata, map[string]any{
			"vendor": "acme", "library": "io", "name": "uart", "version": "1.0",
		})
		if err != nil {
			return err
		}
		mapID, err := w.Insert(ctx, schema.TableMemoryMaps, map[string]any{
			"metadata_id": metaID, "name": "regs",
		})
		if err != nil {
			return err
		}
		blockID, err := w.Insert(ctx, schema.TableAddressBlocks, map[string]any{
			"memoryMap_id": mapID, "name": "ctrl", "baseAddress": "0x0", "range": "0x100",
		})
		if err != nil {
			return err
		}
		regID, err = w.Insert(ctx, schema.TableRegisters, map[string]any{
			"addressBlock_id": blockID, "name": "status_register", "addressOffset": "0x4",
			"size": 32, "access": "read-only", "resetValue": "1'h0",
		})
		if err != nil {
			return err
		}
		fieldID, err = w.Insert(ctx, schema.TableFields, map[string]any{
			"register_id": regID, "name": "system_ready", "bitOffset": 0, "bitWidth": 1,
		})
		return err
	})
	require.NoError(t, err)
	return regID, fieldID
}

func TestTableExists(t *testing.T) {
	s, err := store.OpenMemory(context.Background())
	require.NoError(t, err)
	defer s.Close()

	for _, table := range schema.Tables {
		ok, err := s.TableExists(context.Background(), table)
		require.NoError(t, err)
		assert.True(t, ok, table)
	}

	ok, err := s.TableExists(context.Background(), "nope")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFindRowIDAndGetCell(t *testing.T) {
	ctx := context.Background()
	s, err := store.OpenMemory(ctx)
	require.NoError(t, err)
	defer s.Close()
	regID, _ := seed(t, s)

	id, err := s.FindRowID(ctx, schema.TableRegisters, schema.ColName, "status_register")
	require.NoError(t, err)
	assert.Equal(t, regID, id)

	size, err := s.GetCell(ctx, schema.TableRegisters, id, schema.ColSize)
	require.NoError(t, err)
	assert.Equal(t, store.Text("32"), size)

	mask, err := s.GetCell(ctx, schema.TableRegisters, id, schema.ColResetMask)
	require.NoError(t, err)
	assert.False(t, mask.Valid)
	assert.Equal(t, "fallback", mask.Or("fallback"))

	_, err = s.FindRowID(ctx, schema.TableRegisters, schema.ColName, "nonexistent")
	assert.ErrorIs(t, err, store.ErrNotFound)

	_, err = s.GetCell(ctx, schema.TableRegisters, 999, schema.ColSize)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestRowsBatchedByForeignKey(t *testing.T) {
	ctx := context.Background()
	s, err := store.OpenMemory(ctx)
	require.NoError(t, err)
	defer s.Close()
	regID, fieldID := seed(t, s)

	w, err := s.Writer()
	require.NoError(t, err)
	_, err = w.Insert(ctx, schema.TableFields, map[string]any{
		"register_id": regID, "name": "error_flag", "bitOffset": 1, "bitWidth": 1, "access": "read-write",
	})
	require.NoError(t, err)

	rows, err := s.Rows(ctx, schema.TableFields, schema.ColRegisterID, regID,
		schema.ColName, schema.ColBitOffset, schema.ColAccess)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, fieldID, rows[0].ID)
	assert.Equal(t, "system_ready", rows[0].Get(schema.ColName).Text)
	assert.False(t, rows[0].Get(schema.ColAccess).Valid)
	assert.Equal(t, "error_flag", rows[1].Get(schema.ColName).Text)
	assert.Equal(t, "1", rows[1].Get(schema.ColBitOffset).Text)

	all, err := s.Rows(ctx, schema.TableRegisters, "", nil, schema.ColName)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestInvalidIdentifier(t *testing.T) {
	ctx := context.Background()
	s, err := store.OpenMemory(ctx)
	require.NoError(t, err)
	defer s.Close()

	_, err = s.FindRowID(ctx, "registers; DROP TABLE x", schema.ColName, "a")
	assert.ErrorIs(t, err, store.ErrInvalidIdentifier)

	_, err = s.GetCell(ctx, schema.TableRegisters, 1, `name"`)
	assert.ErrorIs(t, err, store.ErrInvalidIdentifier)
}

func TestSchemaConstraints(t *testing.T) {
	ctx := context.Background()
	s, err := store.OpenMemory(ctx)
	require.NoError(t, err)
	defer s.Close()
	regID, _ := seed(t, s)
	blockID, err := s.FindRowID(ctx, schema.TableAddressBlocks, schema.ColName, "ctrl")
	require.NoError(t, err)

	w, err := s.Writer()
	require.NoError(t, err)

	t.Run("zero size rejected", func(t *testing.T) {
		_, err := w.Insert(ctx, schema.TableRegisters, map[string]any{
			"addressBlock_id": blockID, "name": "bad", "addressOffset": "0x8", "size": 0,
		})
		assert.Error(t, err)
	})

	t.Run("unknown access rejected", func(t *testing.T) {
		_, err := w.Insert(ctx, schema.TableRegisters, map[string]any{
			"addressBlock_id": blockID, "name": "bad", "addressOffset": "0x8", "access": "sometimes",
		})
		assert.Error(t, err)
	})

	t.Run("duplicate enumeration rejected", func(t *testing.T) {
		fid, err := s.FindRowID(ctx, schema.TableFields, schema.ColName, "system_ready")
		require.NoError(t, err)
		_, err = w.Insert(ctx, schema.TableEnumerations, map[string]any{"field_id": fid, "name": "ready", "value": "1"})
		require.NoError(t, err)
		_, err = w.Insert(ctx, schema.TableEnumerations, map[string]any{"field_id": fid, "name": "ready", "value": "0"})
		assert.Error(t, err)
	})

	t.Run("missing parent rejected", func(t *testing.T) {
		_, err := w.Insert(ctx, schema.TableFields, map[string]any{
			"register_id": 4242, "name": "orphan", "bitOffset": 0, "bitWidth": 1,
		})
		assert.Error(t, err)
	})

	t.Run("delete cascades", func(t *testing.T) {
		require.NoError(t, w.Delete(ctx, schema.TableRegisters, regID))
		rows, err := s.Rows(ctx, schema.TableFields, schema.ColRegisterID, regID, schema.ColName)
		require.NoError(t, err)
		assert.Empty(t, rows)
	})
}

func TestTxRollback(t *testing.T) {
	ctx := context.Background()
	s, err := store.OpenMemory(ctx)
	require.NoError(t, err)
	defer s.Close()

	err = s.Tx(ctx, func(w *store.Writer) error {
		if _, err := w.Insert(ctx, schema.TableMetadata, map[string]any{
			"vendor": "v", "library": "l", "name": "n", "version": "1",
		}); err != nil {
			return err
		}
		return assert.AnError
	})
	assert.ErrorIs(t, err, assert.AnError)

	rows, err := s.Rows(ctx, schema.TableMetadata, "", nil, schema.ColName)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestClosedStore(t *testing.T) {
	ctx := context.Background()
	s, err := store.OpenMemory(ctx)
	require.NoError(t, err)
	require.NoError(t, s.Close())
	require.NoError(t, s.Close())

	_, err = s.TableExists(ctx, schema.TableRegisters)
	assert.ErrorIs(t, err, store.ErrConnection)
	_, err = s.FindRowID(ctx, schema.TableRegisters, schema.ColName, "x")
	assert.ErrorIs(t, err, store.ErrConnection)
	_, err = s.GetCell(ctx, schema.TableRegisters, 1, schema.ColName)
	assert.ErrorIs(t, err, store.ErrConnection)
	_, err = s.Rows(ctx, schema.TableRegisters, "", nil)
	assert.ErrorIs(t, err, store.ErrConnection)
	_, err = s.Writer()
	assert.ErrorIs(t, err, store.ErrConnection)
}

func TestOpenFile(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "regs.db")

	_, err := store.OpenExisting(ctx, path)
	assert.ErrorIs(t, err, store.ErrConnection)

	s, err := store.Open(ctx, path)
	require.NoError(t, err)
	require.NoError(t, s.Init(ctx))
	seed(t, s)
	require.NoError(t, s.Close())

	ro, err := store.OpenReadOnly(ctx, path)
	require.NoError(t, err)
	defer ro.Close()
	assert.Equal(t, path, ro.Path())

	id, err := ro.FindRowID(ctx, schema.TableRegisters, schema.ColName, "status_register")
	require.NoError(t, err)
	assert.Positive(t, id)
}
