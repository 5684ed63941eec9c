package materialize

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/regdb/regdb/pkg/log"
	"github.com/regdb/regdb/pkg/schema"
	"github.com/regdb/regdb/pkg/store"
	"github.com/regdb/regdb/pkg/store/mocks"
)

func anyArgs(cols []string) []any {
	out := make([]any, len(cols))
	for i, c := range cols {
		out[i] = c
	}
	return out
}

func TestConfigureBatchesFieldQuery(t *testing.T) {
	repo := mocks.NewMockRepository(t)
	ctx := context.Background()

	repo.EXPECT().FindRowID(mock.Anything, schema.TableRegisters, schema.ColName, "r").
		Return(int64(7), nil).Once()
	repo.EXPECT().GetCell(mock.Anything, schema.TableRegisters, int64(7), mock.Anything).
		RunAndReturn(func(_ context.Context, _ string, _ int64, column string) (store.Cell, error) {
			switch column {
			case schema.ColSize:
				return store.Text("abc"), nil
			case schema.ColAccess:
				return store.Text("RO"), nil
			case schema.ColAddressOffset:
				return store.Text("'h20"), nil
			}
			return store.Null, nil
		})
	repo.EXPECT().Rows(mock.Anything, schema.TableFields, schema.ColRegisterID, int64(7), anyArgs(fieldColumns)...).
		Return([]store.Row{
			{ID: 70, Cells: map[string]store.Cell{
				schema.ColName:      store.Text("f"),
				schema.ColBitOffset: store.Text("0"),
				schema.ColBitWidth:  store.Text("4"),
			}},
			{ID: 71, Cells: map[string]store.Cell{
				schema.ColName:       store.Text("g"),
				schema.ColBitOffset:  store.Text("4"),
				schema.ColBitWidth:   store.Text("4"),
				schema.ColIsReserved: store.Text("1"),
			}},
		}, nil).Once()
	repo.EXPECT().Rows(mock.Anything, schema.TableEnumerations, schema.ColFieldID, mock.Anything, anyArgs(enumColumns)...).
		Return(nil, nil).Times(2)

	c := log.NewCollector()
	reg, err := New(repo, WithLogger(c)).ConfigureRegister(ctx, "r")
	require.NoError(t, err)

	assert.Equal(t, DefaultSize, reg.TotalBits())
	assert.Equal(t, uint32(0x20), reg.Offset())
	assert.Equal(t, 8, reg.UsedBits())
	g, ok := reg.Field("g")
	require.True(t, ok)
	assert.True(t, g.Reserved)
	assert.Equal(t, 1, c.Count(log.CodeParseError))
}

func TestConfigureConnectionFailure(t *testing.T) {
	repo := mocks.NewMockRepository(t)
	repo.EXPECT().FindRowID(mock.Anything, schema.TableRegisters, schema.ColName, "r").
		Return(int64(0), store.ErrConnection).Once()

	_, err := New(repo).ConfigureRegister(context.Background(), "r")
	assert.ErrorIs(t, err, store.ErrConnection)
}

func TestConfigureRowVanished(t *testing.T) {
	repo := mocks.NewMockRepository(t)
	repo.EXPECT().FindRowID(mock.Anything, schema.TableRegisters, schema.ColName, "r").
		Return(int64(3), nil).Once()
	repo.EXPECT().GetCell(mock.Anything, schema.TableRegisters, int64(3), schema.ColDescription).
		Return(store.Null, store.ErrNotFound).Once()

	_, err := New(repo).ConfigureRegister(context.Background(), "r")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestConfigureFailedReadLeavesRegister(t *testing.T) {
	repo := mocks.NewMockRepository(t)
	ctx := context.Background()

	resized := false
	repo.EXPECT().FindRowID(mock.Anything, schema.TableRegisters, schema.ColName, "r").
		Return(int64(7), nil).Times(2)
	repo.EXPECT().GetCell(mock.Anything, schema.TableRegisters, int64(7), mock.Anything).
		RunAndReturn(func(_ context.Context, _ string, _ int64, column string) (store.Cell, error) {
			switch column {
			case schema.ColSize:
				if resized {
					return store.Text("16"), nil
				}
				return store.Text("32"), nil
			case schema.ColAddressOffset:
				if resized {
					return store.Text("'h40"), nil
				}
				return store.Text("'h20"), nil
			}
			return store.Null, nil
		})
	repo.EXPECT().Rows(mock.Anything, schema.TableFields, schema.ColRegisterID, int64(7), anyArgs(fieldColumns)...).
		Return([]store.Row{{ID: 70, Cells: map[string]store.Cell{
			schema.ColName:      store.Text("f"),
			schema.ColBitOffset: store.Text("0"),
			schema.ColBitWidth:  store.Text("4"),
		}}}, nil).Once()
	repo.EXPECT().Rows(mock.Anything, schema.TableEnumerations, schema.ColFieldID, int64(70), anyArgs(enumColumns)...).
		Return(nil, nil).Once()

	m := New(repo)
	reg, err := m.ConfigureRegister(ctx, "r")
	require.NoError(t, err)

	resized = true
	repo.EXPECT().Rows(mock.Anything, schema.TableFields, schema.ColRegisterID, int64(7), anyArgs(fieldColumns)...).
		Return(nil, store.ErrConnection).Once()

	err = m.Configure(ctx, reg, "r")
	assert.ErrorIs(t, err, store.ErrConnection)
	assert.Equal(t, uint32(0x20), reg.Offset())
	assert.Equal(t, 32, reg.TotalBits())
	assert.Len(t, reg.Fields(), 1)
}

func TestConfigureBlockReportsSkippedRegister(t *testing.T) {
	repo := mocks.NewMockRepository(t)
	ctx := context.Background()

	repo.EXPECT().FindRowID(mock.Anything, schema.TableAddressBlocks, schema.ColName, "ctrl").
		Return(int64(1), nil).Once()
	repo.EXPECT().GetCell(mock.Anything, schema.TableAddressBlocks, int64(1), mock.Anything).
		Return(store.Null, nil)
	repo.EXPECT().Rows(mock.Anything, schema.TableRegisters, schema.ColAddressBlockID, int64(1), schema.ColName).
		Return([]store.Row{
			{ID: 10, Cells: map[string]store.Cell{schema.ColName: store.Text("gone")}},
			{ID: 11, Cells: map[string]store.Cell{schema.ColName: store.Text("kept")}},
		}, nil).Once()
	repo.EXPECT().GetCell(mock.Anything, schema.TableRegisters, int64(10), mock.Anything).
		Return(store.Null, store.ErrNotFound)
	repo.EXPECT().GetCell(mock.Anything, schema.TableRegisters, int64(11), mock.Anything).
		Return(store.Null, nil)
	repo.EXPECT().Rows(mock.Anything, schema.TableFields, schema.ColRegisterID, int64(11), anyArgs(fieldColumns)...).
		Return(nil, nil).Once()

	c := log.NewCollector()
	block, err := New(repo, WithLogger(c)).ConfigureBlock(ctx, "ctrl")
	require.NoError(t, err)

	require.Equal(t, 1, block.Len())
	assert.Equal(t, "kept", block.Registers()[0].Name())

	skipped := c.Matching(func(e log.Event) bool { return e.Code == log.CodeSkipped })
	require.Len(t, skipped, 1)
	assert.Equal(t, "gone", skipped[0].Register)
	assert.Equal(t, "ctrl", skipped[0].Context["block"])
}
