// Package materialize builds register models from a stored register
// description.
//
// Every call reads the store afresh; nothing is cached between calls.
// Malformed literals and layout conflicts are reported through the
// diagnostic logger and never abort materialization. Only a missing register
// or an unusable store handle is returned as an error.
package materialize

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/regdb/regdb/pkg/log"
	"github.com/regdb/regdb/pkg/model"
	"github.com/regdb/regdb/pkg/schema"
	"github.com/regdb/regdb/pkg/store"
)

// ErrNotFound is returned when a named register or block is not in the
// store. It is returned together with store.ErrNotFound.
var ErrNotFound = errors.New("not found")

// DefaultSize is the register size used when the stored size is missing or
// malformed.
const DefaultSize = schema.DefaultRegisterWidth

var fieldColumns = []string{
	schema.ColName,
	schema.ColDisplayName,
	schema.ColDescription,
	schema.ColBitOffset,
	schema.ColBitWidth,
	schema.ColAccess,
	schema.ColResetValue,
	schema.ColIsVolatile,
	schema.ColVolatile,
	schema.ColIsReserved,
	schema.ColIndividuallyAccessible,
	schema.ColRand,
	schema.ColMirror,
}

var enumColumns = []string{
	schema.ColName,
	schema.ColValue,
	schema.ColDescription,
}

// Option configures a Materializer.
type Option func(*Materializer)

// WithLogger sets the diagnostic logger passed to every built register.
func WithLogger(l log.Logger) Option {
	return func(m *Materializer) { m.logger = log.OrNoop(l) }
}

// Materializer turns stored rows into registers and blocks.
type Materializer struct {
	repo   store.Repository
	logger log.Logger
}

// New creates a Materializer reading from repo.
func New(repo store.Repository, opts ...Option) *Materializer {
	m := &Materializer{
		repo:   repo,
		logger: log.NoopLogger{},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// ConfigureRegister builds the named register. The result is Configuring,
// not locked. When the name is absent, no register is created and the error
// wraps ErrNotFound.
func (m *Materializer) ConfigureRegister(ctx context.Context, name string) (*model.Register, error) {
	id, err := m.resolve(ctx, schema.TableRegisters, name)
	if err != nil {
		return nil, err
	}
	reg := model.NewRegister(name, model.WithLogger(m.logger))
	if err := m.configure(ctx, reg, id); err != nil {
		return nil, err
	}
	return reg, nil
}

// Configure re-reads the named register into reg, replacing its fields.
// It fails with model.ErrLocked if reg is locked.
func (m *Materializer) Configure(ctx context.Context, reg *model.Register, name string) error {
	id, err := m.resolve(ctx, schema.TableRegisters, name)
	if err != nil {
		return err
	}
	return m.configure(ctx, reg, id)
}

// ConfigureRegisterIn builds register name of the named block. Register
// names are only unique within a block.
func (m *Materializer) ConfigureRegisterIn(ctx context.Context, block, name string) (*model.Register, error) {
	id, err := m.registerID(ctx, block, name)
	if err != nil {
		return nil, err
	}
	reg := model.NewRegister(name, model.WithLogger(m.logger))
	if err := m.configure(ctx, reg, id); err != nil {
		return nil, err
	}
	return reg, nil
}

// ConfigureIn re-reads register name of the named block into reg.
func (m *Materializer) ConfigureIn(ctx context.Context, reg *model.Register, block, name string) error {
	id, err := m.registerID(ctx, block, name)
	if err != nil {
		return err
	}
	return m.configure(ctx, reg, id)
}

// ConfigureBlock builds every register of the named address block. A
// register that cannot be configured is reported and skipped; only store
// failures abort the block.
func (m *Materializer) ConfigureBlock(ctx context.Context, name string) (*model.Block, error) {
	id, err := m.resolve(ctx, schema.TableAddressBlocks, name)
	if err != nil {
		return nil, err
	}

	block := model.NewBlock(name)
	if err := m.readBlock(ctx, block, id); err != nil {
		return nil, err
	}

	rows, err := m.repo.Rows(ctx, schema.TableRegisters, schema.ColAddressBlockID, id, schema.ColName)
	if err != nil {
		return nil, m.storeError(err, name)
	}
	for _, row := range rows {
		regName := row.Get(schema.ColName).Text
		reg := model.NewRegister(regName, model.WithLogger(m.logger))
		if err := m.configure(ctx, reg, row.ID); err != nil {
			if errors.Is(err, store.ErrConnection) {
				return nil, err
			}
			m.emit(log.SeverityWarning, log.CodeSkipped, regName, "", "register skipped: "+err.Error(),
				map[string]string{"block": name})
			continue
		}
		block.Add(reg)
	}
	return block, nil
}

// Blocks returns the names of all address blocks in rowid order.
func (m *Materializer) Blocks(ctx context.Context) ([]string, error) {
	rows, err := m.repo.Rows(ctx, schema.TableAddressBlocks, "", nil, schema.ColName)
	if err != nil {
		return nil, m.storeError(err, "")
	}
	return names(rows), nil
}

// Registers returns the register names of the named block, or of every
// block when block is empty.
func (m *Materializer) Registers(ctx context.Context, block string) ([]string, error) {
	column, value := "", any(nil)
	if block != "" {
		id, err := m.resolve(ctx, schema.TableAddressBlocks, block)
		if err != nil {
			return nil, err
		}
		column, value = schema.ColAddressBlockID, id
	}
	rows, err := m.repo.Rows(ctx, schema.TableRegisters, column, value, schema.ColName)
	if err != nil {
		return nil, m.storeError(err, block)
	}
	return names(rows), nil
}

func names(rows []store.Row) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.Get(schema.ColName).Text
	}
	return out
}

// resolve looks up a row by name.
func (m *Materializer) resolve(ctx context.Context, table, name string) (int64, error) {
	id, err := m.repo.FindRowID(ctx, table, schema.ColName, name)
	if err != nil {
		return 0, m.storeError(err, name)
	}
	return id, nil
}

// registerID resolves a register within a block. An empty block falls back
// to the first register with that name in the store.
func (m *Materializer) registerID(ctx context.Context, block, name string) (int64, error) {
	if block == "" {
		return m.resolve(ctx, schema.TableRegisters, name)
	}
	blockID, err := m.resolve(ctx, schema.TableAddressBlocks, block)
	if err != nil {
		return 0, err
	}
	rows, err := m.repo.Rows(ctx, schema.TableRegisters, schema.ColAddressBlockID, blockID, schema.ColName)
	if err != nil {
		return 0, m.storeError(err, name)
	}
	for _, r := range rows {
		if r.Get(schema.ColName).Text == name {
			return r.ID, nil
		}
	}
	return 0, m.storeError(fmt.Errorf("%w: %s in block %s", store.ErrNotFound, name, block), name)
}

// storeError maps a store error to the package errors and reports it.
func (m *Materializer) storeError(err error, name string) error {
	switch {
	case errors.Is(err, store.ErrNotFound):
		m.emit(log.SeverityError, log.CodeNotFound, name, "", err.Error(), nil)
		return fmt.Errorf("%w: %s: %w", ErrNotFound, name, err)
	case errors.Is(err, store.ErrConnection):
		m.emit(log.SeverityError, log.CodeConnection, name, "", err.Error(), nil)
		return err
	default:
		return fmt.Errorf("%w: %w", store.ErrConnection, err)
	}
}

// configure reads the register row id into reg.
func (m *Materializer) configure(ctx context.Context, reg *model.Register, id int64) error {
	name := reg.Name()
	cells, err := m.cells(ctx, schema.TableRegisters, id, name,
		schema.ColDescription,
		schema.ColAddressOffset,
		schema.ColSize,
		schema.ColAccess,
		schema.ColResetValue,
		schema.ColResetMask,
		schema.ColVolatile,
		schema.ColRand,
		schema.ColDim,
	)
	if err != nil {
		return err
	}

	p := parser{m: m, register: name}
	cfg := model.RegisterConfig{
		Description: cells[schema.ColDescription].Text,
		Offset:      p.sized("", schema.ColAddressOffset, cells[schema.ColAddressOffset], 0),
		Size:        p.size(cells[schema.ColSize]),
		RawAccess:   cells[schema.ColAccess].Text,
		Access:      model.NormalizeAccess(cells[schema.ColAccess].Text),
		Volatile:    flag(cells[schema.ColVolatile]),
		Rand:        flag(cells[schema.ColRand]),
		Dim:         p.integer("", schema.ColDim, cells[schema.ColDim], 1),
	}
	if c := cells[schema.ColResetValue]; c.Valid {
		cfg.Reset = p.sized("", schema.ColResetValue, c, 0)
		cfg.HasReset = true
	}
	cfg.ResetMask = p.sized("", schema.ColResetMask, cells[schema.ColResetMask], model.SizeMask(cfg.Size))

	// All rows are read before reg changes, so a failed read leaves it as it was.
	fields, err := m.fields(ctx, id, &p)
	if err != nil {
		return err
	}

	if err := reg.Configure(cfg); err != nil {
		return err
	}
	for _, f := range fields {
		if err := reg.AddField(f); err != nil {
			return err
		}
	}

	if !cfg.HasReset && len(fields) > 0 {
		if err := reg.SetReset(reg.ResetComposite()); err != nil {
			return err
		}
	}

	m.emit(log.SeverityInfo, log.CodeConfigured, name, "", "register configured", map[string]string{
		"fields":     strconv.Itoa(len(fields)),
		"used_bits":  strconv.Itoa(reg.UsedBits()),
		"total_bits": strconv.Itoa(reg.TotalBits()),
		"conflicts":  strconv.Itoa(len(reg.Conflicts())),
	})
	return nil
}

// fields reads every field of register id with one query, plus one
// enumeration query per field.
func (m *Materializer) fields(ctx context.Context, id int64, p *parser) ([]model.Field, error) {
	rows, err := m.repo.Rows(ctx, schema.TableFields, schema.ColRegisterID, id, fieldColumns...)
	if err != nil {
		return nil, m.storeError(err, p.register)
	}

	out := make([]model.Field, 0, len(rows))
	for _, row := range rows {
		name := row.Get(schema.ColName).Text
		access := row.Get(schema.ColAccess).Text
		f := model.Field{
			Name:                   name,
			DisplayName:            row.Get(schema.ColDisplayName).Text,
			Description:            row.Get(schema.ColDescription).Text,
			LSB:                    p.integer(name, schema.ColBitOffset, row.Get(schema.ColBitOffset), 0),
			Width:                  p.integer(name, schema.ColBitWidth, row.Get(schema.ColBitWidth), 0),
			Access:                 model.NormalizeAccess(access),
			RawAccess:              access,
			Reset:                  p.sized(name, schema.ColResetValue, row.Get(schema.ColResetValue), 0),
			Volatile:               flag(row.Get(schema.ColIsVolatile)) || flag(row.Get(schema.ColVolatile)),
			Reserved:               flag(row.Get(schema.ColIsReserved)),
			IndividuallyAccessible: flag(row.Get(schema.ColIndividuallyAccessible)),
			Rand:                   flag(row.Get(schema.ColRand)),
			Mirror:                 flag(row.Get(schema.ColMirror)),
		}

		enums, err := m.repo.Rows(ctx, schema.TableEnumerations, schema.ColFieldID, row.ID, enumColumns...)
		if err != nil {
			return nil, m.storeError(err, p.register)
		}
		for _, e := range enums {
			f.Enums = append(f.Enums, model.EnumValue{
				Name:        e.Get(schema.ColName).Text,
				Value:       p.sized(name, schema.ColValue, e.Get(schema.ColValue), 0),
				Description: e.Get(schema.ColDescription).Text,
			})
		}
		out = append(out, f)
	}
	return out, nil
}

// readBlock fills the block-level attributes.
func (m *Materializer) readBlock(ctx context.Context, b *model.Block, id int64) error {
	cells, err := m.cells(ctx, schema.TableAddressBlocks, id, b.Name,
		schema.ColDescription,
		schema.ColBaseAddress,
		schema.ColRange,
		schema.ColWidth,
		schema.ColAccess,
		schema.ColUsage,
	)
	if err != nil {
		return err
	}

	p := parser{m: m, register: b.Name}
	b.Description = cells[schema.ColDescription].Text
	b.BaseAddress = p.sized("", schema.ColBaseAddress, cells[schema.ColBaseAddress], 0)
	b.Range = p.sized("", schema.ColRange, cells[schema.ColRange], 0)
	b.Width = p.integer("", schema.ColWidth, cells[schema.ColWidth], DefaultSize)
	b.RawAccess = cells[schema.ColAccess].Text
	b.Access = model.NormalizeAccess(b.RawAccess)
	b.Usage = cells[schema.ColUsage].Text
	return nil
}

// cells reads several columns of one row through GetCell.
func (m *Materializer) cells(ctx context.Context, table string, id int64, name string, columns ...string) (map[string]store.Cell, error) {
	out := make(map[string]store.Cell, len(columns))
	for _, col := range columns {
		c, err := m.repo.GetCell(ctx, table, id, col)
		if err != nil {
			return nil, m.storeError(err, name)
		}
		out[col] = c
	}
	return out, nil
}

func (m *Materializer) emit(sev log.Severity, code log.Code, register, field, msg string, ctx map[string]string) {
	m.logger.Log(log.Event{
		Timestamp: time.Now(),
		Severity:  sev,
		Code:      code,
		Register:  register,
		Field:     field,
		Message:   msg,
		Context:   ctx,
	})
}

// flag reads a 0/1 column. NULL and anything but "1" or "true" is false.
func flag(c store.Cell) bool {
	return c.Valid && (c.Text == "1" || c.Text == "true")
}
