package fixture

import (
	"context"
	"fmt"
	"strconv"

	"github.com/regdb/regdb/pkg/schema"
	"github.com/regdb/regdb/pkg/store"
)

// Export reads the named component back into a Description. Supporting
// tables other than parameters are not exported.
func Export(ctx context.Context, repo store.Repository, component string) (*Description, error) {
	metaID, err := repo.FindRowID(ctx, schema.TableMetadata, schema.ColName, component)
	if err != nil {
		return nil, fmt.Errorf("export %s: %w", component, err)
	}

	meta, err := repo.Rows(ctx, schema.TableMetadata, "id", metaID,
		schema.ColVendor, schema.ColLibrary, schema.ColName, schema.ColVersion,
		schema.ColDescription, schema.ColNamespace, schema.ColSchemaVersion)
	if err != nil {
		return nil, fmt.Errorf("export %s: %w", component, err)
	}
	if len(meta) == 0 {
		return nil, fmt.Errorf("export %s: %w", component, store.ErrNotFound)
	}
	m := meta[0]
	d := &Description{
		Component: Component{
			Vendor:        m.Get(schema.ColVendor).Text,
			Library:       m.Get(schema.ColLibrary).Text,
			Name:          m.Get(schema.ColName).Text,
			Version:       m.Get(schema.ColVersion).Text,
			Description:   m.Get(schema.ColDescription).Text,
			Namespace:     m.Get(schema.ColNamespace).Text,
			SchemaVersion: m.Get(schema.ColSchemaVersion).Text,
		},
	}

	e := exporter{ctx: ctx, repo: repo}
	if d.MemoryMaps, err = e.memoryMaps(metaID); err != nil {
		return nil, fmt.Errorf("export %s: %w", component, err)
	}
	if d.Parameters, err = e.parameters(metaID); err != nil {
		return nil, fmt.Errorf("export %s: %w", component, err)
	}
	return d, nil
}

type exporter struct {
	ctx  context.Context
	repo store.Repository
}

func (e exporter) memoryMaps(metaID int64) ([]MemoryMap, error) {
	rows, err := e.repo.Rows(e.ctx, schema.TableMemoryMaps, schema.ColMetadataID, metaID,
		schema.ColName, schema.ColDescription, schema.ColAddressUnitBits, schema.ColEndianness)
	if err != nil {
		return nil, err
	}
	out := make([]MemoryMap, 0, len(rows))
	for _, r := range rows {
		mm := MemoryMap{
			Name:            r.Get(schema.ColName).Text,
			Description:     r.Get(schema.ColDescription).Text,
			AddressUnitBits: atoi(r.Get(schema.ColAddressUnitBits)),
			Endianness:      r.Get(schema.ColEndianness).Text,
		}
		if mm.AddressBlocks, err = e.blocks(r.ID); err != nil {
			return nil, err
		}
		out = append(out, mm)
	}
	return out, nil
}

func (e exporter) blocks(mapID int64) ([]AddressBlock, error) {
	rows, err := e.repo.Rows(e.ctx, schema.TableAddressBlocks, schema.ColMemoryMapID, mapID,
		schema.ColName, schema.ColDescription, schema.ColBaseAddress, schema.ColRange,
		schema.ColWidth, schema.ColUsage, schema.ColAccess)
	if err != nil {
		return nil, err
	}
	out := make([]AddressBlock, 0, len(rows))
	for _, r := range rows {
		b := AddressBlock{
			Name:        r.Get(schema.ColName).Text,
			Description: r.Get(schema.ColDescription).Text,
			BaseAddress: r.Get(schema.ColBaseAddress).Text,
			Range:       r.Get(schema.ColRange).Text,
			Width:       atoi(r.Get(schema.ColWidth)),
			Usage:       r.Get(schema.ColUsage).Text,
			Access:      r.Get(schema.ColAccess).Text,
		}
		if b.Registers, err = e.registers(r.ID); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, nil
}

func (e exporter) registers(blockID int64) ([]Register, error) {
	rows, err := e.repo.Rows(e.ctx, schema.TableRegisters, schema.ColAddressBlockID, blockID,
		schema.ColName, schema.ColDescription, schema.ColAddressOffset, schema.ColSize,
		schema.ColAccess, schema.ColVolatile, schema.ColResetValue, schema.ColResetMask,
		schema.ColRand, schema.ColDim)
	if err != nil {
		return nil, err
	}
	out := make([]Register, 0, len(rows))
	for _, r := range rows {
		reg := Register{
			Name:          r.Get(schema.ColName).Text,
			Description:   r.Get(schema.ColDescription).Text,
			AddressOffset: r.Get(schema.ColAddressOffset).Text,
			Size:          atoi(r.Get(schema.ColSize)),
			Access:        r.Get(schema.ColAccess).Text,
			Volatile:      r.Get(schema.ColVolatile).Text == "1",
			ResetValue:    r.Get(schema.ColResetValue).Text,
			ResetMask:     r.Get(schema.ColResetMask).Text,
			Rand:          r.Get(schema.ColRand).Text == "1",
			Dim:           atoi(r.Get(schema.ColDim)),
		}
		if reg.Fields, err = e.fields(r.ID); err != nil {
			return nil, err
		}
		out = append(out, reg)
	}
	return out, nil
}

func (e exporter) fields(regID int64) ([]Field, error) {
	rows, err := e.repo.Rows(e.ctx, schema.TableFields, schema.ColRegisterID, regID,
		schema.ColName, schema.ColDisplayName, schema.ColDescription, schema.ColBitOffset,
		schema.ColBitWidth, schema.ColAccess, schema.ColResetValue, schema.ColIsVolatile,
		schema.ColIsReserved, schema.ColIndividuallyAccessible, schema.ColRand, schema.ColMirror,
		schema.ColModifiedWriteValue, schema.ColReadAction)
	if err != nil {
		return nil, err
	}
	out := make([]Field, 0, len(rows))
	for _, r := range rows {
		f := Field{
			Name:                   r.Get(schema.ColName).Text,
			DisplayName:            r.Get(schema.ColDisplayName).Text,
			Description:            r.Get(schema.ColDescription).Text,
			BitOffset:              atoi(r.Get(schema.ColBitOffset)),
			BitWidth:               atoi(r.Get(schema.ColBitWidth)),
			Access:                 r.Get(schema.ColAccess).Text,
			ResetValue:             r.Get(schema.ColResetValue).Text,
			Volatile:               r.Get(schema.ColIsVolatile).Text == "1",
			Reserved:               r.Get(schema.ColIsReserved).Text == "1",
			IndividuallyAccessible: r.Get(schema.ColIndividuallyAccessible).Text == "1",
			Rand:                   r.Get(schema.ColRand).Text == "1",
			Mirror:                 r.Get(schema.ColMirror).Text == "1",
			ModifiedWriteValue:     r.Get(schema.ColModifiedWriteValue).Text,
			ReadAction:             r.Get(schema.ColReadAction).Text,
		}
		enums, err := e.repo.Rows(e.ctx, schema.TableEnumerations, schema.ColFieldID, r.ID,
			schema.ColName, schema.ColValue, schema.ColDisplayName, schema.ColDescription)
		if err != nil {
			return nil, err
		}
		for _, en := range enums {
			f.Enumerations = append(f.Enumerations, EnumValue{
				Name:        en.Get(schema.ColName).Text,
				Value:       en.Get(schema.ColValue).Text,
				DisplayName: en.Get(schema.ColDisplayName).Text,
				Description: en.Get(schema.ColDescription).Text,
			})
		}
		out = append(out, f)
	}
	return out, nil
}

func (e exporter) parameters(metaID int64) ([]Parameter, error) {
	rows, err := e.repo.Rows(e.ctx, schema.TableParameters, schema.ColMetadataID, metaID,
		schema.ColName, schema.ColValue, "type", schema.ColDescription)
	if err != nil {
		return nil, err
	}
	out := make([]Parameter, 0, len(rows))
	for _, r := range rows {
		out = append(out, Parameter{
			Name:        r.Get(schema.ColName).Text,
			Value:       r.Get(schema.ColValue).Text,
			Type:        r.Get("type").Text,
			Description: r.Get(schema.ColDescription).Text,
		})
	}
	return out, nil
}

func atoi(c store.Cell) int {
	n, _ := strconv.Atoi(c.Text)
	return n
}
