package fixture

import (
	"context"
	"fmt"
	"time"

	"github.com/regdb/regdb/pkg/schema"
	"github.com/regdb/regdb/pkg/store"
)

// Transactor is implemented by stores that can run a write transaction.
type Transactor interface {
	Tx(ctx context.Context, fn func(w *store.Writer) error) error
}

// Seed writes d into the store in one transaction and returns the metadata
// rowid. sourceFile is recorded on the metadata row and may be empty.
func Seed(ctx context.Context, tx Transactor, d *Description, sourceFile string) (int64, error) {
	sum, err := d.Checksum()
	if err != nil {
		return 0, fmt.Errorf("checksum: %w", err)
	}

	var metaID int64
	err = tx.Tx(ctx, func(w *store.Writer) error {
		c := d.Component
		ns := c.Namespace
		if ns == "" {
			ns = schema.NamespaceIPXACT
		}
		id, err := w.Insert(ctx, schema.TableMetadata, map[string]any{
			schema.ColVendor:        c.Vendor,
			schema.ColLibrary:       c.Library,
			schema.ColName:          c.Name,
			schema.ColVersion:       c.Version,
			schema.ColDescription:   nullable(c.Description),
			schema.ColNamespace:     ns,
			schema.ColSchemaVersion: nullable(c.SchemaVersion),
			schema.ColCreated:       time.Now().UTC().Format(time.RFC3339),
			schema.ColSourceFile:    nullable(sourceFile),
			schema.ColChecksum:      sum,
		})
		if err != nil {
			return err
		}
		metaID = id

		for _, mm := range d.MemoryMaps {
			if err := seedMemoryMap(ctx, w, metaID, mm); err != nil {
				return err
			}
		}
		return seedSupporting(ctx, w, metaID, d)
	})
	if err != nil {
		return 0, fmt.Errorf("seeding %s: %w", d.Component.Name, err)
	}
	return metaID, nil
}

func seedMemoryMap(ctx context.Context, w *store.Writer, metaID int64, mm MemoryMap) error {
	mapID, err := w.Insert(ctx, schema.TableMemoryMaps, map[string]any{
		schema.ColMetadataID:      metaID,
		schema.ColName:            mm.Name,
		schema.ColDescription:     nullable(mm.Description),
		schema.ColAddressUnitBits: positive(mm.AddressUnitBits, 8),
		schema.ColEndianness:      nullable(mm.Endianness),
	})
	if err != nil {
		return err
	}

	for _, b := range mm.AddressBlocks {
		blockID, err := w.Insert(ctx, schema.TableAddressBlocks, map[string]any{
			schema.ColMemoryMapID: mapID,
			schema.ColName:        b.Name,
			schema.ColDescription: nullable(b.Description),
			schema.ColBaseAddress: b.BaseAddress,
			schema.ColRange:       b.Range,
			schema.ColWidth:       positive(b.Width, schema.DefaultRegisterWidth),
			schema.ColUsage:       nullable(b.Usage),
			schema.ColAccess:      nullable(b.Access),
		})
		if err != nil {
			return err
		}
		for _, r := range b.Registers {
			if err := seedRegister(ctx, w, blockID, r); err != nil {
				return err
			}
		}
	}
	return nil
}

func seedRegister(ctx context.Context, w *store.Writer, blockID int64, r Register) error {
	regID, err := w.Insert(ctx, schema.TableRegisters, map[string]any{
		schema.ColAddressBlockID: blockID,
		schema.ColName:           r.Name,
		schema.ColDescription:    nullable(r.Description),
		schema.ColAddressOffset:  r.AddressOffset,
		schema.ColSize:           positive(r.Size, schema.DefaultRegisterWidth),
		schema.ColAccess:         nullable(r.Access),
		schema.ColVolatile:       bit(r.Volatile),
		schema.ColResetValue:     nullable(r.ResetValue),
		schema.ColResetMask:      nullable(r.ResetMask),
		schema.ColRand:           bit(r.Rand),
		schema.ColDim:            positive(r.Dim, 1),
	})
	if err != nil {
		return err
	}

	for _, f := range r.Fields {
		fieldID, err := w.Insert(ctx, schema.TableFields, map[string]any{
			schema.ColRegisterID:             regID,
			schema.ColName:                   f.Name,
			schema.ColDisplayName:            nullable(f.DisplayName),
			schema.ColDescription:            nullable(f.Description),
			schema.ColBitOffset:              f.BitOffset,
			schema.ColBitWidth:               f.BitWidth,
			schema.ColAccess:                 nullable(f.Access),
			schema.ColResetValue:             nullable(f.ResetValue),
			schema.ColIsVolatile:             bit(f.Volatile),
			schema.ColIsReserved:             bit(f.Reserved),
			schema.ColIndividuallyAccessible: bit(f.IndividuallyAccessible),
			schema.ColRand:                   bit(f.Rand),
			schema.ColMirror:                 bit(f.Mirror),
			schema.ColModifiedWriteValue:     nullable(f.ModifiedWriteValue),
			schema.ColReadAction:             nullable(f.ReadAction),
		})
		if err != nil {
			return err
		}
		for _, e := range f.Enumerations {
			if _, err := w.Insert(ctx, schema.TableEnumerations, map[string]any{
				schema.ColFieldID:     fieldID,
				schema.ColName:        e.Name,
				schema.ColValue:       e.Value,
				schema.ColDisplayName: nullable(e.DisplayName),
				schema.ColDescription: nullable(e.Description),
			}); err != nil {
				return err
			}
		}
	}
	return nil
}

func seedSupporting(ctx context.Context, w *store.Writer, metaID int64, d *Description) error {
	for _, bi := range d.BusInterfaces {
		if _, err := w.Insert(ctx, schema.TableBusInterfaces, map[string]any{
			schema.ColMetadataID: metaID,
			schema.ColName:       bi.Name,
			"busType":            nullable(bi.BusType),
			"abstractionType":    nullable(bi.AbstractionType),
			"interfaceMode":      nullable(bi.InterfaceMode),
		}); err != nil {
			return err
		}
	}
	for _, p := range d.Ports {
		if _, err := w.Insert(ctx, schema.TablePorts, map[string]any{
			schema.ColMetadataID:  metaID,
			schema.ColName:        p.Name,
			schema.ColDescription: nullable(p.Description),
			"direction":           nullable(p.Direction),
			schema.ColWidth:       positive(p.Width, 1),
			"isAddress":           bit(p.IsAddress),
			"isData":              bit(p.IsData),
		}); err != nil {
			return err
		}
	}
	for _, p := range d.Parameters {
		if _, err := w.Insert(ctx, schema.TableParameters, map[string]any{
			schema.ColMetadataID:  metaID,
			schema.ColName:        p.Name,
			schema.ColValue:       nullable(p.Value),
			"type":                nullable(p.Type),
			schema.ColDescription: nullable(p.Description),
		}); err != nil {
			return err
		}
	}
	for _, v := range d.VendorExtensions {
		if _, err := w.Insert(ctx, schema.TableVendorExtensions, map[string]any{
			schema.ColMetadataID: metaID,
			"vendorId":           nullable(v.VendorID),
			"key":                v.Key,
			schema.ColValue:      nullable(v.Value),
		}); err != nil {
			return err
		}
	}
	return nil
}

// nullable maps the empty string to NULL.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func positive(n, def int) int {
	if n <= 0 {
		return def
	}
	return n
}

func bit(b bool) int {
	if b {
		return 1
	}
	return 0
}
