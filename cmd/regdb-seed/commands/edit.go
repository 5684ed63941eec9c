package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"slices"
	"strings"

	"github.com/regdb/regdb/pkg/schema"
	"github.com/regdb/regdb/pkg/store"
)

// RunDelete removes a stored component. Its memory maps, blocks, registers
// and fields go with it through the schema's cascading foreign keys.
func RunDelete(ctx context.Context, dbPath, component string, logger *slog.Logger) error {
	repo, err := store.OpenExisting(ctx, dbPath)
	if err != nil {
		return err
	}
	defer repo.Close()

	id, err := repo.FindRowID(ctx, schema.TableMetadata, schema.ColName, component)
	if err != nil {
		return fmt.Errorf("component %s: %w", component, err)
	}
	if err := repo.Tx(ctx, func(w *store.Writer) error {
		return w.Delete(ctx, schema.TableMetadata, id)
	}); err != nil {
		return err
	}
	logger.Info("deleted component", "component", component, "metadata_id", id)
	return nil
}

// RunSet updates columns of one register. target is "block/register" or a
// bare register name; assignments are "column=value" pairs, where the value
// null stores NULL. Each change is printed as "column: old -> new".
func RunSet(ctx context.Context, dbPath, target string, assignments []string, w io.Writer) error {
	values, err := parseAssignments(assignments)
	if err != nil {
		return err
	}

	repo, err := store.OpenExisting(ctx, dbPath)
	if err != nil {
		return err
	}
	defer repo.Close()

	id, err := findRegister(ctx, repo, target)
	if err != nil {
		return err
	}

	old := make(map[string]string, len(values))
	for col := range values {
		c, err := repo.GetCell(ctx, schema.TableRegisters, id, col)
		if err != nil {
			return fmt.Errorf("%s.%s: %w", target, col, err)
		}
		old[col] = c.Or("NULL")
	}

	if err := repo.Tx(ctx, func(wr *store.Writer) error {
		return wr.Update(ctx, schema.TableRegisters, id, values)
	}); err != nil {
		return err
	}

	for _, col := range slices.Sorted(maps.Keys(values)) {
		next := "NULL"
		if v := values[col]; v != nil {
			next = fmt.Sprint(v)
		}
		fmt.Fprintf(w, "%s.%s: %s -> %s\n", target, col, old[col], next)
	}
	return nil
}

func parseAssignments(assignments []string) (map[string]any, error) {
	if len(assignments) == 0 {
		return nil, fmt.Errorf("no column=value assignments")
	}
	values := make(map[string]any, len(assignments))
	for _, a := range assignments {
		col, val, ok := strings.Cut(a, "=")
		if !ok || col == "" {
			return nil, fmt.Errorf("invalid assignment %q, want column=value", a)
		}
		switch col {
		case "id", schema.ColAddressBlockID:
			return nil, fmt.Errorf("column %s cannot be set", col)
		}
		if strings.EqualFold(val, "null") {
			values[col] = nil
		} else {
			values[col] = val
		}
	}
	return values, nil
}

// findRegister resolves "block/register" within its block, and a bare name
// to the first register with that name.
func findRegister(ctx context.Context, repo *store.SQLite, target string) (int64, error) {
	block, name, scoped := strings.Cut(target, "/")
	if !scoped {
		return repo.FindRowID(ctx, schema.TableRegisters, schema.ColName, target)
	}
	blockID, err := repo.FindRowID(ctx, schema.TableAddressBlocks, schema.ColName, block)
	if err != nil {
		return 0, fmt.Errorf("block %s: %w", block, err)
	}
	rows, err := repo.Rows(ctx, schema.TableRegisters, schema.ColAddressBlockID, blockID, schema.ColName)
	if err != nil {
		return 0, err
	}
	for _, r := range rows {
		if r.Get(schema.ColName).Text == name {
			return r.ID, nil
		}
	}
	return 0, fmt.Errorf("%w: register %s in block %s", store.ErrNotFound, name, block)
}
