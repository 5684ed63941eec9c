package inspect

import (
	"context"
	"fmt"
	"strings"
)

// Lister lists the blocks and registers of a store.
// This is implemented by materialize.Materializer.
type Lister interface {
	Blocks(ctx context.Context) ([]string, error)
	Registers(ctx context.Context, block string) ([]string, error)
}

// Catalog lists what a store describes, before anything is built.
type Catalog struct {
	lister Lister
}

// NewCatalog creates a catalog over the given lister.
func NewCatalog(lister Lister) *Catalog {
	return &Catalog{lister: lister}
}

// CatalogEntry is one address block and its register names.
type CatalogEntry struct {
	Block     string
	Registers []string
}

// Entries returns every block with its registers, in store order.
func (c *Catalog) Entries(ctx context.Context) ([]CatalogEntry, error) {
	blocks, err := c.lister.Blocks(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]CatalogEntry, 0, len(blocks))
	for _, b := range blocks {
		regs, err := c.lister.Registers(ctx, b)
		if err != nil {
			return nil, fmt.Errorf("block %s: %w", b, err)
		}
		out = append(out, CatalogEntry{Block: b, Registers: regs})
	}
	return out, nil
}

// Complete returns the register and block paths starting with prefix, for
// shell completion.
func (c *Catalog) Complete(ctx context.Context, prefix string) ([]string, error) {
	entries, err := c.Entries(ctx)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, e := range entries {
		if strings.HasPrefix(e.Block+"/", prefix) {
			out = append(out, e.Block+"/")
		}
		for _, r := range e.Registers {
			if strings.HasPrefix(r, prefix) {
				out = append(out, r)
			}
		}
	}
	return out, nil
}

// Format renders the catalog as an indented list.
func (c *Catalog) Format(entries []CatalogEntry, f *Formatter) string {
	var sb strings.Builder
	for _, e := range entries {
		sb.WriteString(e.Block)
		sb.WriteString("/\n")
		for _, r := range e.Registers {
			sb.WriteString(f.Indent(1, r))
			sb.WriteString("\n")
		}
	}
	return sb.String()
}
