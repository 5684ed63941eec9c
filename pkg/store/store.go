// Package store is the persistence boundary between the register model and
// the relational register description.
//
// The materializer only ever reads through Repository. Writer exists for
// seeding fixtures and for tools that edit a description in place.
package store

import (
	"context"
	"errors"
)

// Errors returned by Repository implementations.
var (
	// ErrConnection is returned when the store cannot be opened, or when a
	// call is made on a handle that is closed or invalid.
	ErrConnection = errors.New("store: connection unavailable")

	// ErrNotFound is returned when a lookup matches no row.
	ErrNotFound = errors.New("store: not found")

	// ErrInvalidIdentifier is returned for table or column names that are not
	// plain SQL identifiers.
	ErrInvalidIdentifier = errors.New("store: invalid identifier")
)

// Cell is one column value as raw text. Valid is false for SQL NULL.
type Cell struct {
	Text  string
	Valid bool
}

// Text returns a valid cell holding s.
func Text(s string) Cell {
	return Cell{Text: s, Valid: true}
}

// Null is the NULL cell.
var Null = Cell{}

// Or returns the cell text, or def when the cell is NULL.
func (c Cell) Or(def string) string {
	if !c.Valid {
		return def
	}
	return c.Text
}

// Row is one table row as returned by Repository.Rows.
type Row struct {
	ID    int64
	Cells map[string]Cell
}

// Get returns the named column. Columns that were not selected read as NULL.
func (r Row) Get(column string) Cell {
	return r.Cells[column]
}

// Repository is the read surface the materializer depends on.
type Repository interface {
	// TableExists reports whether the named table is present.
	TableExists(ctx context.Context, table string) (bool, error)

	// FindRowID returns the rowid of the first row whose column equals value.
	// It returns ErrNotFound when no row matches.
	FindRowID(ctx context.Context, table, column string, value any) (int64, error)

	// GetCell returns one column of one row. It returns ErrNotFound when the
	// row does not exist.
	GetCell(ctx context.Context, table string, rowID int64, column string) (Cell, error)

	// Rows returns the selected columns of every row whose column equals
	// value, ordered by rowid. An empty column selects all rows.
	Rows(ctx context.Context, table, column string, value any, columns ...string) ([]Row, error)

	// Close releases the handle. Later calls return ErrConnection.
	Close() error
}
