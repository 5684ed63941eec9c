package store

import (
	"context"
	"database/sql"
	"fmt"
	"maps"
	"slices"
	"strings"
)

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Writer inserts, updates and deletes rows. It is obtained from
// SQLite.Writer or inside SQLite.Tx.
type Writer struct {
	x execer
}

// Writer returns a Writer that executes directly on the store.
func (s *SQLite) Writer() (*Writer, error) {
	db, err := s.handle()
	if err != nil {
		return nil, err
	}
	return &Writer{x: db}, nil
}

// Tx runs fn inside a transaction. The transaction is committed when fn
// returns nil and rolled back otherwise.
func (s *SQLite) Tx(ctx context.Context, fn func(w *Writer) error) error {
	db, err := s.handle()
	if err != nil {
		return err
	}
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	if err := fn(&Writer{x: tx}); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Insert adds a row and returns its rowid. Columns are written in sorted
// order; nil values are stored as NULL.
func (w *Writer) Insert(ctx context.Context, table string, values map[string]any) (int64, error) {
	t, err := quoteIdent(table)
	if err != nil {
		return 0, err
	}
	cols := slices.Sorted(maps.Keys(values))
	quoted := make([]string, len(cols))
	args := make([]any, len(cols))
	for i, c := range cols {
		if quoted[i], err = quoteIdent(c); err != nil {
			return 0, err
		}
		args[i] = values[c]
	}

	var query string
	if len(cols) == 0 {
		query = fmt.Sprintf(`INSERT INTO %s DEFAULT VALUES`, t)
	} else {
		query = fmt.Sprintf(`INSERT INTO %s (%s) VALUES (%s)`, t,
			strings.Join(quoted, ", "),
			strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", "))
	}

	res, err := w.x.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("insert %s: %w", table, err)
	}
	return res.LastInsertId()
}

// Update sets columns on the row with the given rowid.
func (w *Writer) Update(ctx context.Context, table string, rowID int64, values map[string]any) error {
	t, err := quoteIdent(table)
	if err != nil {
		return err
	}
	if len(values) == 0 {
		return nil
	}
	cols := slices.Sorted(maps.Keys(values))
	sets := make([]string, len(cols))
	args := make([]any, 0, len(cols)+1)
	for i, c := range cols {
		q, err := quoteIdent(c)
		if err != nil {
			return err
		}
		sets[i] = q + " = ?"
		args = append(args, values[c])
	}
	args = append(args, rowID)

	query := fmt.Sprintf(`UPDATE %s SET %s WHERE rowid = ?`, t, strings.Join(sets, ", "))
	res, err := w.x.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update %s: %w", table, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s rowid %d", ErrNotFound, table, rowID)
	}
	return nil
}

// Delete removes the row with the given rowid. Children are removed by the
// schema's cascading foreign keys.
func (w *Writer) Delete(ctx context.Context, table string, rowID int64) error {
	t, err := quoteIdent(table)
	if err != nil {
		return err
	}
	res, err := w.x.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s WHERE rowid = ?`, t), rowID)
	if err != nil {
		return fmt.Errorf("delete %s: %w", table, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s rowid %d", ErrNotFound, table, rowID)
	}
	return nil
}
