package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"os"
	"regexp"
	"strings"
	"sync"

	_ "github.com/mattn/go-sqlite3"

	"github.com/regdb/regdb/pkg/schema"
)

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// quoteIdent validates and double-quotes a table or column name.
func quoteIdent(name string) (string, error) {
	if !identRe.MatchString(name) {
		return "", fmt.Errorf("%w: %q", ErrInvalidIdentifier, name)
	}
	return `"` + name + `"`, nil
}

// SQLite is a Repository backed by a single SQLite connection.
// It is safe for concurrent use, but all statements are serialized on the
// one connection.
type SQLite struct {
	db   *sql.DB
	path string

	mu     sync.RWMutex
	closed bool
}

// Compile-time interface satisfaction check.
var _ Repository = (*SQLite)(nil)

// Open opens the database at path, creating the file if needed. The schema is
// not applied; call Init for a fresh database.
func Open(ctx context.Context, path string) (*SQLite, error) {
	return open(ctx, path, false)
}

// OpenExisting opens the database at path and fails with ErrConnection if
// the file does not exist.
func OpenExisting(ctx context.Context, path string) (*SQLite, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrConnection, path, err)
	}
	return open(ctx, path, false)
}

// OpenReadOnly opens an existing database without write access.
func OpenReadOnly(ctx context.Context, path string) (*SQLite, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrConnection, path, err)
	}
	return open(ctx, path, true)
}

// OpenMemory opens an empty in-memory database with the schema applied.
func OpenMemory(ctx context.Context) (*SQLite, error) {
	s, err := open(ctx, MemoryPath, false)
	if err != nil {
		return nil, err
	}
	if err := s.Init(ctx); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

func open(ctx context.Context, path string, readOnly bool) (*SQLite, error) {
	q := url.Values{}
	q.Set("_foreign_keys", "on")
	if readOnly {
		q.Set("mode", "ro")
	}
	dsn := "file:" + path + "?" + q.Encode()

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConnection, err)
	}
	// One connection keeps :memory: databases coherent and gives the session
	// an exclusive handle.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: %s: %v", ErrConnection, path, err)
	}
	return &SQLite{db: db, path: path}, nil
}

// Path returns the path the store was opened with.
func (s *SQLite) Path() string {
	return s.path
}

// Init applies the register description schema.
func (s *SQLite) Init(ctx context.Context) error {
	db, err := s.handle()
	if err != nil {
		return err
	}
	return schema.Apply(ctx, db)
}

// handle returns the live database or ErrConnection once closed.
func (s *SQLite) handle() (*sql.DB, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed || s.db == nil {
		return nil, ErrConnection
	}
	return s.db, nil
}

// TableExists reports whether the named table is present.
func (s *SQLite) TableExists(ctx context.Context, table string) (bool, error) {
	db, err := s.handle()
	if err != nil {
		return false, err
	}
	var n int
	err = db.QueryRowContext(ctx,
		`SELECT count(*) FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("table exists %s: %w", table, err)
	}
	return n > 0, nil
}

// FindRowID returns the rowid of the first row whose column equals value.
func (s *SQLite) FindRowID(ctx context.Context, table, column string, value any) (int64, error) {
	db, err := s.handle()
	if err != nil {
		return 0, err
	}
	t, err := quoteIdent(table)
	if err != nil {
		return 0, err
	}
	c, err := quoteIdent(column)
	if err != nil {
		return 0, err
	}

	var id int64
	query := fmt.Sprintf(`SELECT rowid FROM %s WHERE %s = ? ORDER BY rowid LIMIT 1`, t, c)
	err = db.QueryRowContext(ctx, query, value).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("%w: %s.%s = %v", ErrNotFound, table, column, value)
	}
	if err != nil {
		return 0, fmt.Errorf("find rowid %s.%s: %w", table, column, err)
	}
	return id, nil
}

// GetCell returns one column of one row as text.
func (s *SQLite) GetCell(ctx context.Context, table string, rowID int64, column string) (Cell, error) {
	db, err := s.handle()
	if err != nil {
		return Null, err
	}
	t, err := quoteIdent(table)
	if err != nil {
		return Null, err
	}
	c, err := quoteIdent(column)
	if err != nil {
		return Null, err
	}

	var v sql.NullString
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE rowid = ?`, c, t)
	err = db.QueryRowContext(ctx, query, rowID).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return Null, fmt.Errorf("%w: %s rowid %d", ErrNotFound, table, rowID)
	}
	if err != nil {
		return Null, fmt.Errorf("get cell %s.%s: %w", table, column, err)
	}
	return Cell{Text: v.String, Valid: v.Valid}, nil
}

// Rows returns the selected columns of all rows matching column = value.
func (s *SQLite) Rows(ctx context.Context, table, column string, value any, columns ...string) ([]Row, error) {
	db, err := s.handle()
	if err != nil {
		return nil, err
	}
	t, err := quoteIdent(table)
	if err != nil {
		return nil, err
	}

	sel := make([]string, 0, len(columns)+1)
	sel = append(sel, "rowid")
	for _, col := range columns {
		q, err := quoteIdent(col)
		if err != nil {
			return nil, err
		}
		sel = append(sel, q)
	}

	query := fmt.Sprintf(`SELECT %s FROM %s`, strings.Join(sel, ", "), t)
	var args []any
	if column != "" {
		c, err := quoteIdent(column)
		if err != nil {
			return nil, err
		}
		query += fmt.Sprintf(` WHERE %s = ?`, c)
		args = append(args, value)
	}
	query += ` ORDER BY rowid`

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("rows %s: %w", table, err)
	}
	defer rows.Close()

	var out []Row
	for rows.Next() {
		var id int64
		vals := make([]sql.NullString, len(columns))
		dest := make([]any, 0, len(columns)+1)
		dest = append(dest, &id)
		for i := range vals {
			dest = append(dest, &vals[i])
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("rows %s: %w", table, err)
		}

		row := Row{ID: id, Cells: make(map[string]Cell, len(columns))}
		for i, col := range columns {
			row.Cells[col] = Cell{Text: vals[i].String, Valid: vals[i].Valid}
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows %s: %w", table, err)
	}
	return out, nil
}

// Close releases the database handle. It is safe to call more than once.
func (s *SQLite) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}
