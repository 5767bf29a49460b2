// Package store keeps normalized tables in file-backed SQLite databases.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/ukaji3/timetable-go/pkg/timetable/models"
	_ "modernc.org/sqlite"
)

const (
	// DriverModernc is the pure-Go SQLite driver.
	DriverModernc = "sqlite"
	// DriverCgo is the cgo SQLite driver.
	DriverCgo = "sqlite3"
)

// Options configures how a store is opened.
type Options struct {
	// Driver is DriverModernc or DriverCgo.
	Driver string
	// BusyTimeout is how long a writer waits on a locked database.
	BusyTimeout time.Duration
	// ReadOnly opens an existing database without write access.
	ReadOnly bool
}

// DefaultOptions returns default store options.
func DefaultOptions() Options {
	return Options{
		Driver:      DriverModernc,
		BusyTimeout: 5 * time.Second,
	}
}

// ReadOnlyOptions returns a copy of o with ReadOnly set.
func (o Options) ReadOnlyOptions() Options {
	o.ReadOnly = true
	return o
}

// Store is one SQLite database file.
type Store struct {
	db       *sqlx.DB
	path     string
	readOnly bool
}

// Open opens (creating when writable) the database at path.
func Open(path string, opts Options) (*Store, error) {
	if opts.Driver == "" {
		opts.Driver = DriverModernc
	}
	if opts.Driver != DriverModernc && opts.Driver != DriverCgo {
		return nil, fmt.Errorf("unsupported sqlite driver %q", opts.Driver)
	}

	if opts.ReadOnly {
		if _, err := os.Stat(path); err != nil {
			return nil, err
		}
	} else if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}

	db, err := sqlx.Open(opts.Driver, DSN(path, opts))
	if err != nil {
		return nil, err
	}
	// One connection: writes are serialized and the busy timeout applies.
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	return &Store{db: db, path: path, readOnly: opts.ReadOnly}, nil
}

// DSN builds the driver-specific data source name for path.
func DSN(path string, opts Options) string {
	ms := opts.BusyTimeout.Milliseconds()
	params := make([]string, 0, 2)
	switch opts.Driver {
	case DriverCgo:
		params = append(params, fmt.Sprintf("_busy_timeout=%d", ms))
	default:
		params = append(params, fmt.Sprintf("_pragma=busy_timeout(%d)", ms))
	}
	if opts.ReadOnly {
		params = append(params, "mode=ro")
	}
	return "file:" + escapePath(path) + "?" + strings.Join(params, "&")
}

func escapePath(p string) string {
	return strings.NewReplacer("%", "%25", "?", "%3f", "#", "%23", " ", "%20").Replace(filepath.ToSlash(p))
}

// DB exposes the underlying handle for read queries.
func (s *Store) DB() *sqlx.DB {
	return s.db
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// ReadOnly reports whether the store was opened without write access.
func (s *Store) ReadOnly() bool {
	return s.readOnly
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Replace fully replaces table name with t: schema and rows. The drop,
// create and inserts run in one transaction, so readers see either the old
// or the new table.
func (s *Store) Replace(ctx context.Context, name string, t *models.Table) (err error) {
	if strings.TrimSpace(name) == "" {
		return errors.New("empty table name")
	}
	if len(t.Columns) == 0 {
		return fmt.Errorf("table %q has no columns", name)
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, "DROP TABLE IF EXISTS "+QuoteIdent(name)); err != nil {
		return err
	}

	defs := make([]string, len(t.Columns))
	cols := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		typ := c.Type
		if typ == "" {
			typ = models.TypeText
		}
		cols[i] = QuoteIdent(c.Name)
		defs[i] = cols[i] + " " + string(typ)
	}
	if _, err = tx.ExecContext(ctx, "CREATE TABLE "+QuoteIdent(name)+" ("+strings.Join(defs, ", ")+")"); err != nil {
		return err
	}

	ph := strings.TrimRight(strings.Repeat("?,", len(cols)), ",")
	stmt, err := tx.PreparexContext(ctx, "INSERT INTO "+QuoteIdent(name)+" ("+strings.Join(cols, ", ")+") VALUES ("+ph+")")
	if err != nil {
		return err
	}
	defer stmt.Close()

	args := make([]any, len(cols))
	for i, row := range t.Rows {
		for j := range args {
			args[j] = nil
			if j < len(row) {
				args[j] = row[j]
			}
		}
		if _, err = stmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("insert row %d: %w", i+1, err)
		}
	}

	return tx.Commit()
}

// Read returns the full contents of table name.
func (s *Store) Read(ctx context.Context, name string) (*models.Table, error) {
	rows, err := s.db.QueryxContext(ctx, "SELECT * FROM "+QuoteIdent(name))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return ScanTable(name, rows)
}

// columnInfo is a row of PRAGMA table_info.
type columnInfo struct {
	Name string `db:"name"`
	Type string `db:"type"`
}

// Columns returns the declared columns of table name. It returns
// sql.ErrNoRows when the table does not exist.
func (s *Store) Columns(ctx context.Context, name string) ([]models.Column, error) {
	var infos []columnInfo
	if err := s.db.SelectContext(ctx, &infos, "SELECT name, type FROM pragma_table_info(?) ORDER BY cid", name); err != nil {
		return nil, err
	}
	if len(infos) == 0 {
		return nil, fmt.Errorf("table %q: %w", name, sql.ErrNoRows)
	}

	cols := make([]models.Column, len(infos))
	for i, info := range infos {
		cols[i] = models.Column{Name: info.Name, Type: columnType(info.Type)}
	}
	return cols, nil
}

// Tables lists user tables in name order.
func (s *Store) Tables(ctx context.Context) ([]string, error) {
	var names []string
	err := s.db.SelectContext(ctx, &names,
		`SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY name`)
	return names, err
}

// HasTable reports whether table name exists.
func (s *Store) HasTable(ctx context.Context, name string) (bool, error) {
	var n int
	if err := s.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?`, name); err != nil {
		return false, err
	}
	return n > 0, nil
}

// ScanTable drains rows into a table named name. Column types come from
// the declared result column types; undeclared columns are TEXT.
func ScanTable(name string, rows *sqlx.Rows) (*models.Table, error) {
	types, err := rows.ColumnTypes()
	if err != nil {
		return nil, err
	}

	t := &models.Table{Name: name, Columns: make([]models.Column, len(types)), Rows: [][]any{}}
	undeclared := make([]bool, len(types))
	for i, ct := range types {
		decl := ct.DatabaseTypeName()
		undeclared[i] = decl == ""
		t.Columns[i] = models.Column{Name: ct.Name(), Type: columnType(decl)}
	}

	for rows.Next() {
		values, err := rows.SliceScan()
		if err != nil {
			return nil, err
		}
		for i, v := range values {
			values[i] = normalizeValue(v)
		}
		t.Rows = append(t.Rows, values)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Expression columns have no declared type; use the first value.
	for i := range t.Columns {
		if undeclared[i] {
			t.Columns[i].Type = valueType(t.Rows, i)
		}
	}
	return t, nil
}

func valueType(rows [][]any, col int) models.ColumnType {
	for _, row := range rows {
		switch row[col].(type) {
		case nil:
			continue
		case int64:
			return models.TypeInteger
		case float64:
			return models.TypeFloat
		default:
			return models.TypeText
		}
	}
	return models.TypeText
}

// QuoteIdent quotes an SQL identifier.
func QuoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func columnType(decl string) models.ColumnType {
	switch strings.ToUpper(strings.TrimSpace(decl)) {
	case "INTEGER", "INT", "BIGINT":
		return models.TypeInteger
	case "REAL", "FLOAT", "DOUBLE":
		return models.TypeFloat
	default:
		return models.TypeText
	}
}

func normalizeValue(v any) any {
	switch x := v.(type) {
	case []byte:
		return string(x)
	case int:
		return int64(x)
	case int32:
		return int64(x)
	case float32:
		return float64(x)
	case time.Time:
		return x.Format(time.RFC3339)
	default:
		return v
	}
}
