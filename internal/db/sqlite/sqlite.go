package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "modernc.org/sqlite" // register driver

	"github.com/bgunnarsson/usuarios/internal/db"
)

// Dialect is the SQLite flavour of db.Dialect.
type Dialect struct{}

func (Dialect) Name() string                      { return "sqlite" }
func (Dialect) DriverName() string                { return "sqlite" }
func (Dialect) Placeholder() sq.PlaceholderFormat { return sq.Question }

// Open opens (creating if needed) the SQLite file at path. In-memory
// databases work too: the pool holds a single connection that is never
// recycled, so the data lives as long as the Conn.
func Open(path string, opts ...db.Option) (*db.Conn, error) {
	if path == "" {
		return nil, fmt.Errorf("empty sqlite path")
	}

	sqldb, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// One handle per run.
	sqldb.SetMaxOpenConns(1)
	sqldb.SetMaxIdleConns(1)
	sqldb.SetConnMaxLifetime(connLifetime(path))

	pragmas := []string{
		"PRAGMA foreign_keys = ON;",
		"PRAGMA busy_timeout = 5000;",
	}
	for _, p := range pragmas {
		if _, err := sqldb.Exec(p); err != nil {
			_ = sqldb.Close()
			return nil, err
		}
	}

	return db.New(sqldb, Dialect{}, opts...), nil
}

// connLifetime is zero (never retire) for in-memory databases, whose content
// dies with the connection.
func connLifetime(path string) time.Duration {
	if isMemory(path) {
		return 0
	}
	return 5 * time.Minute
}

func isMemory(path string) bool {
	return path == ":memory:" ||
		strings.HasPrefix(path, "file::memory:") ||
		strings.Contains(path, "mode=memory")
}

// ListTables returns user tables and views, case-insensitively sorted.
func (Dialect) ListTables(ctx context.Context, q db.Queryer) ([]string, error) {
	const stmt = `SELECT name FROM sqlite_schema
		WHERE type IN ('table', 'view') AND name NOT LIKE 'sqlite\_%' ESCAPE '\'
		ORDER BY name COLLATE NOCASE`
	return collect(ctx, q, stmt, func(rows *sql.Rows) (string, error) {
		var name string
		err := rows.Scan(&name)
		return name, err
	})
}

// DescribeTable lists the declared columns of table. Unknown tables yield no
// columns and no error.
func (Dialect) DescribeTable(ctx context.Context, q db.Queryer, table string) ([]db.Column, error) {
	const stmt = `SELECT name, type FROM pragma_table_info(?) ORDER BY cid`
	return collect(ctx, q, stmt, func(rows *sql.Rows) (db.Column, error) {
		var c db.Column
		err := rows.Scan(&c.Name, &c.Type)
		return c, err
	}, table)
}

func collect[T any](ctx context.Context, q db.Queryer, stmt string, scan func(*sql.Rows) (T, error), args ...any) ([]T, error) {
	rows, err := q.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []T
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// Normalize leaves values as scanned; TEXT already arrives as string and
// BLOBs stay []byte for the printer to decide on.
func (Dialect) Normalize(_ string, v any) any {
	return v
}
