package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/jackc/pgx/v5/stdlib" // register pgx stdlib driver

	"github.com/bgunnarsson/usuarios/internal/db"
)

type Dialect struct{}

func (Dialect) Name() string                      { return "postgres" }
func (Dialect) DriverName() string                { return "pgx" }
func (Dialect) Placeholder() sq.PlaceholderFormat { return sq.Dollar }

func Open(dsn string, opts ...db.Option) (*db.Conn, error) {
	if dsn == "" {
		return nil, fmt.Errorf("empty postgres DSN")
	}

	sqldb, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}

	sqldb.SetMaxOpenConns(1)
	sqldb.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := sqldb.PingContext(ctx); err != nil {
		sqldb.Close()
		return nil, err
	}

	return db.New(sqldb, Dialect{}, opts...), nil
}

func (Dialect) ListTables(ctx context.Context, q db.Queryer) ([]string, error) {
	const stmt = `
SELECT table_schema || '.' || table_name AS name
FROM information_schema.tables
WHERE table_type = 'BASE TABLE'
  AND table_schema NOT IN ('pg_catalog', 'information_schema')
ORDER BY table_schema, table_name;
`
	rows, err := q.QueryContext(ctx, stmt)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		out = append(out, name)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// DescribeTable returns column name + data type.
// Accepts either "table" or "schema.table".
func (Dialect) DescribeTable(ctx context.Context, q db.Queryer, table string) ([]db.Column, error) {
	schema := "public"
	name := table
	if dot := strings.Index(table, "."); dot != -1 {
		schema = table[:dot]
		name = table[dot+1:]
	}

	const stmt = `
SELECT column_name, data_type
FROM information_schema.columns
WHERE table_schema = $1
  AND table_name = $2
ORDER BY ordinal_position;
`
	rows, err := q.QueryContext(ctx, stmt, schema, name)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cols []db.Column
	for rows.Next() {
		var colName, dataType string
		if err := rows.Scan(&colName, &dataType); err != nil {
			return nil, err
		}
		cols = append(cols, db.Column{
			Name: colName,
			Type: dataType,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return cols, nil
}

func (Dialect) Normalize(_ string, v any) any {
	switch x := v.(type) {
	case []byte:
		return string(x)
	case time.Time:
		return x.Format(time.RFC3339Nano)
	default:
		return x
	}
}
