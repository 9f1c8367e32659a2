package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/go-sql-driver/mysql"

	"github.com/bgunnarsson/usuarios/internal/db"
)

type Dialect struct{}

func (Dialect) Name() string                      { return "mysql" }
func (Dialect) DriverName() string                { return "mysql" }
func (Dialect) Placeholder() sq.PlaceholderFormat { return sq.Question }

func Open(dsn string, opts ...db.Option) (*db.Conn, error) {
	if dsn == "" {
		return nil, fmt.Errorf("empty mysql DSN")
	}

	sqldb, err := sql.Open("mysql", dsn)
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
SELECT table_name
FROM information_schema.tables
WHERE table_type = 'BASE TABLE'
  AND table_schema = DATABASE()
ORDER BY table_name;
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

func (Dialect) DescribeTable(ctx context.Context, q db.Queryer, table string) ([]db.Column, error) {
	const stmt = `
SELECT column_name, data_type
FROM information_schema.columns
WHERE table_schema = DATABASE()
  AND table_name = ?
ORDER BY ordinal_position;
`
	rows, err := q.QueryContext(ctx, stmt, table)
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
		// MySQL returns TEXT/VARCHAR and DECIMAL as []byte
		return string(x)
	case time.Time:
		return x.Format(time.RFC3339Nano)
	default:
		return x
	}
}
