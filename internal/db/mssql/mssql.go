package mssql

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/microsoft/go-mssqldb"
	"github.com/microsoft/go-mssqldb/azuread"

	"github.com/bgunnarsson/usuarios/internal/db"
)

// Dialect is the SQL Server flavour of db.Dialect. The driver name depends on
// the DSN, so it is carried per value.
type Dialect struct {
	driver string
}

func (d Dialect) Name() string                    { return "mssql" }
func (Dialect) Placeholder() sq.PlaceholderFormat { return sq.AtP }

func (d Dialect) DriverName() string {
	if d.driver == "" {
		return "sqlserver"
	}
	return d.driver
}

// Open opens a MSSQL connection.
// If the DSN contains "fedauth=", we use the Azure AD driver (azuresql)
// so things like ActiveDirectoryInteractive / AzCli work.
func Open(dsn string, opts ...db.Option) (*db.Conn, error) {
	if dsn == "" {
		return nil, fmt.Errorf("empty mssql DSN")
	}

	driverName := "sqlserver"
	if strings.Contains(strings.ToLower(dsn), "fedauth=") {
		driverName = azuread.DriverName // "azuresql"
	}

	sqldb, err := sql.Open(driverName, dsn)
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

	return db.New(sqldb, Dialect{driver: driverName}, opts...), nil
}

func (Dialect) ListTables(ctx context.Context, q db.Queryer) ([]string, error) {
	const stmt = `
SELECT TABLE_SCHEMA + '.' + TABLE_NAME AS name
FROM INFORMATION_SCHEMA.TABLES
WHERE TABLE_TYPE = 'BASE TABLE'
ORDER BY TABLE_SCHEMA, TABLE_NAME;
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
	schema := "dbo"
	name := table
	if dot := strings.Index(table, "."); dot != -1 {
		schema = table[:dot]
		name = table[dot+1:]
	}

	const stmt = `
SELECT COLUMN_NAME, DATA_TYPE
FROM INFORMATION_SCHEMA.COLUMNS
WHERE TABLE_SCHEMA = @p1 AND TABLE_NAME = @p2
ORDER BY ORDINAL_POSITION;
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

func (Dialect) Normalize(dbType string, v any) any {
	switch x := v.(type) {
	case []byte:
		// NEVER string() binary; it wrecks the output.
		if strings.EqualFold(dbType, "uniqueidentifier") {
			return formatUniqueIdentifier(x)
		}
		return fmt.Sprintf("0x%x", x)
	case time.Time:
		return x.Format(time.RFC3339Nano)
	default:
		return x
	}
}

func formatUniqueIdentifier(b []byte) string {
	if len(b) != 16 {
		return fmt.Sprintf("%x", b)
	}

	return fmt.Sprintf("%02x%02x%02x%02x-%02x%02x-%02x%02x-%02x%02x-%02x%02x%02x%02x%02x%02x",
		b[3], b[2], b[1], b[0],
		b[5], b[4],
		b[7], b[6],
		b[8], b[9],
		b[10], b[11], b[12], b[13], b[14], b[15],
	)
}
