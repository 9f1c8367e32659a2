package db

import (
	"context"
	"database/sql"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
)

type Column struct {
	Name string
	Type string
}

type Row []any

type Rows struct {
	Columns []Column
	Data    []Row
}

// Queryer is the read side shared by *sqlx.DB and *sqlx.Tx.
type Queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// Dialect carries everything that differs between backends.
type Dialect interface {
	// Name is the short backend name ("sqlite", "postgres", ...).
	Name() string
	// DriverName is the database/sql driver the backend registers.
	DriverName() string
	Placeholder() sq.PlaceholderFormat
	ListTables(ctx context.Context, q Queryer) ([]string, error)
	DescribeTable(ctx context.Context, q Queryer, table string) ([]Column, error)
	// Normalize turns a raw scanned value into something printable.
	Normalize(dbType string, v any) any
}

type executor interface {
	sqlx.ExtContext
	SelectContext(ctx context.Context, dest any, query string, args ...any) error
}

// Conn is a store handle bound to one dialect. Inside Transaction the same
// type is handed out with the transaction as its executor.
type Conn struct {
	db      *sqlx.DB
	exec    executor
	dialect Dialect
	obs     *observability
}

func New(sqldb *sql.DB, dialect Dialect, opts ...Option) *Conn {
	xdb := sqlx.NewDb(sqldb, dialect.DriverName())
	c := &Conn{
		db:      xdb,
		exec:    xdb,
		dialect: dialect,
		obs:     defaultObservability(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Conn) Dialect() Dialect {
	return c.dialect
}

// Builder returns a squirrel statement builder using the dialect's placeholders.
func (c *Conn) Builder() sq.StatementBuilderType {
	return sq.StatementBuilder.PlaceholderFormat(c.dialect.Placeholder())
}

func (c *Conn) Close() error {
	if c.db == nil {
		return nil
	}
	return c.db.Close()
}

func (c *Conn) ListTables(ctx context.Context) ([]string, error) {
	var out []string
	err := c.observe(ctx, "list_tables", "", func(ctx context.Context) error {
		var err error
		out, err = c.dialect.ListTables(ctx, c.exec)
		return err
	})
	return out, err
}

func (c *Conn) DescribeTable(ctx context.Context, table string) ([]Column, error) {
	var out []Column
	err := c.observe(ctx, "describe_table", "", func(ctx context.Context) error {
		var err error
		out, err = c.dialect.DescribeTable(ctx, c.exec, table)
		return err
	})
	return out, err
}

// HasTable reports whether table exists. Names compare case-insensitively.
func (c *Conn) HasTable(ctx context.Context, table string) (bool, error) {
	tables, err := c.ListTables(ctx)
	if err != nil {
		return false, err
	}
	for _, t := range tables {
		// postgres and mssql list schema-qualified names
		if strings.EqualFold(t, table) || strings.EqualFold(unqualify(t), table) {
			return true, nil
		}
	}
	return false, nil
}

func (c *Conn) HasColumn(ctx context.Context, table, column string) (bool, error) {
	cols, err := c.DescribeTable(ctx, table)
	if err != nil {
		return false, err
	}
	for _, col := range cols {
		if strings.EqualFold(col.Name, column) {
			return true, nil
		}
	}
	return false, nil
}

// Query runs a statement and returns every row as raw values, in the order
// the store produced them.
func (c *Conn) Query(ctx context.Context, stmt sq.Sqlizer) (*Rows, error) {
	sqlStr, args, err := stmt.ToSql()
	if err != nil {
		return nil, err
	}

	var out *Rows
	err = c.observe(ctx, "query", sqlStr, func(ctx context.Context) error {
		var err error
		out, err = c.query(ctx, sqlStr, args...)
		return err
	})
	return out, err
}

func (c *Conn) query(ctx context.Context, sqlStr string, args ...any) (*Rows, error) {
	rows, err := c.exec.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	colNames, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	colTypes, err := rows.ColumnTypes()
	if err != nil {
		return nil, err
	}

	header := make([]Column, len(colNames))
	for i, name := range colNames {
		typ := ""
		if i < len(colTypes) && colTypes[i] != nil {
			typ = strings.ToUpper(colTypes[i].DatabaseTypeName())
		}
		header[i] = Column{
			Name: name,
			Type: typ,
		}
	}

	var data []Row
	for rows.Next() {
		values := make([]any, len(colNames))
		ptrs := make([]any, len(colNames))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		for i, v := range values {
			values[i] = c.dialect.Normalize(header[i].Type, v)
		}
		data = append(data, Row(values))
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &Rows{
		Columns: header,
		Data:    data,
	}, nil
}

// Select scans the statement's rows into dest, a pointer to a slice of
// structs tagged with `db`.
func (c *Conn) Select(ctx context.Context, dest any, stmt sq.Sqlizer) error {
	sqlStr, args, err := stmt.ToSql()
	if err != nil {
		return err
	}
	return c.observe(ctx, "select", sqlStr, func(ctx context.Context) error {
		return c.exec.SelectContext(ctx, dest, sqlStr, args...)
	})
}

func (c *Conn) Exec(ctx context.Context, stmt sq.Sqlizer) (sql.Result, error) {
	sqlStr, args, err := stmt.ToSql()
	if err != nil {
		return nil, err
	}

	var res sql.Result
	err = c.observe(ctx, "exec", sqlStr, func(ctx context.Context) error {
		var err error
		res, err = c.exec.ExecContext(ctx, sqlStr, args...)
		return err
	})
	return res, err
}

// Transaction runs fn inside a transaction. It commits when fn returns nil and
// rolls back on error or panic. Nested calls reuse the outer transaction.
func (c *Conn) Transaction(ctx context.Context, fn func(tx *Conn) error) (err error) {
	if _, ok := c.exec.(*sqlx.Tx); ok {
		return fn(c)
	}

	tx, err := c.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	txConn := &Conn{
		db:      c.db,
		exec:    tx,
		dialect: c.dialect,
		obs:     c.obs,
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		} else if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = fn(txConn); err != nil {
		return err
	}
	return c.observe(ctx, "commit", "", func(context.Context) error {
		return tx.Commit()
	})
}

func unqualify(name string) string {
	if dot := strings.LastIndex(name, "."); dot != -1 {
		return name[dot+1:]
	}
	return name
}
