// Package usuarios holds the operations on the usuarios table: creating and
// seeding it, dumping it, and the per-sex count and age reports.
package usuarios

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/bgunnarsson/usuarios/internal/db"
)

const (
	Table     = "usuarios"
	SexColumn = "sex"
)

type Usuario struct {
	ID     int64  `db:"id"`
	Nombre string `db:"nombre"`
	Edad   int64  `db:"edad"`
}

// GroupCount is one row of the count report. Sex is NULL for rows without a
// value.
type GroupCount struct {
	Sex   sql.NullString `db:"sex"`
	Count int64          `db:"cantidad"`
}

// GroupAverage is one row of the age report. Avg follows the store's AVG
// semantics and is invalid when the store returns NULL.
type GroupAverage struct {
	Sex sql.NullString  `db:"sex"`
	Avg sql.NullFloat64 `db:"promedio_edad"`
}

// Seed is the fixed pair of rows the initializer inserts on every run.
var Seed = []Usuario{
	{Nombre: "Juan", Edad: 25},
	{Nombre: "Ana", Edad: 30},
}

type Store struct {
	conn *db.Conn
}

func NewStore(conn *db.Conn) *Store {
	return &Store{conn: conn}
}

func schemaDDL(dialect string) (string, error) {
	switch dialect {
	case "sqlite":
		return `CREATE TABLE IF NOT EXISTS usuarios (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			nombre TEXT NOT NULL,
			edad INTEGER NOT NULL)`, nil
	case "postgres":
		return `CREATE TABLE IF NOT EXISTS usuarios (
			id SERIAL PRIMARY KEY,
			nombre TEXT NOT NULL,
			edad INTEGER NOT NULL)`, nil
	case "mysql":
		return `CREATE TABLE IF NOT EXISTS usuarios (
			id INTEGER PRIMARY KEY AUTO_INCREMENT,
			nombre TEXT NOT NULL,
			edad INTEGER NOT NULL)`, nil
	case "mssql":
		return `IF OBJECT_ID(N'usuarios', N'U') IS NULL
			CREATE TABLE usuarios (
				id INT IDENTITY(1,1) PRIMARY KEY,
				nombre NVARCHAR(MAX) NOT NULL,
				edad INT NOT NULL)`, nil
	default:
		return "", fmt.Errorf("%w %q", ErrUnsupportedDialect, dialect)
	}
}

// avgExpr keeps AVG fractional; SQL Server averages INT columns as INT.
func avgExpr(dialect string) string {
	if dialect == "mssql" {
		return "AVG(CAST(edad AS FLOAT)) AS promedio_edad"
	}
	return "AVG(edad) AS promedio_edad"
}

// EnsureSchema creates the usuarios table if it does not exist yet.
func (s *Store) EnsureSchema(ctx context.Context) error {
	ddl, err := schemaDDL(s.conn.Dialect().Name())
	if err != nil {
		return err
	}
	if _, err := s.conn.Exec(ctx, sq.Expr(ddl)); err != nil {
		return fmt.Errorf("create table %s: %w", Table, err)
	}
	return nil
}

// Insert adds rows unconditionally and commits once. Running it twice with
// the same rows stores them twice.
func (s *Store) Insert(ctx context.Context, rows ...Usuario) error {
	return s.conn.Transaction(ctx, func(tx *db.Conn) error {
		for _, u := range rows {
			stmt := tx.Builder().
				Insert(Table).
				Columns("nombre", "edad").
				Values(u.Nombre, u.Edad)
			if _, err := tx.Exec(ctx, stmt); err != nil {
				return fmt.Errorf("insert %s: %w", u.Nombre, err)
			}
		}
		return nil
	})
}

// Initialize ensures the table and inserts Seed.
func (s *Store) Initialize(ctx context.Context) error {
	if err := s.EnsureSchema(ctx); err != nil {
		return err
	}
	return s.Insert(ctx, Seed...)
}

// Dump returns every row and column of the table in store order.
func (s *Store) Dump(ctx context.Context) (*db.Rows, error) {
	return s.conn.Query(ctx, s.conn.Builder().Select("*").From(Table))
}

// CheckReportable verifies the reports can run: the table must exist and
// carry a sex column. Neither is created by Initialize.
func (s *Store) CheckReportable(ctx context.Context) error {
	ok, err := s.conn.HasTable(ctx, Table)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %s", ErrTableMissing, Table)
	}

	ok, err = s.conn.HasColumn(ctx, Table, SexColumn)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %s.%s", ErrColumnMissing, Table, SexColumn)
	}
	return nil
}

// CountBySex returns one row per distinct sex value, in the store's grouping
// order.
func (s *Store) CountBySex(ctx context.Context) ([]GroupCount, error) {
	stmt := s.conn.Builder().
		Select(SexColumn, "COUNT(*) AS cantidad").
		From(Table).
		GroupBy(SexColumn)

	var out []GroupCount
	if err := s.conn.Select(ctx, &out, stmt); err != nil {
		return nil, err
	}
	return out, nil
}

// AverageAgeBySex returns the mean edad per distinct sex value, in the
// store's grouping order.
func (s *Store) AverageAgeBySex(ctx context.Context) ([]GroupAverage, error) {
	stmt := s.conn.Builder().
		Select(SexColumn, avgExpr(s.conn.Dialect().Name())).
		From(Table).
		GroupBy(SexColumn)

	var out []GroupAverage
	if err := s.conn.Select(ctx, &out, stmt); err != nil {
		return nil, err
	}
	return out, nil
}
