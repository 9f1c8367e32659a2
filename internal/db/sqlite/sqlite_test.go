package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bgunnarsson/usuarios/internal/db"
)

func TestOpenRejectsEmptyPath(t *testing.T) {
	_, err := Open("")
	assert.Error(t, err)
}

func TestOpenInMemory(t *testing.T) {
	conn, err := Open(":memory:")
	require.NoError(t, err)
	defer conn.Close()

	ctx := context.Background()
	_, err = conn.Exec(ctx, sq.Expr("CREATE TABLE t (x INTEGER)"))
	require.NoError(t, err)

	// single connection, so the table is still there
	tables, err := conn.ListTables(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"t"}, tables)
}

func TestListAndDescribe(t *testing.T) {
	conn, err := Open(filepath.Join(t.TempDir(), "store.db"))
	require.NoError(t, err)
	defer conn.Close()

	ctx := context.Background()
	_, err = conn.Exec(ctx, sq.Expr(`
		CREATE TABLE usuarios (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			nombre TEXT NOT NULL,
			edad INTEGER NOT NULL)`))
	require.NoError(t, err)
	_, err = conn.Exec(ctx, sq.Expr(`CREATE VIEW adultos AS SELECT * FROM usuarios WHERE edad >= 18`))
	require.NoError(t, err)

	tables, err := conn.ListTables(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"adultos", "usuarios"}, tables, "sqlite_sequence is hidden")

	cols, err := conn.DescribeTable(ctx, "usuarios")
	require.NoError(t, err)
	assert.Equal(t, []db.Column{
		{Name: "id", Type: "INTEGER"},
		{Name: "nombre", Type: "TEXT"},
		{Name: "edad", Type: "INTEGER"},
	}, cols)

	cols, err = conn.DescribeTable(ctx, "missing")
	require.NoError(t, err)
	assert.Empty(t, cols)
}

func TestForeignKeysEnabled(t *testing.T) {
	conn, err := Open(filepath.Join(t.TempDir(), "store.db"))
	require.NoError(t, err)
	defer conn.Close()

	rows, err := conn.Query(context.Background(), sq.Expr("PRAGMA foreign_keys"))
	require.NoError(t, err)
	require.Len(t, rows.Data, 1)
	assert.Equal(t, int64(1), rows.Data[0][0])
}

func TestConnLifetime(t *testing.T) {
	assert.Zero(t, connLifetime(":memory:"))
	assert.Zero(t, connLifetime("file::memory:?cache=shared"))
	assert.Zero(t, connLifetime("file:x.db?mode=memory"))
	assert.Equal(t, 5*time.Minute, connLifetime("mi_base_de_datos.db"))
}

func TestListTablesKeepsSqliteLookalikes(t *testing.T) {
	conn, err := Open(":memory:")
	require.NoError(t, err)
	defer conn.Close()

	ctx := context.Background()
	_, err = conn.Exec(ctx, sq.Expr("CREATE TABLE sqliteish (x INTEGER)"))
	require.NoError(t, err)
	_, err = conn.Exec(ctx, sq.Expr("CREATE TABLE Zeta (x INTEGER PRIMARY KEY AUTOINCREMENT)"))
	require.NoError(t, err)

	tables, err := conn.ListTables(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"sqliteish", "Zeta"}, tables)
}

func TestDescribeTableQuotedName(t *testing.T) {
	conn, err := Open(":memory:")
	require.NoError(t, err)
	defer conn.Close()

	ctx := context.Background()
	_, err = conn.Exec(ctx, sq.Expr(`CREATE TABLE "odd ""name""" (a TEXT, b REAL)`))
	require.NoError(t, err)

	cols, err := conn.DescribeTable(ctx, `odd "name"`)
	require.NoError(t, err)
	assert.Equal(t, []db.Column{{Name: "a", Type: "TEXT"}, {Name: "b", Type: "REAL"}}, cols)
}
