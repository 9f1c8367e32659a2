package app

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	sq "github.com/Masterminds/squirrel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bgunnarsson/usuarios/internal/config"
	"github.com/bgunnarsson/usuarios/internal/db/sqlite"
	"github.com/bgunnarsson/usuarios/internal/usuarios"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// testConfig points both programs at files under a temp dir, keeping the
// default split between init and report stores.
func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Database.InitDSN = filepath.Join(dir, config.DefaultInitDSN)
	cfg.Database.ReportDSN = filepath.Join(dir, config.DefaultReportDSN)
	return cfg
}

// prepareReportStore writes the store the reports expect: usuarios with a
// sex column.
func prepareReportStore(t *testing.T, path string, rows [][3]any) {
	t.Helper()
	conn, err := sqlite.Open(path)
	require.NoError(t, err)
	defer conn.Close()

	ctx := context.Background()
	_, err = conn.Exec(ctx, sq.Expr(`
		CREATE TABLE usuarios (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			nombre TEXT NOT NULL,
			edad INTEGER NOT NULL,
			sex TEXT)`))
	require.NoError(t, err)
	for _, r := range rows {
		_, err := conn.Exec(ctx, conn.Builder().
			Insert("usuarios").
			Columns("nombre", "edad", "sex").
			Values(r[0], r[1], r[2]))
		require.NoError(t, err)
	}
}

var fiveUsers = [][3]any{
	{"Juan", 20, "M"},
	{"Ana", 30, "F"},
	{"Luis", 30, "M"},
	{"Marta", 40, "F"},
	{"Pedro", 25, "M"},
}

func TestRunInitPrintsTable(t *testing.T) {
	cfg := testConfig(t)
	ctx := context.Background()

	var out bytes.Buffer
	require.NoError(t, RunInit(ctx, cfg, discard(), &out))
	assert.Equal(t, "(1, 'Juan', 25)\n(2, 'Ana', 30)\n", out.String())

	out.Reset()
	require.NoError(t, RunInit(ctx, cfg, discard(), &out))
	assert.Equal(t,
		"(1, 'Juan', 25)\n(2, 'Ana', 30)\n(3, 'Juan', 25)\n(4, 'Ana', 30)\n",
		out.String())
}

func TestRunCount(t *testing.T) {
	cfg := testConfig(t)
	prepareReportStore(t, cfg.Database.ReportDSN, fiveUsers)

	var out bytes.Buffer
	require.NoError(t, RunCount(context.Background(), cfg, discard(), &out))
	assert.Equal(t, "Género: F, Cantidad: 2\nGénero: M, Cantidad: 3\n", out.String())
}

func TestRunAverage(t *testing.T) {
	cfg := testConfig(t)
	prepareReportStore(t, cfg.Database.ReportDSN, fiveUsers)

	var out bytes.Buffer
	require.NoError(t, RunAverage(context.Background(), cfg, discard(), &out))
	assert.Equal(t,
		"Género: F, Promedio de Edad: 35.00 años\nGénero: M, Promedio de Edad: 25.00 años\n",
		out.String())
}

func TestRunTableFormat(t *testing.T) {
	cfg := testConfig(t)
	cfg.Output.Format = "table"
	prepareReportStore(t, cfg.Database.ReportDSN, fiveUsers)

	var out bytes.Buffer
	require.NoError(t, RunCount(context.Background(), cfg, discard(), &out))
	assert.Contains(t, out.String(), "| Género | Cantidad |")
	assert.Contains(t, out.String(), "| M      | 3        |")
}

func TestReportsDoNotReadInitStore(t *testing.T) {
	cfg := testConfig(t)
	ctx := context.Background()
	require.NoError(t, RunInit(ctx, cfg, discard(), io.Discard))

	err := RunCount(ctx, cfg, discard(), io.Discard)
	assert.ErrorIs(t, err, usuarios.ErrTableMissing)
}

func TestReportsNeedSexColumn(t *testing.T) {
	cfg := testConfig(t)
	cfg.Database.ReportDSN = cfg.Database.InitDSN
	ctx := context.Background()
	require.NoError(t, RunInit(ctx, cfg, discard(), io.Discard))

	var out bytes.Buffer
	err := RunAverage(ctx, cfg, discard(), &out)
	assert.ErrorIs(t, err, usuarios.ErrColumnMissing)
	assert.Empty(t, out.String(), "no partial output")
}

func TestWithStorePropagatesError(t *testing.T) {
	cfg := testConfig(t)
	boom := errors.New("boom")

	var called bool
	err := WithStore(context.Background(), cfg, discard(), cfg.Database.InitDSN, func(*usuarios.Store) error {
		called = true
		return boom
	})
	assert.True(t, called)
	assert.ErrorIs(t, err, boom)

	// the handle was released, the file opens again
	require.NoError(t, RunInit(context.Background(), cfg, discard(), io.Discard))
}

func TestOpenDBUnknownDriver(t *testing.T) {
	_, err := OpenDB("oracle", "x")
	assert.EqualError(t, err, `unsupported driver "oracle"`)
}

func TestReportTitle(t *testing.T) {
	assert.Equal(t, "Cantidad por género", ReportCount.Title())
	assert.Equal(t, "Promedio de edad por género", ReportAverage.Title())
	assert.Equal(t, "usuarios", ReportInit.Title())
}

func TestNewLogger(t *testing.T) {
	cfg := config.Default()
	cfg.Logging.Format = "json"
	cfg.Logging.Level = "info"

	var buf bytes.Buffer
	logger := NewLogger(cfg, &buf)
	logger.Debug("hidden")
	logger.Info("shown", "k", "v")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.True(t, strings.HasPrefix(out, "{"))
	assert.Contains(t, out, `"msg":"shown"`)
}
