package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bgunnarsson/usuarios/internal/config"
	"github.com/bgunnarsson/usuarios/internal/db"
	"github.com/bgunnarsson/usuarios/internal/db/mssql"
	"github.com/bgunnarsson/usuarios/internal/db/mysql"
	"github.com/bgunnarsson/usuarios/internal/db/postgres"
	"github.com/bgunnarsson/usuarios/internal/db/sqlite"
	"github.com/bgunnarsson/usuarios/internal/usuarios"
)

type Driver string

const (
	DriverSqlite   Driver = "sqlite"
	DriverPostgres Driver = "postgres"
	DriverMssql    Driver = "mssql"
	DriverMysql    Driver = "mysql"
)

// OpenDB is the central driver factory.
func OpenDB(driver Driver, dsn string, opts ...db.Option) (*db.Conn, error) {
	switch driver {
	case "", DriverSqlite:
		return sqlite.Open(dsn, opts...)
	case DriverPostgres:
		return postgres.Open(dsn, opts...)
	case DriverMssql:
		return mssql.Open(dsn, opts...)
	case DriverMysql:
		return mysql.Open(dsn, opts...)
	default:
		return nil, fmt.Errorf("unsupported driver %q", driver)
	}
}

func connOptions(cfg *config.Config, logger *slog.Logger) []db.Option {
	return []db.Option{
		db.WithLogger(logger),
		db.WithQueryLogging(cfg.Logging.Queries),
		db.WithDefaultTracer(),
		db.WithDefaultMeter(),
	}
}

// WithStore opens the store at dsn, hands it to fn and closes it on every
// return path. A close error is reported only when fn succeeded.
func WithStore(ctx context.Context, cfg *config.Config, logger *slog.Logger, dsn string, fn func(*usuarios.Store) error) (err error) {
	conn, err := OpenDB(Driver(cfg.Database.Driver), dsn, connOptions(cfg, logger)...)
	if err != nil {
		return fmt.Errorf("open %s: %w", dsn, err)
	}
	logger.DebugContext(ctx, "store opened", "driver", cfg.Database.Driver, "dsn", dsn)

	defer func() {
		if cerr := conn.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close %s: %w", dsn, cerr)
		}
		logger.DebugContext(ctx, "store closed", "dsn", dsn)
	}()

	return fn(usuarios.NewStore(conn))
}
