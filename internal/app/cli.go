package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"

	"golang.org/x/term"

	"github.com/bgunnarsson/usuarios/internal/config"
	"github.com/bgunnarsson/usuarios/internal/telemetry"
)

// Main parses args for the program running r and returns its exit code.
// None of the flags are required.
func Main(r Report, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("usuarios-"+string(r), flag.ContinueOnError)
	fs.SetOutput(stderr)

	var (
		configPath  string
		dsn         string
		driver      string
		format      string
		interactive bool
		verbose     bool
		trace       bool
	)
	fs.StringVar(&configPath, "config", "", "YAML config file")
	fs.StringVar(&dsn, "db", "", "store path or DSN (overrides config)")
	fs.StringVar(&driver, "driver", "", "sqlite, postgres, mysql or mssql (overrides config)")
	fs.StringVar(&format, "format", "", "output format: lines or table (overrides config)")
	fs.BoolVar(&interactive, "i", false, "browse the result in a terminal table")
	fs.BoolVar(&verbose, "v", false, "debug logging to stderr")
	fs.BoolVar(&trace, "trace", false, "export spans and metrics as JSON to stderr")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if fs.NArg() > 0 {
		fmt.Fprintf(stderr, "usage: %s [flags]\n", fs.Name())
		fs.PrintDefaults()
		return 2
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintln(stderr, "error:", err)
		return 1
	}
	applyFlags(cfg, r, dsn, driver, format, verbose)
	if trace {
		cfg.Logging.Trace = true
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(stderr, "error:", err)
		return 1
	}

	logger := NewLogger(cfg, stderr)

	if cfg.Logging.Trace {
		shutdown, err := telemetry.Setup(stderr)
		if err != nil {
			fmt.Fprintln(stderr, "error:", err)
			return 1
		}
		defer func() {
			if err := shutdown(context.Background()); err != nil {
				logger.Warn("telemetry shutdown failed", "error", err)
			}
		}()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if interactive && isTerminal(stdout) {
		err = RunInteractive(ctx, cfg, logger, r)
	} else {
		err = Run(ctx, cfg, logger, r, stdout)
	}
	if err != nil {
		fmt.Fprintln(stderr, "error:", err)
		return 1
	}
	return 0
}

func applyFlags(cfg *config.Config, r Report, dsn, driver, format string, verbose bool) {
	if dsn != "" {
		if r == ReportInit {
			cfg.Database.InitDSN = dsn
		} else {
			cfg.Database.ReportDSN = dsn
		}
	}
	if driver != "" {
		cfg.Database.Driver = driver
	}
	if format != "" {
		cfg.Output.Format = format
	}
	if verbose {
		cfg.Logging.Level = "debug"
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
