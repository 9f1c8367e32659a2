package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/bgunnarsson/usuarios/internal/config"
	"github.com/bgunnarsson/usuarios/internal/db"
	"github.com/bgunnarsson/usuarios/internal/print"
	"github.com/bgunnarsson/usuarios/internal/ui"
	"github.com/bgunnarsson/usuarios/internal/usuarios"
)

// Report names one of the three programs.
type Report string

const (
	ReportInit    Report = "init"
	ReportCount   Report = "count"
	ReportAverage Report = "avg"
)

// Title is the heading shown above the interactive table.
func (r Report) Title() string {
	switch r {
	case ReportInit:
		return "usuarios"
	case ReportCount:
		return "Cantidad por género"
	case ReportAverage:
		return "Promedio de edad por género"
	default:
		return string(r)
	}
}

func (r Report) dsn(cfg *config.Config) string {
	if r == ReportInit {
		return cfg.Database.InitDSN
	}
	return cfg.Database.ReportDSN
}

// result is what a report produced: line output and a tabular form.
type result struct {
	lines func(io.Writer) error
	rows  *db.Rows
}

func execute(ctx context.Context, s *usuarios.Store, r Report) (*result, error) {
	switch r {
	case ReportInit:
		if err := s.Initialize(ctx); err != nil {
			return nil, fmt.Errorf("initialize: %w", err)
		}
		rows, err := s.Dump(ctx)
		if err != nil {
			return nil, fmt.Errorf("read back: %w", err)
		}
		return &result{
			lines: func(w io.Writer) error { return print.Tuples(w, rows) },
			rows:  rows,
		}, nil

	case ReportCount:
		if err := s.CheckReportable(ctx); err != nil {
			return nil, err
		}
		groups, err := s.CountBySex(ctx)
		if err != nil {
			return nil, fmt.Errorf("count by sex: %w", err)
		}
		return &result{
			lines: func(w io.Writer) error { return print.Counts(w, groups) },
			rows:  print.CountRows(groups),
		}, nil

	case ReportAverage:
		if err := s.CheckReportable(ctx); err != nil {
			return nil, err
		}
		groups, err := s.AverageAgeBySex(ctx)
		if err != nil {
			return nil, fmt.Errorf("average age by sex: %w", err)
		}
		return &result{
			lines: func(w io.Writer) error { return print.Averages(w, groups) },
			rows:  print.AverageRows(groups),
		}, nil

	default:
		return nil, fmt.Errorf("unknown report %q", r)
	}
}

// Run executes r against its configured store and writes the result to w in
// the configured output format.
func Run(ctx context.Context, cfg *config.Config, logger *slog.Logger, r Report, w io.Writer) error {
	return WithStore(ctx, cfg, logger, r.dsn(cfg), func(s *usuarios.Store) error {
		res, err := execute(ctx, s, r)
		if err != nil {
			return err
		}
		logger.InfoContext(ctx, "report ready", "report", string(r), "rows", len(res.rows.Data))

		if cfg.Output.Format == "table" {
			print.RenderTable(w, res.rows, print.Options{MaxWidth: cfg.Output.MaxWidth})
			return nil
		}
		return res.lines(w)
	})
}

// RunInteractive executes r and browses the result in a terminal table. The
// store is closed before the UI starts.
func RunInteractive(ctx context.Context, cfg *config.Config, logger *slog.Logger, r Report) error {
	var rows *db.Rows
	err := WithStore(ctx, cfg, logger, r.dsn(cfg), func(s *usuarios.Store) error {
		res, err := execute(ctx, s, r)
		if err != nil {
			return err
		}
		rows = res.rows
		return nil
	})
	if err != nil {
		return err
	}
	return ui.Run(ctx, r.Title(), rows)
}

func RunInit(ctx context.Context, cfg *config.Config, logger *slog.Logger, w io.Writer) error {
	return Run(ctx, cfg, logger, ReportInit, w)
}

func RunCount(ctx context.Context, cfg *config.Config, logger *slog.Logger, w io.Writer) error {
	return Run(ctx, cfg, logger, ReportCount, w)
}

func RunAverage(ctx context.Context, cfg *config.Config, logger *slog.Logger, w io.Writer) error {
	return Run(ctx, cfg, logger, ReportAverage, w)
}
