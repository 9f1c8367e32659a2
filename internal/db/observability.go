package db

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/bgunnarsson/usuarios/internal/db"

type metrics struct {
	count    metric.Int64Counter
	duration metric.Float64Histogram
	errors   metric.Int64Counter
}

type observability struct {
	logger        *slog.Logger
	tracer        trace.Tracer
	metrics       *metrics
	slowThreshold time.Duration
	logQueries    bool
}

func defaultObservability() *observability {
	return &observability{
		slowThreshold: 200 * time.Millisecond,
	}
}

// Option configures a Conn.
type Option func(*Conn)

// WithLogger logs failed and slow statements, and every statement when
// WithQueryLogging is on.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Conn) {
		c.obs.logger = logger
	}
}

func WithTracer(tracer trace.Tracer) Option {
	return func(c *Conn) {
		c.obs.tracer = tracer
	}
}

// WithDefaultTracer uses the globally registered tracer provider.
func WithDefaultTracer() Option {
	return WithTracer(otel.Tracer(instrumentationName))
}

func WithMeter(meter metric.Meter) Option {
	return func(c *Conn) {
		c.obs.metrics = newMetrics(meter)
	}
}

// WithDefaultMeter uses the globally registered meter provider.
func WithDefaultMeter() Option {
	return WithMeter(otel.Meter(instrumentationName))
}

func WithSlowQueryThreshold(d time.Duration) Option {
	return func(c *Conn) {
		c.obs.slowThreshold = d
	}
}

func WithQueryLogging(enabled bool) Option {
	return func(c *Conn) {
		c.obs.logQueries = enabled
	}
}

func newMetrics(meter metric.Meter) *metrics {
	count, _ := meter.Int64Counter("usuarios.db.statements",
		metric.WithDescription("Number of statements sent to the store"),
		metric.WithUnit("{statement}"),
	)
	duration, _ := meter.Float64Histogram("usuarios.db.duration",
		metric.WithDescription("Statement duration in milliseconds"),
		metric.WithUnit("ms"),
		metric.WithExplicitBucketBoundaries(1, 5, 10, 25, 50, 100, 250, 500, 1000),
	)
	errs, _ := meter.Int64Counter("usuarios.db.errors",
		metric.WithDescription("Number of failed statements"),
		metric.WithUnit("{error}"),
	)
	return &metrics{
		count:    count,
		duration: duration,
		errors:   errs,
	}
}

// observe wraps one store round trip with a span, metrics and a log line.
func (c *Conn) observe(ctx context.Context, op, query string, fn func(ctx context.Context) error) error {
	system := c.dialect.Name()

	var span trace.Span
	if c.obs.tracer != nil {
		ctx, span = c.obs.tracer.Start(ctx, "db."+op,
			trace.WithSpanKind(trace.SpanKindClient),
			trace.WithAttributes(
				attribute.String("db.system", system),
				attribute.String("db.operation", op),
			),
		)
		defer span.End()
	}

	start := time.Now()
	err := fn(ctx)
	elapsed := time.Since(start)

	if span != nil && err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}

	if m := c.obs.metrics; m != nil {
		attrs := metric.WithAttributes(
			attribute.String("db.system", system),
			attribute.String("db.operation", op),
		)
		m.count.Add(ctx, 1, attrs)
		m.duration.Record(ctx, float64(elapsed.Microseconds())/1000, attrs)
		if err != nil {
			m.errors.Add(ctx, 1, attrs)
		}
	}

	c.logStatement(ctx, op, query, elapsed, err)
	return err
}

func (c *Conn) logStatement(ctx context.Context, op, query string, elapsed time.Duration, err error) {
	logger := c.obs.logger
	if logger == nil {
		return
	}

	attrs := []slog.Attr{
		slog.String("operation", op),
		slog.String("db", c.dialect.Name()),
		slog.Duration("duration", elapsed),
	}
	if c.obs.logQueries && query != "" {
		attrs = append(attrs, slog.String("query", query))
	}

	switch {
	case err != nil:
		logger.LogAttrs(ctx, slog.LevelError, "statement failed", append(attrs, slog.String("error", err.Error()))...)
	case elapsed > c.obs.slowThreshold:
		logger.LogAttrs(ctx, slog.LevelWarn, "slow statement", attrs...)
	case c.obs.logQueries:
		logger.LogAttrs(ctx, slog.LevelDebug, "statement executed", attrs...)
	}
}
