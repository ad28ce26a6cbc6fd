// Package telemetry sets up OpenTelemetry tracing and metrics for the relay.
//
// When a telemetry directory is configured, spans and metrics are exported
// with the stdout exporters into size-rotated files in that directory; an
// OTEL collector can tail them. Without a directory, no-op providers are used
// and instrumentation costs nothing.
package telemetry

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
	lumberjack "gopkg.in/natefinch/lumberjack.v2"
)

const (
	// InstrumentationName identifies the relay's tracer and meter.
	InstrumentationName = "github.com/a1utilityhub/prompt-relay"

	serviceName = "prompt-relay"

	tracesFile  = "relay_traces.log"
	metricsFile = "relay_metrics.log"
)

// Options tune Init. Zero values use the defaults.
type Options struct {
	// Dir receives the trace and metric files.
	Dir string

	// Version is reported as service.version.
	Version string

	// MetricInterval is the export period. Defaults to 10s.
	MetricInterval time.Duration
}

// Telemetry holds the tracer and meter handed to instrumented components.
type Telemetry struct {
	Tracer trace.Tracer
	Meter  metric.Meter

	shutdown []func(context.Context) error
}

// Noop returns instruments that record nothing.
func Noop() *Telemetry {
	return &Telemetry{
		Tracer: tracenoop.NewTracerProvider().Tracer(InstrumentationName),
		Meter:  metricnoop.NewMeterProvider().Meter(InstrumentationName),
	}
}

// Init creates file-exporting providers and installs them as the otel globals.
// An empty Dir returns Noop().
func Init(ctx context.Context, opts Options) (*Telemetry, error) {
	if opts.Dir == "" {
		return Noop(), nil
	}
	if opts.MetricInterval <= 0 {
		opts.MetricInterval = 10 * time.Second
	}
	if opts.Version == "" {
		opts.Version = "dev"
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(serviceName),
			semconv.ServiceVersion(opts.Version),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	if err := os.MkdirAll(opts.Dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create telemetry directory: %w", err)
	}

	traceFile := rotatingFile(filepath.Join(opts.Dir, tracesFile))
	traceExporter, err := stdouttrace.New(stdouttrace.WithWriter(traceFile))
	if err != nil {
		return nil, fmt.Errorf("failed to create trace exporter: %w", err)
	}
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(traceExporter),
		sdktrace.WithResource(res),
	)

	metricFile := rotatingFile(filepath.Join(opts.Dir, metricsFile))
	metricExporter, err := stdoutmetric.New(stdoutmetric.WithWriter(metricFile))
	if err != nil {
		_ = tp.Shutdown(ctx)
		return nil, fmt.Errorf("failed to create metric exporter: %w", err)
	}
	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(
			sdkmetric.NewPeriodicReader(metricExporter, sdkmetric.WithInterval(opts.MetricInterval)),
		),
		sdkmetric.WithResource(res),
	)

	otel.SetTracerProvider(tp)
	otel.SetMeterProvider(mp)

	return &Telemetry{
		Tracer: tp.Tracer(InstrumentationName),
		Meter:  mp.Meter(InstrumentationName),
		// Providers flush before their files close.
		shutdown: []func(context.Context) error{
			tp.Shutdown,
			mp.Shutdown,
			closer(traceFile),
			closer(metricFile),
		},
	}, nil
}

// Shutdown flushes pending spans and metrics and closes the files.
func (t *Telemetry) Shutdown(ctx context.Context) error {
	var errs []error
	for _, fn := range t.shutdown {
		if err := fn(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	t.shutdown = nil
	return errors.Join(errs...)
}

func rotatingFile(path string) *lumberjack.Logger {
	return &lumberjack.Logger{
		Filename:   path,
		MaxSize:    10, // MB
		MaxBackups: 3,
		MaxAge:     28,
		Compress:   true,
	}
}

func closer(c io.Closer) func(context.Context) error {
	return func(context.Context) error { return c.Close() }
}
