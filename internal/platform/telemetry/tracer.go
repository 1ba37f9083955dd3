// Package telemetry configures OpenTelemetry tracing.
package telemetry

import (
	"context"
	"io"
	"log/slog"
	"os"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"parley/internal/platform/config"
)

// InitTracer installs a global tracer provider exporting spans to stdout.
// When tracing is disabled the global no-op provider is left in place and
// the returned shutdown does nothing.
func InitTracer(cfg config.Telemetry, logger *slog.Logger) (func(context.Context) error, error) {
	return initTracer(cfg, os.Stdout, logger)
}

func initTracer(cfg config.Telemetry, w io.Writer, logger *slog.Logger) (func(context.Context) error, error) {
	if !cfg.TracingEnabled {
		return func(context.Context) error { return nil }, nil
	}

	exporter, err := stdouttrace.New(stdouttrace.WithWriter(w))
	if err != nil {
		return nil, err
	}
	res, err := resource.Merge(
		resource.Default(),
		resource.NewSchemaless(attribute.String("service.name", cfg.ServiceName)),
	)
	if err != nil {
		return nil, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)

	logger.Info("OpenTelemetry initialized", slog.String("service", cfg.ServiceName))
	return tp.Shutdown, nil
}
