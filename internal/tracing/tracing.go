package tracing

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

type Config struct {
	Enabled bool
	// Endpoint is host:port of an OTLP HTTP collector.
	Endpoint    string
	ServiceName string
}

type ShutdownFunc func(ctx context.Context) error

// Init installs the global tracer provider. With tracing disabled the
// otel no-op provider stays in place and the returned func does nothing.
func Init(ctx context.Context, config Config) (ShutdownFunc, error) {
	if !config.Enabled {
		return func(context.Context) error { return nil }, nil
	}

	exporter, err := otlptracehttp.New(ctx,
		otlptracehttp.WithEndpoint(config.Endpoint),
		otlptracehttp.WithInsecure(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create otlp exporter: %w", err)
	}

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(config.ServiceName),
		)),
	)
	otel.SetTracerProvider(provider)
	log.Infof("tracing enabled, exporting to %s", config.Endpoint)

	return provider.Shutdown, nil
}
