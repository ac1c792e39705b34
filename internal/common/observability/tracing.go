// internal/common/observability/tracing.go
package observability

import (
	"context"
	"fmt"

	"costli-agents/internal/common/config"
	"costli-agents/internal/common/logger"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	oteltrace "go.opentelemetry.io/otel/trace"
)

const defaultTracerName = "costli-agents"

var tracer oteltrace.Tracer = otel.Tracer(defaultTracerName)

// InitTracing installs a batch OTLP tracer provider when tracing is enabled.
// The returned shutdown func flushes pending spans and is never nil.
func InitTracing(ctx context.Context, cfg config.TracingConfig, log logger.Logger) (func(context.Context) error, error) {
	name := cfg.ServiceName
	if name == "" {
		name = defaultTracerName
	}
	tracer = otel.Tracer(name)

	noop := func(context.Context) error { return nil }
	if !cfg.Enabled {
		log.Info("Tracing disabled", nil)
		return noop, nil
	}

	endpoint := cfg.OTLPEndpoint
	if endpoint == "" {
		endpoint = "localhost:4317"
	}

	exporter, err := otlptracegrpc.New(ctx,
		otlptracegrpc.WithEndpoint(endpoint),
		otlptracegrpc.WithInsecure(),
	)
	if err != nil {
		return noop, fmt.Errorf("failed to create OTLP exporter: %w", err)
	}

	res := resource.NewSchemaless(
		attribute.String("service.name", name),
	)

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)
	tracer = otel.Tracer(name)

	log.Info("Tracing initialized", map[string]interface{}{"endpoint": endpoint})
	return tp.Shutdown, nil
}

// StartSpan creates a span on the configured tracer. With tracing disabled
// the global no-op provider hands back non-recording spans.
func StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, oteltrace.Span) {
	return tracer.Start(ctx, name, oteltrace.WithAttributes(attrs...))
}

// TraceID returns the hex trace id of the span in ctx, or "".
func TraceID(ctx context.Context) string {
	sc := oteltrace.SpanFromContext(ctx).SpanContext()
	if !sc.IsValid() {
		return ""
	}
	return sc.TraceID().String()
}
