// internal/common/observability/observability_test.go
package observability

import (
	"context"
	"testing"
	"time"

	"costli-agents/internal/common/config"
	"costli-agents/internal/common/logger"

	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestInitTracing_Disabled(t *testing.T) {
	shutdown, err := InitTracing(context.Background(), config.TracingConfig{}, logger.NewTestLogger(t))
	require.NoError(t, err)
	require.NotNil(t, shutdown)
	assert.NoError(t, shutdown(context.Background()))

	ctx, span := StartSpan(context.Background(), "analyze")
	defer span.End()
	assert.NotNil(t, ctx)
}

func TestStartSpan_RecordsWithProvider(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	tracer = tp.Tracer("test")
	t.Cleanup(func() {
		otel.SetTracerProvider(prev)
		tracer = otel.Tracer(defaultTracerName)
	})

	ctx, span := StartSpan(context.Background(), "pipeline.decompose")
	assert.NotEmpty(t, TraceID(ctx))
	span.End()

	ended := recorder.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, "pipeline.decompose", ended[0].Name())
}

func TestTraceID_NoSpan(t *testing.T) {
	assert.Equal(t, "", TraceID(context.Background()))
}

func TestObservability_Record(t *testing.T) {
	reg := promclient.NewRegistry()
	o := newWithRegisterer("costli-test", reg)
	defer o.Shutdown()

	ctx := context.Background()
	o.RecordJobProcessed(ctx, "analyze-scenario", "success")
	o.RecordJobDuration(ctx, "analyze-scenario", 120*time.Millisecond, "success")
	o.RecordPipeline(ctx, 2*time.Second, "fallback")
	o.RecordStage(ctx, "decompose", "degraded")

	families, err := reg.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)
}

func TestObservability_NilSafe(t *testing.T) {
	var o *Observability
	ctx := context.Background()
	o.RecordJobProcessed(ctx, "x", "success")
	o.RecordPipeline(ctx, time.Second, "success")
	o.RecordStage(ctx, "synthesize", "failed")
	o.Shutdown()

	zero := &Observability{}
	zero.RecordJobDuration(ctx, "x", time.Second, "failed")
}
