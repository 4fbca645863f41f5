package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

// instrumentationName identifies this module's spans to whatever
// backend the configured exporter ships to.
const instrumentationName = "github.com/mattepiu/cortex"

// Tracer wraps otel.Tracer with the engine's component name baked in,
// the same package-scoped-tracer pattern steveyegge-beads uses around
// otel.Tracer("github.com/steveyegge/beads/hooks").
type Tracer struct {
	tracer trace.Tracer
}

// NewTracer configures tracing if enabled, or leaves otel's default
// no-op global tracer provider in place if not — spec.md §6 calls for
// tracing to cost nothing when the operator hasn't turned it on.
func NewTracer(enabled bool) Tracer {
	if enabled {
		otel.SetTracerProvider(sdktrace.NewTracerProvider())
	}
	return Tracer{tracer: otel.Tracer(instrumentationName)}
}

// Start begins a span, mirroring beads' hook-exec pattern: callers defer
// End, recording any returned error as a span error first.
func (t Tracer) Start(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, name, opts...)
}

// End closes span, recording err as a span error and setting the span's
// status to Error if err is non-nil. Ported structurally from
// hooks_unix.go's runHook defer block.
func End(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
