package tracing

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Attribute keys recorded on spans.
const (
	AttrRunID     = attribute.Key("lifebench.run_id")
	AttrLabel     = attribute.Key("lifebench.series")
	AttrProgram   = attribute.Key("lifebench.program")
	AttrSteps     = attribute.Key("lifebench.steps")
	AttrTrial     = attribute.Key("lifebench.trial")
	AttrElapsedMs = attribute.Key("lifebench.elapsed_ms")
	AttrSkipped   = attribute.Key("lifebench.skipped")
)

// StartSpan starts an internal span with the given attributes.
func StartSpan(ctx context.Context, tracer trace.Tracer, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	ctx, span := tracer.Start(ctx, name, trace.WithSpanKind(trace.SpanKindInternal))
	if len(attrs) > 0 {
		span.SetAttributes(attrs...)
	}
	return ctx, span
}

// StartTrialSpan starts a client span around one program invocation.
func StartTrialSpan(ctx context.Context, tracer trace.Tracer, program string, steps int) (context.Context, trace.Span) {
	ctx, span := tracer.Start(ctx, "trial "+program, trace.WithSpanKind(trace.SpanKindClient))
	span.SetAttributes(
		AttrProgram.String(program),
		AttrSteps.Int(steps),
	)
	return ctx, span
}

// EndSpan finishes a span, recording error status if applicable.
func EndSpan(span trace.Span, err error, attrs ...attribute.KeyValue) {
	if len(attrs) > 0 {
		span.SetAttributes(attrs...)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}
