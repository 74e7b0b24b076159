// Package observability provides tracing for the matching pipeline.
package observability

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	// TracerName is the name of the tracer for matching runs.
	TracerName = "matchmaker"
)

// Span attribute keys
const (
	AttrRunID        = "run_id"
	AttrSource       = "source"
	AttrStage        = "stage"
	AttrRows         = "rows"
	AttrHeaders      = "headers"
	AttrParticipants = "participants"
	AttrMutualPairs  = "mutual_pairs"
	AttrDiagnostics  = "diagnostics"
	AttrUnclassified = "unclassified_headers"
	AttrErrorType    = "error_type"
	AttrOutputFormat = "output_format"
)

// Span names
const (
	SpanRun = "matchmaker.run"
)

// Stage names
const (
	StageRead     = "read"
	StageClassify = "classify"
	StageBuild    = "build"
	StageResolve  = "resolve"
	StageRender   = "render"
)

// Tracer provides spans for a matching run and its stages.
type Tracer struct {
	tracer trace.Tracer
}

// NewTracer creates a tracer on the global provider. Without a configured
// provider the spans are no-ops.
func NewTracer() *Tracer {
	return NewTracerWithProvider(otel.GetTracerProvider())
}

// NewTracerWithProvider creates a tracer on tp.
func NewTracerWithProvider(tp trace.TracerProvider) *Tracer {
	return &Tracer{
		tracer: tp.Tracer(TracerName),
	}
}

// StartRunSpan starts the root span of one run.
func (t *Tracer) StartRunSpan(ctx context.Context, runID, source string) (context.Context, trace.Span) {
	ctx, span := t.tracer.Start(ctx, SpanRun,
		trace.WithAttributes(
			attribute.String(AttrSource, source),
		),
	)
	if runID != "" {
		span.SetAttributes(attribute.String(AttrRunID, runID))
	}
	return ctx, span
}

// StartStageSpan starts a span for a pipeline stage.
func (t *Tracer) StartStageSpan(ctx context.Context, stage string) (context.Context, trace.Span) {
	spanName := fmt.Sprintf("matchmaker.stage.%s", stage)
	return t.tracer.Start(ctx, spanName,
		trace.WithAttributes(
			attribute.String(AttrStage, stage),
		),
	)
}

// SpanHelper provides convenient methods for working with the current span.
type SpanHelper struct {
	span trace.Span
}

// NewSpanHelper creates a new span helper for the given span.
func NewSpanHelper(span trace.Span) *SpanHelper {
	return &SpanHelper{span: span}
}

// SetTable sets the shape of the input table.
func (h *SpanHelper) SetTable(headers, rows int) {
	h.span.SetAttributes(
		attribute.Int(AttrHeaders, headers),
		attribute.Int(AttrRows, rows),
	)
}

// SetUnclassified sets the number of headers no pattern claimed.
func (h *SpanHelper) SetUnclassified(n int) {
	h.span.SetAttributes(attribute.Int(AttrUnclassified, n))
}

// SetBuildResult sets participant and diagnostic counts.
func (h *SpanHelper) SetBuildResult(participants, diagnostics int) {
	h.span.SetAttributes(
		attribute.Int(AttrParticipants, participants),
		attribute.Int(AttrDiagnostics, diagnostics),
	)
}

// SetMutualPairs sets the number of mutual matches.
func (h *SpanHelper) SetMutualPairs(n int) {
	h.span.SetAttributes(attribute.Int(AttrMutualPairs, n))
}

// SetOutputFormat sets the format the results were rendered in.
func (h *SpanHelper) SetOutputFormat(format string) {
	h.span.SetAttributes(attribute.String(AttrOutputFormat, format))
}

// SetError records an error on the span.
func (h *SpanHelper) SetError(err error, errorType string) {
	h.span.SetStatus(codes.Error, err.Error())
	h.span.SetAttributes(attribute.String(AttrErrorType, errorType))
	h.span.RecordError(err)
}

// SetSuccess marks the span as successful.
func (h *SpanHelper) SetSuccess() {
	h.span.SetStatus(codes.Ok, "")
}

// AddEvent adds an event to the span.
func (h *SpanHelper) AddEvent(name string, attrs ...attribute.KeyValue) {
	h.span.AddEvent(name, trace.WithAttributes(attrs...))
}

// GetTraceID returns the trace ID from the context.
func GetTraceID(ctx context.Context) string {
	span := trace.SpanFromContext(ctx)
	if span.SpanContext().HasTraceID() {
		return span.SpanContext().TraceID().String()
	}
	return ""
}
