package telemetry

import (
	"context"

	"go.trai.ch/sitepipe/internal/core/ports"
)

// NoOpTracer discards every span. It backs runs that render nothing, such as --json.
type NoOpTracer struct{}

// NewNoOpTracer returns a NoOpTracer.
func NewNoOpTracer() NoOpTracer { return NoOpTracer{} }

// Start returns ctx and a span that discards everything.
func (NoOpTracer) Start(ctx context.Context, _ string, _ ...ports.SpanOption) (context.Context, ports.Span) {
	return ctx, noOpSpan{}
}

// EmitPlan does nothing.
func (NoOpTracer) EmitPlan(context.Context, []string, map[string][]string, []string) {}

type noOpSpan struct{}

func (noOpSpan) End() {}
func (noOpSpan) RecordError(error) {}
func (noOpSpan) SetAttribute(string, any) {}
func (noOpSpan) Write(p []byte) (int, error) { return len(p), nil }
