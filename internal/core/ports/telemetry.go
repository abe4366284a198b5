package ports

import (
	"context"
	"io"
)

//go:generate mockgen -source=telemetry.go -destination=mocks/mock_telemetry.go -package=mocks

// Tracer is the entry point for creating spans.
type Tracer interface {
	// Start creates a new span.
	Start(ctx context.Context, name string, opts ...SpanOption) (context.Context, Span)
	// EmitPlan signals the steps of a pipeline before any of them run.
	EmitPlan(ctx context.Context, steps []string, deps map[string][]string, targets []string)
}

// Span represents a unit of work.
type Span interface {
	io.Writer
	// End completes the span.
	End()
	// RecordError records an error for the span.
	RecordError(err error)
	// SetAttribute adds a key-value pair to the span.
	SetAttribute(key string, value any)
}

// SpanConfig holds configuration for a starting span.
type SpanConfig struct {
	// Pipeline names the pipeline the span belongs to.
	Pipeline string
}

// SpanOption is a functional option for configuring a span.
type SpanOption func(*SpanConfig)

// WithPipeline tags a span with its pipeline name.
func WithPipeline(name string) SpanOption {
	return func(c *SpanConfig) {
		c.Pipeline = name
	}
}
