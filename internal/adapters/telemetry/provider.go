package telemetry

import (
	"context"
	"fmt"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.trai.ch/sitepipe/internal/core/ports"
)

// InstrumentationName names the tracer sitepipe spans are recorded under.
const InstrumentationName = "go.trai.ch/sitepipe"

// NewProvider returns a tracer provider whose spans are reported to renderer.
// The caller owns the provider and must shut it down.
func NewProvider(renderer ports.Renderer) *sdktrace.TracerProvider {
	return sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(NewStageReporter(renderer)))
}

// OTelTracer implements ports.Tracer on top of OpenTelemetry.
type OTelTracer struct {
	tracer trace.Tracer

	mu       sync.RWMutex
	renderer ports.Renderer
}

var _ ports.Tracer = (*OTelTracer)(nil)

// NewOTelTracer returns a tracer backed by tp. A nil tp uses the global provider.
func NewOTelTracer(tp trace.TracerProvider) *OTelTracer {
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	return &OTelTracer{tracer: tp.Tracer(InstrumentationName)}
}

// WithRenderer streams span output to r.
func (t *OTelTracer) WithRenderer(r ports.Renderer) *OTelTracer {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.renderer = r
	return t
}

func (t *OTelTracer) currentRenderer() ports.Renderer {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.renderer
}

// Start opens a span. With a renderer attached, writes to the span are
// batched and forwarded as log output; otherwise they become span events.
func (t *OTelTracer) Start(ctx context.Context, name string, opts ...ports.SpanOption) (context.Context, ports.Span) {
	cfg := &ports.SpanConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	var startOpts []trace.SpanStartOption
	if cfg.Pipeline != "" {
		startOpts = append(startOpts, trace.WithAttributes(attribute.String("sitepipe.pipeline", cfg.Pipeline)))
	}
	ctx, span := t.tracer.Start(ctx, name, startOpts...)

	s := &OTelSpan{span: span}
	if r := t.currentRenderer(); r != nil {
		spanID := span.SpanContext().SpanID().String()
		s.batcher = NewBatchProcessor(0, 0, func(data []byte) {
			r.OnTaskLog(spanID, data)
		})
	}
	return ctx, s
}

// EmitPlan records the planned steps on the current span and announces them to the renderer.
func (t *OTelTracer) EmitPlan(ctx context.Context, steps []string, deps map[string][]string, targets []string) {
	if span := trace.SpanFromContext(ctx); span.IsRecording() {
		span.AddEvent("plan_emitted", trace.WithAttributes(
			attribute.StringSlice("steps", steps),
			attribute.StringSlice("targets", targets),
		))
	}
	if r := t.currentRenderer(); r != nil {
		r.OnPlanEmit(steps, deps, targets)
	}
}

// OTelSpan implements ports.Span.
type OTelSpan struct {
	span    trace.Span
	batcher *BatchProcessor
}

// End flushes pending output and ends the span.
func (s *OTelSpan) End() {
	if s.batcher != nil {
		_ = s.batcher.Close()
	}
	s.span.End()
}

// RecordError marks the span as failed with err.
func (s *OTelSpan) RecordError(err error) {
	if err == nil {
		return
	}
	s.span.RecordError(err)
	s.span.SetStatus(codes.Error, err.Error())
}

// SetAttribute adds a typed attribute, falling back to the value's string form.
func (s *OTelSpan) SetAttribute(key string, value any) {
	var kv attribute.KeyValue
	switch v := value.(type) {
	case string:
		kv = attribute.String(key, v)
	case int:
		kv = attribute.Int(key, v)
	case int64:
		kv = attribute.Int64(key, v)
	case float64:
		kv = attribute.Float64(key, v)
	case bool:
		kv = attribute.Bool(key, v)
	case []string:
		kv = attribute.StringSlice(key, v)
	case fmt.Stringer:
		kv = attribute.String(key, v.String())
	default:
		kv = attribute.String(key, fmt.Sprintf("%v", v))
	}
	s.span.SetAttributes(kv)
}

// Write forwards p to the renderer or records it as a span event.
func (s *OTelSpan) Write(p []byte) (int, error) {
	if s.batcher != nil {
		return s.batcher.Write(p)
	}
	s.span.AddEvent("log", trace.WithAttributes(attribute.String("message", string(p))))
	return len(p), nil
}
