package telemetry

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.trai.ch/sitepipe/internal/core/ports"
)

// StageReporter is the span processor that turns stage spans into renderer
// progress events. Spans without a valid context are skipped.
type StageReporter struct {
	out ports.Renderer
}

var _ sdktrace.SpanProcessor = (*StageReporter)(nil)

// NewStageReporter returns a reporter feeding out. A nil out makes it inert.
func NewStageReporter(out ports.Renderer) *StageReporter {
	return &StageReporter{out: out}
}

// OnStart announces a stage. The parent is read from the span itself.
func (r *StageReporter) OnStart(_ context.Context, s sdktrace.ReadWriteSpan) {
	id, ok := r.spanID(s.SpanContext())
	if !ok {
		return
	}
	parent, _ := r.spanID(s.Parent())
	r.out.OnTaskStart(id, parent, s.Name(), s.StartTime())
}

// OnEnd reports the stage outcome.
func (r *StageReporter) OnEnd(s sdktrace.ReadOnlySpan) {
	id, ok := r.spanID(s.SpanContext())
	if !ok {
		return
	}
	r.out.OnTaskComplete(id, s.EndTime(), stageErr(s.Name(), s.Status()))
}

// ForceFlush is a no-op; events are delivered synchronously.
func (*StageReporter) ForceFlush(context.Context) error { return nil }

// Shutdown is a no-op.
func (*StageReporter) Shutdown(context.Context) error { return nil }

func (r *StageReporter) spanID(sc trace.SpanContext) (string, bool) {
	if r.out == nil || !sc.IsValid() {
		return "", false
	}
	return sc.SpanID().String(), true
}

// stageErr converts an error status to the error shown for the stage.
func stageErr(stage string, st sdktrace.Status) error {
	if st.Code != codes.Error {
		return nil
	}
	if st.Description == "" {
		return errors.New(stage + " failed")
	}
	return errors.New(st.Description)
}
