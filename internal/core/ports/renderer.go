package ports

import (
	"context"
	"time"
)

// Renderer presents pipeline progress.
// It is fed by the telemetry stage reporter so stage code never prints directly.
//
//go:generate mockgen -source=renderer.go -destination=mocks/mock_renderer.go -package=mocks
type Renderer interface {
	// Start initializes the renderer.
	Start(ctx context.Context) error
	// Stop flushes buffered output and stops accepting events.
	Stop() error
	// Wait blocks until the renderer has fully terminated.
	Wait() error

	// OnPlanEmit is called once the pipeline graph is compiled.
	// steps are in execution order, deps maps a step to its prerequisites.
	OnPlanEmit(steps []string, deps map[string][]string, targets []string)
	// OnTaskStart is called when a stage span starts.
	OnTaskStart(spanID, parentID, name string, startTime time.Time)
	// OnTaskLog is called with raw stage output.
	OnTaskLog(spanID string, data []byte)
	// OnTaskComplete is called when a stage span ends. err is nil on success.
	OnTaskComplete(spanID string, endTime time.Time, err error)
}
