// Package stages resolves stage inputs and dispatches each stage to the
// handler registered for its kind.
package stages

import (
	"context"
	"fmt"
	"io"

	"go.trai.ch/sitepipe/internal/core/domain"
	"go.trai.ch/sitepipe/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.StageRunner = (*Dispatcher)(nil)

// Dispatcher implements ports.StageRunner for one resolved configuration.
type Dispatcher struct {
	cfg      *domain.Config
	store    ports.OutputStore
	resolver ports.InputResolver
	handlers map[domain.StageKind]ports.StageHandler
}

// NewDispatcher creates a Dispatcher. Clear stages are served by the store
// itself and need no handler.
func NewDispatcher(
	cfg *domain.Config,
	store ports.OutputStore,
	resolver ports.InputResolver,
	handlers map[domain.StageKind]ports.StageHandler,
) *Dispatcher {
	return &Dispatcher{cfg: cfg, store: store, resolver: resolver, handlers: handlers}
}

// RunStage resolves the stage inputs against its source tree and runs the
// handler for its kind. Output lines go to log.
func (d *Dispatcher) RunStage(ctx context.Context, stage *domain.Stage, log io.Writer) error {
	if stage.Kind == domain.KindClear {
		if err := d.store.Clear(ctx); err != nil {
			return err
		}
		_, _ = fmt.Fprintf(log, "cleared %s\n", d.store.Root())
		return nil
	}

	handler, ok := d.handlers[stage.Kind]
	if !ok {
		return domain.Annotate(domain.ErrUnknownStageKind, "stage", stage.Name, "kind", string(stage.Kind))
	}

	base := d.cfg.Root
	if stage.From == domain.FromOutput {
		base = d.store.Root()
	}
	inputs, err := d.resolver.Resolve(base, stage.Inputs)
	if err != nil {
		return zerr.With(err, "stage", stage.Name)
	}
	if len(inputs) == 0 && stage.RequireInputs {
		return domain.Annotate(domain.ErrNoInputs, "stage", stage.Name, "from", stage.From.String())
	}

	return handler.Handle(ctx, &ports.StageJob{
		Stage:  stage,
		Config: d.cfg,
		Store:  d.store,
		Inputs: inputs,
		Log:    log,
	})
}
