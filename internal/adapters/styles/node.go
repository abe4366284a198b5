package styles

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/sitepipe/internal/adapters/shell"
	"go.trai.ch/sitepipe/internal/core/ports"
)

const (
	// CompilerNodeID is the unique identifier for the style compiler Graft node.
	CompilerNodeID graft.ID = "adapter.stage.styles"
	// PostprocessorNodeID is the unique identifier for the style post-processor Graft node.
	PostprocessorNodeID graft.ID = "adapter.stage.postcss"
)

func init() {
	graft.Register(graft.Node[*Compiler]{
		ID:        CompilerNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{shell.NodeID},
		Run: func(ctx context.Context) (*Compiler, error) {
			executor, err := graft.Dep[ports.Executor](ctx)
			if err != nil {
				return nil, err
			}
			return NewCompiler(executor), nil
		},
	})

	graft.Register(graft.Node[*Postprocessor]{
		ID:        PostprocessorNodeID,
		Cacheable: true,
		Run: func(_ context.Context) (*Postprocessor, error) {
			return NewPostprocessor(), nil
		},
	})
}
