package devserver

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/sitepipe/internal/adapters/metrics"
	"go.trai.ch/sitepipe/internal/core/ports"
)

// NodeID is the unique identifier for the dev server Graft node.
const NodeID graft.ID = "adapter.devserver"

func init() {
	graft.Register(graft.Node[*Server]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{metrics.NodeID},
		Run: func(ctx context.Context) (*Server, error) {
			m, err := graft.Dep[ports.Metrics](ctx)
			if err != nil {
				return nil, err
			}
			return NewServer(m), nil
		},
	})
}
