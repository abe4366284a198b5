package templates

import (
	"context"

	"github.com/grindlemire/graft"
)

// NodeID is the unique identifier for the templates handler Graft node.
const NodeID graft.ID = "adapter.stage.templates"

func init() {
	graft.Register(graft.Node[*Handler]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (*Handler, error) {
			return NewHandler(), nil
		},
	})
}
