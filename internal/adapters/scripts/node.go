package scripts

import (
	"context"

	"github.com/grindlemire/graft"
)

// NodeID is the unique identifier for the script minifier Graft node.
const NodeID graft.ID = "adapter.stage.minify_scripts"

func init() {
	graft.Register(graft.Node[*Minifier]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (*Minifier, error) {
			return NewMinifier(), nil
		},
	})
}
