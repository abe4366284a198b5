package sprite

import (
	"context"

	"github.com/grindlemire/graft"
)

// NodeID is the unique identifier for the sprite builder Graft node.
const NodeID graft.ID = "adapter.stage.sprite"

func init() {
	graft.Register(graft.Node[*Builder]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (*Builder, error) {
			return NewBuilder(), nil
		},
	})
}
