package lint

import (
	"context"

	"github.com/grindlemire/graft"
)

// NodeID is the unique identifier for the HTML linter Graft node.
const NodeID graft.ID = "adapter.stage.lint"

func init() {
	graft.Register(graft.Node[*Linter]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (*Linter, error) {
			return NewLinter(), nil
		},
	})
}
