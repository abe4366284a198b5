package stages

import (
	"context"

	"github.com/grindlemire/graft"
)

// CopierNodeID is the unique identifier for the copy handler Graft node.
const CopierNodeID graft.ID = "adapter.stage.copy"

func init() {
	graft.Register(graft.Node[*Copier]{
		ID:        CopierNodeID,
		Cacheable: true,
		Run: func(_ context.Context) (*Copier, error) {
			return NewCopier(), nil
		},
	})
}
