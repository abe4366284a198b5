package ports

import (
	"context"
	"io"
)

// OutputStore owns the output tree.
// It does no locking; concurrent stages must write disjoint paths.
//
//go:generate mockgen -source=store.go -destination=mocks/mock_store.go -package=mocks
type OutputStore interface {
	// Root returns the absolute output directory.
	Root() string
	// Clear removes everything below the root. A missing root is not an error.
	Clear(ctx context.Context) error
	// Write stores data at rel, creating parent directories as needed.
	Write(rel string, data []byte) error
	// WriteStream stores the contents of r at rel.
	WriteStream(rel string, r io.Reader) error
}
