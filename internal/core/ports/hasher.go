package ports

// Hasher computes content digests of file trees.
//
//go:generate mockgen -source=hasher.go -destination=mocks/mock_hasher.go -package=mocks
type Hasher interface {
	// ComputeFileHash returns the content hash of a single file.
	ComputeFileHash(path string) (uint64, error)
	// DigestTree returns a stable hex digest over every regular file under root,
	// covering relative paths and contents. A missing root digests as empty.
	DigestTree(root string) (string, error)
}
