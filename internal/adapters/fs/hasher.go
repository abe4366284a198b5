package fs

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/cespare/xxhash/v2"
	"go.trai.ch/sitepipe/internal/core/domain"
	"go.trai.ch/sitepipe/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Hasher = (*Hasher)(nil)

// Hasher digests file trees with xxhash.
type Hasher struct {
	walker *Walker
}

// NewHasher creates a new Hasher.
func NewHasher(walker *Walker) *Hasher {
	return &Hasher{walker: walker}
}

// ComputeFileHash computes the xxhash of a file's content.
func (h *Hasher) ComputeFileHash(path string) (uint64, error) {
	f, err := os.Open(path) //nolint:gosec // Path is controlled by caller
	if err != nil {
		return 0, zerr.With(domain.Wrap(err, domain.ErrFileReadFailed), "path", path)
	}
	defer f.Close() //nolint:errcheck // read-only

	d := xxhash.New()
	if _, err := io.Copy(d, f); err != nil {
		return 0, zerr.With(domain.Wrap(err, domain.ErrFileHashFailed), "path", path)
	}
	return d.Sum64(), nil
}

// DigestTree hashes every regular file under root together with its
// slash-separated relative path.
func (h *Hasher) DigestTree(root string) (string, error) {
	d := xxhash.New()
	var sum [8]byte

	for path := range h.walker.WalkFiles(root, nil) {
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return "", zerr.With(domain.Wrap(err, domain.ErrFileHashFailed), "path", path)
		}
		fileHash, err := h.ComputeFileHash(path)
		if err != nil {
			return "", err
		}

		_, _ = d.WriteString(filepath.ToSlash(rel))
		_, _ = d.Write([]byte{0})
		for i := range sum {
			sum[i] = byte(fileHash >> (8 * i))
		}
		_, _ = d.Write(sum[:])
	}

	return fmt.Sprintf("%016x", d.Sum64()), nil
}
