package fs

import (
	"bytes"
	"context"
	"errors"
	"io"
	iofs "io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.trai.ch/sitepipe/internal/core/domain"
	"go.trai.ch/sitepipe/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.OutputStore = (*Store)(nil)

// Store is the output tree on disk.
type Store struct {
	root string
}

// NewStore creates a store rooted at root. The directory is created lazily.
func NewStore(root string) *Store {
	return &Store{root: filepath.Clean(root)}
}

// Root returns the absolute output directory.
func (s *Store) Root() string {
	return s.root
}

// Clear removes every entry below the root and keeps the root itself.
func (s *Store) Clear(ctx context.Context) error {
	entries, err := os.ReadDir(s.root)
	if errors.Is(err, iofs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return zerr.With(domain.Wrap(err, domain.ErrOutputClearFailed), "path", s.root)
	}

	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}
		p := filepath.Join(s.root, e.Name())
		if err := os.RemoveAll(p); err != nil {
			return zerr.With(domain.Wrap(err, domain.ErrOutputClearFailed), "path", p)
		}
	}
	return nil
}

// Write stores data at rel.
func (s *Store) Write(rel string, data []byte) error {
	return s.WriteStream(rel, bytes.NewReader(data))
}

// WriteStream stores the contents of r at rel. The file appears atomically.
func (s *Store) WriteStream(rel string, r io.Reader) error {
	dst, err := s.resolve(rel)
	if err != nil {
		return err
	}

	dir := filepath.Dir(dst)
	if err := os.MkdirAll(dir, domain.DirPerm); err != nil {
		return zerr.With(domain.Wrap(err, domain.ErrOutputWriteFailed), "path", rel)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(dst)+".tmp-*")
	if err != nil {
		return zerr.With(domain.Wrap(err, domain.ErrOutputWriteFailed), "path", rel)
	}
	tmpName := tmp.Name()

	_, err = io.Copy(tmp, r)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err == nil {
		err = os.Chmod(tmpName, domain.FilePerm)
	}
	if err == nil {
		err = os.Rename(tmpName, dst)
	}
	if err != nil {
		_ = os.Remove(tmpName)
		return zerr.With(domain.Wrap(err, domain.ErrOutputWriteFailed), "path", rel)
	}
	return nil
}

func (s *Store) resolve(rel string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(rel))
	if rel == "" || filepath.IsAbs(clean) || clean == "." || clean == ".." ||
		strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", domain.Annotate(domain.ErrOutputPathOutsideRoot, "path", rel)
	}
	return filepath.Join(s.root, clean), nil
}
