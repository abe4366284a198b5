// Package fs provides the file system adapters: the output store, the input
// resolver and the tree hasher.
package fs

import (
	"io/fs"
	"iter"
	"path/filepath"
	"slices"
)

// Walker yields regular files below a root.
type Walker struct{}

// NewWalker creates a new Walker.
func NewWalker() *Walker {
	return &Walker{}
}

// WalkFiles yields the paths of all regular files under root in lexical order,
// skipping directories named in ignores as well as .git and .jj.
// A missing root yields nothing.
func (w *Walker) WalkFiles(root string, ignores []string) iter.Seq[string] {
	return func(yield func(string) bool) {
		_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if path != root && skipDir(d.Name(), ignores) {
					return filepath.SkipDir
				}
				return nil
			}
			if !d.Type().IsRegular() {
				return nil
			}
			if !yield(path) {
				return filepath.SkipAll
			}
			return nil
		})
	}
}

func skipDir(name string, ignores []string) bool {
	return name == ".git" || name == ".jj" || slices.Contains(ignores, name)
}
