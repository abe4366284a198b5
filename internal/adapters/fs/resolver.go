package fs

import (
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"go.trai.ch/sitepipe/internal/core/domain"
	"go.trai.ch/sitepipe/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.InputResolver = (*Resolver)(nil)

// Resolver implements ports.InputResolver with doublestar globs.
type Resolver struct{}

// NewResolver creates a new Resolver.
func NewResolver() *Resolver {
	return &Resolver{}
}

// Resolve expands patterns below base. Each file's Rel is taken against the
// static prefix of the pattern that matched it, so "src/imgs/**/*" yields
// "logo.png" for src/imgs/logo.png.
func (r *Resolver) Resolve(base string, patterns []string) ([]domain.SourceFile, error) {
	var includes, excludes []string
	for _, p := range patterns {
		raw := strings.TrimPrefix(p, "!")
		if !doublestar.ValidatePattern(raw) {
			return nil, domain.Annotate(domain.ErrInvalidGlob, "pattern", p)
		}
		if raw != p {
			excludes = append(excludes, raw)
		} else {
			includes = append(includes, p)
		}
	}

	fsys := os.DirFS(base)
	seen := make(map[string]struct{})
	var files []domain.SourceFile

	for _, pattern := range includes {
		matches, err := doublestar.Glob(fsys, pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, zerr.With(domain.Wrap(err, domain.ErrInputResolutionFailed), "pattern", pattern)
		}

		prefix, _ := doublestar.SplitPattern(pattern)
		for _, match := range matches {
			if _, dup := seen[match]; dup || excluded(match, excludes) {
				continue
			}
			seen[match] = struct{}{}
			files = append(files, domain.SourceFile{
				Path: filepath.Join(base, filepath.FromSlash(match)),
				Rel:  relTo(prefix, match),
			})
		}
	}

	slices.SortFunc(files, func(a, b domain.SourceFile) int {
		return strings.Compare(a.Path, b.Path)
	})
	return files, nil
}

func excluded(match string, excludes []string) bool {
	for _, ex := range excludes {
		if doublestar.MatchUnvalidated(ex, match) {
			return true
		}
	}
	return false
}

func relTo(prefix, match string) string {
	if prefix == "." || prefix == "" {
		return match
	}
	if rel, ok := strings.CutPrefix(match, prefix+"/"); ok {
		return rel
	}
	// The pattern had no wildcard, so the prefix is the file itself.
	return path.Base(match)
}
