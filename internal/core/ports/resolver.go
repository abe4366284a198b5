package ports

import "go.trai.ch/sitepipe/internal/core/domain"

// InputResolver expands stage input globs into concrete files.
//
//go:generate mockgen -source=resolver.go -destination=mocks/mock_resolver.go -package=mocks
type InputResolver interface {
	// Resolve matches patterns below base. Patterns prefixed with "!" exclude.
	// Results are sorted by path and contain regular files only.
	Resolve(base string, patterns []string) ([]domain.SourceFile, error)
}
