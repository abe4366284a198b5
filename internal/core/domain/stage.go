package domain

import "strings"

// StageKind selects the collaborator that executes a stage.
type StageKind string

const (
	// KindClear empties the output tree.
	KindClear StageKind = "clear"
	// KindCopy copies inputs verbatim into the output tree.
	KindCopy StageKind = "copy"
	// KindTemplates renders Twig-syntax templates to minified HTML.
	KindTemplates StageKind = "templates"
	// KindStyles compiles SCSS entry points to CSS.
	KindStyles StageKind = "styles"
	// KindPostCSS post-processes compiled CSS in place.
	KindPostCSS StageKind = "postcss"
	// KindMinifyScripts minifies scripts in place.
	KindMinifyScripts StageKind = "minify-scripts"
	// KindSprite merges SVG icons into a single symbol sprite.
	KindSprite StageKind = "sprite"
	// KindLintHTML validates built HTML.
	KindLintHTML StageKind = "lint-html"
)

// Location names the tree a stage resolves its inputs against.
type Location uint8

const (
	// FromSource resolves inputs relative to the project root.
	FromSource Location = iota
	// FromOutput resolves inputs relative to the output root.
	FromOutput
)

// String returns the location name.
func (l Location) String() string {
	if l == FromOutput {
		return "output"
	}
	return "source"
}

// Stage is a pure description of one source-to-output transformation.
type Stage struct {
	// Name identifies the stage inside a pipeline and in logs.
	Name string
	// Kind selects the handler.
	Kind StageKind
	// Inputs are doublestar globs. A leading "!" marks an exclude.
	Inputs []string
	// From is the tree Inputs are resolved against.
	From Location
	// Output is the sub-directory of the output tree the stage writes to.
	Output string
	// RequireInputs fails the stage when Inputs resolve to nothing.
	RequireInputs bool
}

// Validate checks that the stage is complete enough to be scheduled.
func (s *Stage) Validate() error {
	if s.Name == "" {
		return Annotate(ErrInvalidStage, "reason", "missing name")
	}
	if s.Kind == "" {
		return Annotate(ErrInvalidStage, "stage", s.Name)
	}
	if s.Kind != KindClear && len(s.Inputs) == 0 {
		return Annotate(ErrInvalidStage, "stage", s.Name, "reason", "no inputs")
	}
	return nil
}

// Includes returns the include patterns.
func (s *Stage) Includes() []string {
	return splitPatterns(s.Inputs, false)
}

// Excludes returns the exclude patterns with their "!" prefix stripped.
func (s *Stage) Excludes() []string {
	return splitPatterns(s.Inputs, true)
}

func splitPatterns(patterns []string, excludes bool) []string {
	var out []string
	for _, p := range patterns {
		neg := strings.HasPrefix(p, "!")
		if neg == excludes {
			out = append(out, strings.TrimPrefix(p, "!"))
		}
	}
	return out
}

// SourceFile is one resolved stage input.
type SourceFile struct {
	// Path is the absolute file path.
	Path string
	// Rel is the path relative to the non-glob base of the pattern that matched it,
	// using forward slashes.
	Rel string
}
