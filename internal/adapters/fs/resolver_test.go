package fs_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/sitepipe/internal/adapters/fs"
	"go.trai.ch/sitepipe/internal/core/domain"
)

func touch(t *testing.T, root string, rels ...string) {
	t.Helper()
	for _, rel := range rels {
		p := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), domain.DirPerm))
		require.NoError(t, os.WriteFile(p, []byte(rel), domain.FilePerm))
	}
}

func rels(files []domain.SourceFile) []string {
	out := make([]string, len(files))
	for i, f := range files {
		out[i] = f.Rel
	}
	return out
}

func TestResolver_RelativeToPatternBase(t *testing.T) {
	root := t.TempDir()
	touch(t, root,
		"src/imgs/logo.png",
		"src/imgs/photos/a.jpg",
		"src/imgs/icons/close.svg",
		"src/index.html",
	)

	files, err := fs.NewResolver().Resolve(root, []string{"src/imgs/**/*", "!src/imgs/icons/**"})
	require.NoError(t, err)
	assert.Equal(t, []string{"logo.png", "photos/a.jpg"}, rels(files))
	assert.Equal(t, filepath.Join(root, "src", "imgs", "logo.png"), files[0].Path)
}

func TestResolver_PartialsAndDedup(t *testing.T) {
	root := t.TempDir()
	touch(t, root, "src/styles/main.scss", "src/styles/_vars.scss", "src/styles/print.scss")

	files, err := fs.NewResolver().Resolve(root, []string{
		"src/styles/*.scss",
		"src/styles/main.scss",
		"!src/styles/_*.scss",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"main.scss", "print.scss"}, rels(files))
}

func TestResolver_MissingBaseYieldsNothing(t *testing.T) {
	files, err := fs.NewResolver().Resolve(filepath.Join(t.TempDir(), "public"), []string{"styles/*.css"})
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestResolver_InvalidPattern(t *testing.T) {
	_, err := fs.NewResolver().Resolve(t.TempDir(), []string{"src/[.html"})
	require.ErrorIs(t, err, domain.ErrInvalidGlob)
}

func TestResolver_LiteralFile(t *testing.T) {
	root := t.TempDir()
	touch(t, root, "src/twig.json")

	files, err := fs.NewResolver().Resolve(root, []string{"src/twig.json"})
	require.NoError(t, err)
	assert.Equal(t, []string{"twig.json"}, rels(files))
}
