package sprite_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	fsadapter "go.trai.ch/sitepipe/internal/adapters/fs"
	"go.trai.ch/sitepipe/internal/adapters/sprite"
	"go.trai.ch/sitepipe/internal/core/domain"
	"go.trai.ch/sitepipe/internal/core/ports"
)

const (
	arrowIcon = `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 24 24">
  <path d="M4 12h16"/>
</svg>`
	closeIcon = `<?xml version="1.0"?>
<svg xmlns="http://www.w3.org/2000/svg" xmlns:xlink="http://www.w3.org/1999/xlink" viewBox="0 0 16 16" width="16">
  <defs><linearGradient id="fade"><stop offset="0"/></linearGradient></defs>
  <title>Close</title>
  <use xlink:href="#fade"/>
</svg>`
)

func spriteJob(t *testing.T, icons map[string]string) *ports.StageJob {
	t.Helper()
	cfg := domain.DefaultConfig(t.TempDir())
	for rel, body := range icons {
		p := filepath.Join(cfg.SourceDir(), "imgs", "icons", filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o750))
		require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	}

	stage := domain.StandardStages(cfg)["sprite"]
	inputs, err := fsadapter.NewResolver().Resolve(cfg.Root, stage.Inputs)
	require.NoError(t, err)

	return &ports.StageJob{
		Stage:  stage,
		Config: cfg,
		Store:  fsadapter.NewStore(cfg.OutputDir()),
		Inputs: inputs,
		Log:    &strings.Builder{},
	}
}

func TestBuilder_Golden(t *testing.T) {
	job := spriteJob(t, map[string]string{
		"social/close.svg": closeIcon,
		"arrow.svg":        arrowIcon,
	})

	require.NoError(t, sprite.NewBuilder().Handle(t.Context(), job))

	out, err := os.ReadFile(filepath.Join(job.Store.Root(), filepath.FromSlash(domain.SpritePath())))
	require.NoError(t, err)

	g := goldie.New(t)
	g.Assert(t, "sprite", out)
	assert.Contains(t, job.Log.(*strings.Builder).String(), "merged 2 icon(s) into imgs/icons.svg")
}

func TestBuilder_Deterministic(t *testing.T) {
	icons := map[string]string{"arrow.svg": arrowIcon, "social/close.svg": closeIcon}
	first, err := sprite.Build(spriteJob(t, icons).Inputs)
	require.NoError(t, err)
	second, err := sprite.Build(spriteJob(t, icons).Inputs)
	require.NoError(t, err)
	assert.Equal(t, string(first), string(second))
}

func TestBuilder_Errors(t *testing.T) {
	tests := []struct {
		name  string
		icons map[string]string
	}{
		{
			name:  "duplicate id",
			icons: map[string]string{"arrow.svg": arrowIcon, "legacy/arrow.svg": arrowIcon},
		},
		{
			name:  "not xml",
			icons: map[string]string{"broken.svg": "<svg><path></svg"},
		},
		{
			name:  "not svg",
			icons: map[string]string{"odd.svg": "<html/>"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			job := spriteJob(t, tt.icons)
			err := sprite.NewBuilder().Handle(t.Context(), job)
			require.ErrorIs(t, err, domain.ErrSpriteBuildFailed)
			assert.NoFileExists(t, filepath.Join(job.Store.Root(), filepath.FromSlash(domain.SpritePath())))
		})
	}
}

func TestBuilder_NoIcons(t *testing.T) {
	job := spriteJob(t, nil)
	require.NoError(t, sprite.NewBuilder().Handle(t.Context(), job))
	assert.NoDirExists(t, job.Store.Root())
}
