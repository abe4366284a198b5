package stages_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	fsadapter "go.trai.ch/sitepipe/internal/adapters/fs"
	"go.trai.ch/sitepipe/internal/adapters/stages"
	"go.trai.ch/sitepipe/internal/core/domain"
	"go.trai.ch/sitepipe/internal/core/ports"
	"go.trai.ch/sitepipe/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

func writeSource(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, body := range files {
		p := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o750))
		require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	}
}

func TestDispatcher_ClearUsesStore(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockOutputStore(ctrl)
	cfg := domain.DefaultConfig(t.TempDir())

	store.EXPECT().Clear(gomock.Any()).Return(nil)
	store.EXPECT().Root().Return(cfg.OutputDir())

	d := stages.NewDispatcher(cfg, store, mocks.NewMockInputResolver(ctrl), nil)
	var log bytes.Buffer
	require.NoError(t, d.RunStage(t.Context(), domain.StandardStages(cfg)["clear"], &log))
	assert.Contains(t, log.String(), "cleared "+cfg.OutputDir())
}

func TestDispatcher_ResolvesAgainstStageTree(t *testing.T) {
	tests := []struct {
		stage    string
		wantBase func(cfg *domain.Config) string
	}{
		{stage: "styles", wantBase: func(cfg *domain.Config) string { return cfg.Root }},
		{stage: "postcss", wantBase: func(cfg *domain.Config) string { return cfg.OutputDir() }},
	}

	for _, tt := range tests {
		t.Run(tt.stage, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			cfg := domain.DefaultConfig(t.TempDir())
			store := fsadapter.NewStore(cfg.OutputDir())
			resolver := mocks.NewMockInputResolver(ctrl)
			handler := mocks.NewMockStageHandler(ctrl)

			stage := domain.StandardStages(cfg)[tt.stage]
			inputs := []domain.SourceFile{{Path: "/abs/main.x", Rel: "main.x"}}
			resolver.EXPECT().Resolve(tt.wantBase(cfg), stage.Inputs).Return(inputs, nil)
			handler.EXPECT().Handle(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, job *ports.StageJob) error {
				assert.Same(t, stage, job.Stage)
				assert.Same(t, cfg, job.Config)
				assert.Equal(t, inputs, job.Inputs)
				return nil
			})

			d := stages.NewDispatcher(cfg, store, resolver, map[domain.StageKind]ports.StageHandler{stage.Kind: handler})
			require.NoError(t, d.RunStage(t.Context(), stage, &bytes.Buffer{}))
		})
	}
}

func TestDispatcher_Errors(t *testing.T) {
	ctrl := gomock.NewController(t)
	cfg := domain.DefaultConfig(t.TempDir())
	store := fsadapter.NewStore(cfg.OutputDir())
	d := stages.NewDispatcher(cfg, store, fsadapter.NewResolver(), map[domain.StageKind]ports.StageHandler{
		domain.KindLintHTML: mocks.NewMockStageHandler(ctrl),
	})

	err := d.RunStage(t.Context(), domain.StandardStages(cfg)["sprite"], &bytes.Buffer{})
	require.ErrorIs(t, err, domain.ErrUnknownStageKind)

	err = d.RunStage(t.Context(), domain.StandardStages(cfg)["lint-html"], &bytes.Buffer{})
	require.ErrorIs(t, err, domain.ErrNoInputs)

	bad := &domain.Stage{Name: "bad", Kind: domain.KindLintHTML, Inputs: []string{"[*.html"}}
	err = d.RunStage(t.Context(), bad, &bytes.Buffer{})
	require.ErrorIs(t, err, domain.ErrInvalidGlob)
}

func TestDispatcher_PostCSSBeforeStylesHasNothingToProcess(t *testing.T) {
	ctrl := gomock.NewController(t)
	cfg := domain.DefaultConfig(t.TempDir())
	writeSource(t, cfg.Root, map[string]string{"src/styles/main.scss": "a{display:flex}"})

	reg, err := domain.StandardRegistry(cfg)
	require.NoError(t, err)
	tg, err := reg.Get(domain.PipelinePostCSS)
	require.NoError(t, err)

	d := stages.NewDispatcher(cfg, fsadapter.NewStore(cfg.OutputDir()), fsadapter.NewResolver(),
		map[domain.StageKind]ports.StageHandler{domain.KindPostCSS: mocks.NewMockStageHandler(ctrl)})

	err = d.RunStage(t.Context(), tg.Stages()[0], &bytes.Buffer{})
	require.ErrorIs(t, err, domain.ErrNoInputs)
}

func TestCopier_KeepsPathBelowPatternBase(t *testing.T) {
	cfg := domain.DefaultConfig(t.TempDir())
	writeSource(t, cfg.Root, map[string]string{
		"src/index.html":          "<p>home</p>",
		"src/blog/post.html":      "<p>post</p>",
		"src/scripts/app.js":      "app()",
		"src/fonts/inter.woff2":   "font",
		"src/imgs/hero.jpg":       "jpg",
		"src/imgs/icons/menu.svg": "<svg/>",
	})

	store := fsadapter.NewStore(cfg.OutputDir())
	d := stages.NewDispatcher(cfg, store, fsadapter.NewResolver(),
		map[domain.StageKind]ports.StageHandler{domain.KindCopy: stages.NewCopier()})

	all := domain.StandardStages(cfg)
	for _, name := range []string{"html", "scripts", "fonts", "images"} {
		require.NoError(t, d.RunStage(t.Context(), all[name], &bytes.Buffer{}), name)
	}

	for _, rel := range []string{"index.html", "blog/post.html", "scripts/app.js", "fonts/inter.woff2", "imgs/hero.jpg"} {
		assert.FileExists(t, filepath.Join(cfg.OutputDir(), filepath.FromSlash(rel)))
	}
	assert.NoFileExists(t, filepath.Join(cfg.OutputDir(), "imgs", "icons", "menu.svg"))
}

func TestCopier_LogsDestination(t *testing.T) {
	cfg := domain.DefaultConfig(t.TempDir())
	writeSource(t, cfg.Root, map[string]string{"src/fonts/a.woff": "a", "src/fonts/b.woff": "b"})

	stage := domain.StandardStages(cfg)["fonts"]
	inputs, err := fsadapter.NewResolver().Resolve(cfg.Root, stage.Inputs)
	require.NoError(t, err)

	var log bytes.Buffer
	job := &ports.StageJob{Stage: stage, Config: cfg, Store: fsadapter.NewStore(cfg.OutputDir()), Inputs: inputs, Log: &log}
	require.NoError(t, stages.NewCopier().Handle(t.Context(), job))
	assert.Equal(t, "copied 2 file(s) to fonts\n", log.String())
}
