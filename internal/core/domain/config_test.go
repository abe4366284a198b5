package domain_test

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/sitepipe/internal/core/domain"
)

func TestDefaultConfig(t *testing.T) {
	root := t.TempDir()
	cfg := domain.DefaultConfig(root)

	require.NoError(t, cfg.Validate())
	assert.Equal(t, filepath.Join(root, "src"), cfg.SourceDir())
	assert.Equal(t, filepath.Join(root, "public"), cfg.OutputDir())
	assert.Equal(t, filepath.Join(root, "src", "twig.json"), cfg.DataFile())
	assert.Equal(t, 100*time.Millisecond, cfg.Watch.Debounce)
	assert.Equal(t, []string{filepath.Join(root, "src", "styles")}, cfg.LoadPaths())
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*domain.Config)
	}{
		{name: "empty output", mutate: func(c *domain.Config) { c.Paths.Output = " " }},
		{name: "output is root", mutate: func(c *domain.Config) { c.Paths.Output = "." }},
		{name: "output is source", mutate: func(c *domain.Config) { c.Paths.Output = "src" }},
		{name: "negative debounce", mutate: func(c *domain.Config) { c.Watch.Debounce = -time.Second }},
		{name: "negative concurrency", mutate: func(c *domain.Config) { c.Concurrency = -1 }},
		{name: "no compiler", mutate: func(c *domain.Config) { c.Styles.Compiler = nil }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := domain.DefaultConfig(t.TempDir())
			tt.mutate(cfg)
			require.ErrorIs(t, cfg.Validate(), domain.ErrInvalidConfig)
		})
	}
}

func TestConfig_LintRuleEnabled(t *testing.T) {
	cfg := domain.DefaultConfig(t.TempDir())
	cfg.Lint.Rules = map[string]bool{domain.LintImgReqAlt: false}

	assert.False(t, cfg.LintRuleEnabled(domain.LintImgReqAlt))
	assert.True(t, cfg.LintRuleEnabled(domain.LintTagClose))
	assert.False(t, cfg.LintRuleEnabled(domain.LintDoctypeFirst))
}

func TestConfig_CloneIsDeep(t *testing.T) {
	cfg := domain.DefaultConfig(t.TempDir())
	cp := cfg.Clone()
	cp.Lint.Rules[domain.LintTagClose] = false
	cp.Styles.Compiler[0] = "dart-sass"

	assert.True(t, cfg.LintRuleEnabled(domain.LintTagClose))
	assert.Equal(t, "sass", cfg.Styles.Compiler[0])
}

func TestConfig_AbsolutePathsKept(t *testing.T) {
	cfg := domain.DefaultConfig(t.TempDir())
	out := filepath.Join(t.TempDir(), "dist")
	cfg.Paths.Output = out
	assert.Equal(t, out, cfg.OutputDir())
}
