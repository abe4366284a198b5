package domain

import (
	"maps"
	"path/filepath"
	"strings"
	"time"
)

const (
	// DefaultDebounce is the watch debounce window when none is configured.
	DefaultDebounce = 100 * time.Millisecond
	// DefaultHost is the dev server bind host.
	DefaultHost = "localhost"
	// DefaultPort is the dev server port.
	DefaultPort = 3000
)

// Lint rule names.
const (
	LintTagClose         = "tag-close"
	LintAttrNoDup        = "attr-no-dup"
	LintIDNoDup          = "id-no-dup"
	LintImgReqAlt        = "img-req-alt"
	LintDoctypeFirst     = "doctype-first"
	LintTagNameLowercase = "tag-name-lowercase"
)

// Config is the resolved project configuration.
type Config struct {
	// Root is the absolute project root. Every other path is relative to it.
	Root        string
	Paths       PathsConfig
	Server      ServerConfig
	Watch       WatchConfig
	Styles      StylesConfig
	Lint        LintConfig
	Concurrency int
}

// PathsConfig locates the source tree, the output tree and the template data file.
type PathsConfig struct {
	Source string
	Output string
	Data   string
}

// ServerConfig configures the dev server.
type ServerConfig struct {
	Host string
	Port int
	Open bool
}

// WatchConfig configures the watch coordinator.
type WatchConfig struct {
	Debounce time.Duration
	Ignore   []string
}

// StylesConfig configures the external style compiler.
type StylesConfig struct {
	Compiler   []string
	Sourcemaps bool
	LoadPaths  []string
}

// LintConfig toggles HTML lint rules.
type LintConfig struct {
	Rules map[string]bool
}

// DefaultLintRules returns the rules enabled out of the box.
func DefaultLintRules() map[string]bool {
	return map[string]bool{
		LintTagClose:         true,
		LintAttrNoDup:        true,
		LintIDNoDup:          true,
		LintImgReqAlt:        true,
		LintDoctypeFirst:     false,
		LintTagNameLowercase: true,
	}
}

// DefaultConfig returns the configuration used when no sitepipe.yaml exists.
func DefaultConfig(root string) *Config {
	return &Config{
		Root: root,
		Paths: PathsConfig{
			Source: DefaultSourceDir,
			Output: DefaultOutputDir,
			Data:   DefaultDataFile(),
		},
		Server: ServerConfig{
			Host: DefaultHost,
			Port: DefaultPort,
		},
		Watch: WatchConfig{
			Debounce: DefaultDebounce,
			Ignore:   []string{".git", ".jj", "node_modules"},
		},
		Styles: StylesConfig{
			Compiler:   []string{"sass"},
			Sourcemaps: true,
			LoadPaths:  []string{filepath.Join(DefaultSourceDir, StylesDir)},
		},
		Lint: LintConfig{Rules: DefaultLintRules()},
	}
}

// Validate rejects configurations that would make the output tree unsafe to clear.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Paths.Output) == "" {
		return Annotate(ErrInvalidConfig, "field", "paths.output")
	}
	out := c.OutputDir()
	if out == filepath.Clean(c.Root) {
		return Annotate(ErrInvalidConfig, "field", "paths.output", "reason", "output is the project root")
	}
	if out == c.SourceDir() {
		return Annotate(ErrInvalidConfig, "field", "paths.output", "reason", "output is the source dir")
	}
	if c.Watch.Debounce < 0 {
		return Annotate(ErrInvalidConfig, "field", "watch.debounce")
	}
	if c.Concurrency < 0 {
		return Annotate(ErrInvalidConfig, "field", "concurrency")
	}
	if len(c.Styles.Compiler) == 0 {
		return Annotate(ErrInvalidConfig, "field", "styles.compiler")
	}
	return nil
}

// SourceDir returns the absolute source tree path.
func (c *Config) SourceDir() string {
	return c.abs(c.Paths.Source)
}

// OutputDir returns the absolute output tree path.
func (c *Config) OutputDir() string {
	return c.abs(c.Paths.Output)
}

// DataFile returns the absolute template data file path.
func (c *Config) DataFile() string {
	return c.abs(c.Paths.Data)
}

// LoadPaths returns the style load paths as absolute paths.
func (c *Config) LoadPaths() []string {
	out := make([]string, len(c.Styles.LoadPaths))
	for i, p := range c.Styles.LoadPaths {
		out[i] = c.abs(p)
	}
	return out
}

// LintRuleEnabled reports whether rule is enabled, falling back to the default.
func (c *Config) LintRuleEnabled(rule string) bool {
	if on, ok := c.Lint.Rules[rule]; ok {
		return on
	}
	return DefaultLintRules()[rule]
}

// Clone returns a deep copy so command-line overrides never leak between runs.
func (c *Config) Clone() *Config {
	cp := *c
	cp.Watch.Ignore = append([]string(nil), c.Watch.Ignore...)
	cp.Styles.Compiler = append([]string(nil), c.Styles.Compiler...)
	cp.Styles.LoadPaths = append([]string(nil), c.Styles.LoadPaths...)
	cp.Lint.Rules = maps.Clone(c.Lint.Rules)
	return &cp
}

// SourceRel returns p relative to the project root in slash form.
func (c *Config) SourceRel(p string) string {
	return filepath.ToSlash(filepath.Join(c.Paths.Source, p))
}

func (c *Config) abs(p string) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(c.Root, p)
}
