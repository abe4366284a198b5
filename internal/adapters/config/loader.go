// Package config loads sitepipe.yaml into a domain.Config.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"go.trai.ch/sitepipe/internal/core/domain"
	"go.trai.ch/sitepipe/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// Loader implements ports.ConfigLoader using a YAML file.
type Loader struct {
	Logger ports.Logger
}

// NewLoader creates a new Loader with the given logger.
func NewLoader(logger ports.Logger) *Loader {
	return &Loader{Logger: logger}
}

// Load resolves the configuration for cwd.
func (l *Loader) Load(cwd, explicit string) (*domain.Config, error) {
	configPath := explicit
	if configPath != "" {
		if !filepath.IsAbs(configPath) {
			configPath = filepath.Join(cwd, configPath)
		}
		if _, err := os.Stat(configPath); err != nil {
			return nil, zerr.With(domain.Wrap(err, domain.ErrConfigNotFound), "path", configPath)
		}
	} else {
		configPath = findConfiguration(cwd)
	}

	if configPath == "" {
		cfg := domain.DefaultConfig(filepath.Clean(cwd))
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
		return cfg, nil
	}

	var file Configfile
	if err := readAndUnmarshalYAML(configPath, &file); err != nil {
		return nil, zerr.With(err, "path", configPath)
	}

	cfg, err := l.apply(domain.DefaultConfig(resolveRoot(configPath, file.Root)), &file)
	if err != nil {
		return nil, zerr.With(err, "path", configPath)
	}
	if err := cfg.Validate(); err != nil {
		return nil, zerr.With(err, "path", configPath)
	}
	return cfg, nil
}

// findConfiguration walks up from cwd and returns the first sitepipe.yaml, or "".
func findConfiguration(cwd string) string {
	dir := filepath.Clean(cwd)
	for {
		candidate := filepath.Join(dir, domain.ConfigFileName)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

func (l *Loader) apply(cfg *domain.Config, file *Configfile) (*domain.Config, error) {
	setString(&cfg.Paths.Source, file.Paths.Source)
	setString(&cfg.Paths.Output, file.Paths.Output)
	setString(&cfg.Paths.Data, file.Paths.Data)

	setString(&cfg.Server.Host, file.Server.Host)
	if file.Server.Port != nil {
		cfg.Server.Port = *file.Server.Port
	}
	if file.Server.Open != nil {
		cfg.Server.Open = *file.Server.Open
	}

	if file.Watch.Debounce != "" {
		d, err := time.ParseDuration(file.Watch.Debounce)
		if err != nil {
			return nil, zerr.With(domain.Wrap(err, domain.ErrConfigParseFailed), "field", "watch.debounce")
		}
		cfg.Watch.Debounce = d
	}
	if file.Watch.Ignore != nil {
		cfg.Watch.Ignore = file.Watch.Ignore
	}

	if file.Styles.Compiler != nil {
		cfg.Styles.Compiler = file.Styles.Compiler
	}
	if file.Styles.Sourcemaps != nil {
		cfg.Styles.Sourcemaps = *file.Styles.Sourcemaps
	}
	if file.Styles.LoadPaths != nil {
		cfg.Styles.LoadPaths = file.Styles.LoadPaths
	}

	defaults := domain.DefaultLintRules()
	for rule, on := range file.Lint.Rules {
		if _, known := defaults[rule]; !known {
			l.warn(fmt.Sprintf("unknown lint rule %q in %s is ignored", rule, domain.ConfigFileName))
			continue
		}
		cfg.Lint.Rules[rule] = on
	}

	if file.Concurrency != nil {
		cfg.Concurrency = *file.Concurrency
	}
	return cfg, nil
}

func (l *Loader) warn(msg string) {
	if l.Logger != nil {
		l.Logger.Warn(msg)
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func resolveRoot(configPath, configuredRoot string) string {
	configDir := filepath.Dir(configPath)
	if configuredRoot == "" {
		return filepath.Clean(configDir)
	}
	if filepath.IsAbs(configuredRoot) {
		return filepath.Clean(configuredRoot)
	}
	return filepath.Clean(filepath.Join(configDir, configuredRoot))
}

// readAndUnmarshalYAML reads a YAML file and unmarshals it into the target struct.
// An empty file leaves target untouched.
func readAndUnmarshalYAML[T any](configPath string, target *T) error {
	// #nosec G304 -- configPath is discovered or passed explicitly by the user
	data, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return domain.Wrap(err, domain.ErrConfigNotFound)
		}
		return domain.Wrap(err, domain.ErrConfigReadFailed)
	}

	if err := yaml.Unmarshal(data, target); err != nil {
		return domain.Wrap(err, domain.ErrConfigParseFailed)
	}
	return nil
}
