// Package app implements the application layer for sitepipe.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"go.trai.ch/sitepipe/internal/adapters/detector"
	"go.trai.ch/sitepipe/internal/adapters/fs"
	"go.trai.ch/sitepipe/internal/adapters/linear"
	"go.trai.ch/sitepipe/internal/adapters/stages"
	"go.trai.ch/sitepipe/internal/adapters/telemetry"
	"go.trai.ch/sitepipe/internal/core/domain"
	"go.trai.ch/sitepipe/internal/core/ports"
	"go.trai.ch/sitepipe/internal/engine/pipeline"
	"go.trai.ch/sitepipe/internal/engine/watch"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

// shutdownTimeout bounds how long the dev server may take to drain.
const shutdownTimeout = 5 * time.Second

// Handlers are the stage collaborators, one per stage kind.
type Handlers struct {
	Templates     ports.StageHandler
	Styles        ports.StageHandler
	PostCSS       ports.StageHandler
	MinifyScripts ports.StageHandler
	Sprite        ports.StageHandler
	Lint          ports.StageHandler
	Copy          ports.StageHandler
}

func (h Handlers) byKind() map[domain.StageKind]ports.StageHandler {
	return map[domain.StageKind]ports.StageHandler{
		domain.KindTemplates:     h.Templates,
		domain.KindStyles:        h.Styles,
		domain.KindPostCSS:       h.PostCSS,
		domain.KindMinifyScripts: h.MinifyScripts,
		domain.KindSprite:        h.Sprite,
		domain.KindLintHTML:      h.Lint,
		domain.KindCopy:          h.Copy,
	}
}

// App represents the main application logic.
type App struct {
	configLoader ports.ConfigLoader
	logger       ports.Logger
	resolver     ports.InputResolver
	hasher       ports.Hasher
	metrics      ports.Metrics
	watcher      ports.Watcher
	server       ports.DevServer
	handlers     Handlers

	stdout io.Writer
	stderr io.Writer
}

// New creates a new App instance.
func New(
	loader ports.ConfigLoader,
	log ports.Logger,
	resolver ports.InputResolver,
	hasher ports.Hasher,
	metrics ports.Metrics,
	watcher ports.Watcher,
	server ports.DevServer,
	handlers Handlers,
) *App {
	return &App{
		configLoader: loader,
		logger:       log,
		resolver:     resolver,
		hasher:       hasher,
		metrics:      metrics,
		watcher:      watcher,
		server:       server,
		handlers:     handlers,
		stdout:       os.Stdout,
		stderr:       os.Stderr,
	}
}

// WithOutput redirects renderer output. It is used by tests.
func (a *App) WithOutput(stdout, stderr io.Writer) *App {
	a.stdout = stdout
	a.stderr = stderr
	return a
}

// Options are the global flags shared by every command.
type Options struct {
	// ConfigPath names sitepipe.yaml explicitly and disables discovery.
	ConfigPath string
	// Root is the directory configuration discovery starts from. Empty means
	// the working directory.
	Root string
	// CI forces linear output.
	CI bool
	// JSON switches logs to JSON and silences the stage renderer.
	JSON bool
}

// DevOptions override the dev server and watch configuration. Nil fields
// keep the configured value.
type DevOptions struct {
	Host     *string
	Port     *int
	Open     bool
	Debounce *time.Duration
}

func (o DevOptions) apply(cfg *domain.Config) {
	if o.Host != nil {
		cfg.Server.Host = *o.Host
	}
	if o.Port != nil {
		cfg.Server.Port = *o.Port
	}
	if o.Open {
		cfg.Server.Open = true
	}
	if o.Debounce != nil {
		cfg.Watch.Debounce = *o.Debounce
	}
}

// Run executes the named pipelines one after another, stopping at the first failure.
func (a *App) Run(ctx context.Context, names []string, opts Options) error {
	if len(names) == 0 {
		return domain.ErrNoPipelinesSpecified
	}

	s, err := a.newSession(opts, nil)
	if err != nil {
		return err
	}

	graphs := make([]*domain.TaskGraph, 0, len(names))
	for _, name := range names {
		tg, err := s.registry.Get(name)
		if err != nil {
			return err
		}
		graphs = append(graphs, tg)
	}

	return s.execute(ctx, func(ctx context.Context) error {
		for _, tg := range graphs {
			if err := s.runner.Run(ctx, tg); err != nil {
				return err
			}
		}
		return nil
	})
}

// Build clears the output tree and runs every stage, minified.
func (a *App) Build(ctx context.Context, opts Options) error {
	s, err := a.newSession(opts, nil)
	if err != nil {
		return err
	}
	tg, err := s.registry.Get(domain.PipelineBuild)
	if err != nil {
		return err
	}

	begin := time.Now()
	err = s.execute(ctx, func(ctx context.Context) error {
		return s.runner.Run(ctx, tg)
	})
	if err != nil {
		return err
	}

	digest, err := a.hasher.DigestTree(s.cfg.OutputDir())
	if err != nil {
		return err
	}
	a.logger.Info(fmt.Sprintf("built %s in %s (digest %s)",
		displayPath(s.cfg.Root, s.cfg.OutputDir()), time.Since(begin).Round(time.Millisecond), digest))
	return nil
}

// Lint validates the HTML already in the output tree.
func (a *App) Lint(ctx context.Context, opts Options) error {
	return a.Run(ctx, []string{domain.PipelineLint}, opts)
}

// PostCSS post-processes the compiled stylesheets in the output tree.
func (a *App) PostCSS(ctx context.Context, opts Options) error {
	return a.Run(ctx, []string{domain.PipelinePostCSS}, opts)
}

// MinifyScripts minifies the scripts in the output tree.
func (a *App) MinifyScripts(ctx context.Context, opts Options) error {
	return a.Run(ctx, []string{domain.PipelineMinifyScripts}, opts)
}

// Clean removes everything below the output directory.
func (a *App) Clean(ctx context.Context, opts Options) error {
	cfg, err := a.loadConfig(opts, nil)
	if err != nil {
		return err
	}
	store := fs.NewStore(cfg.OutputDir())
	if err := store.Clear(ctx); err != nil {
		return err
	}
	a.logger.Info("cleared " + displayPath(cfg.Root, store.Root()))
	return nil
}

// List writes the registered pipelines and watch rules to w.
func (a *App) List(w io.Writer, opts Options) error {
	cfg, err := a.loadConfig(opts, nil)
	if err != nil {
		return err
	}
	reg, err := domain.StandardRegistry(cfg)
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintln(w, "Pipelines:")
	for _, name := range reg.Names() {
		tg, _ := reg.Get(name)
		_, _ = fmt.Fprintf(w, "  %-16s %s\n", name, tg.Description)
		_, _ = fmt.Fprintf(w, "  %-16s %s\n", "", tg.Describe())
	}

	_, _ = fmt.Fprintln(w, "Watch rules:")
	for _, rule := range reg.WatchRules() {
		_, _ = fmt.Fprintf(w, "  %-16s %s -> %s (%s reload)\n",
			rule.Name, strings.Join(rule.Patterns, " "), rule.Pipeline, rule.Reload)
	}
	return nil
}

// Dev builds the content graph, serves the output tree and re-runs watch
// rules on change until ctx is cancelled.
func (a *App) Dev(ctx context.Context, opts Options, dev DevOptions) error {
	s, err := a.newSession(opts, dev.apply)
	if err != nil {
		return err
	}
	tg, err := s.registry.Get(domain.PipelineDev)
	if err != nil {
		return err
	}

	return s.execute(ctx, func(ctx context.Context) error {
		if err := s.runner.Run(ctx, tg); err != nil {
			return err
		}
		return a.serveAndWatch(ctx, s)
	})
}

func (a *App) serveAndWatch(ctx context.Context, s *session) (err error) {
	cfg := s.cfg
	addr := net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port))
	if err := a.server.Start(ctx, cfg.OutputDir(), addr); err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		err = errors.Join(err, a.server.Shutdown(shutdownCtx))
	}()

	a.logger.Info(fmt.Sprintf("serving %s at %s", displayPath(cfg.Root, cfg.OutputDir()), a.server.URL()))
	if cfg.Server.Open && s.mode.Interactive() {
		if err := a.server.Open(); err != nil {
			a.logger.Warn("could not open browser: " + err.Error())
		}
	}

	if err := a.watcher.Start(ctx, cfg.Root, watchIgnore(cfg)); err != nil {
		return err
	}
	defer func() { _ = a.watcher.Stop() }()

	coord, err := watch.NewCoordinator(cfg.Root, s.registry, s.runner, a.server, a.logger, cfg.Watch.Debounce)
	if err != nil {
		return err
	}
	a.logger.Info(fmt.Sprintf("watching %s", displayPath(cfg.Root, cfg.SourceDir())))

	if err := coord.Run(ctx, a.watcher.Events()); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// watchIgnore adds the output directory to the configured ignore list when
// it sits directly below the root.
func watchIgnore(cfg *domain.Config) []string {
	ignore := append([]string(nil), cfg.Watch.Ignore...)
	if rel, err := filepath.Rel(cfg.Root, cfg.OutputDir()); err == nil && !strings.HasPrefix(rel, "..") && !strings.ContainsRune(rel, filepath.Separator) {
		ignore = append(ignore, rel)
	}
	return ignore
}

func (a *App) loadConfig(opts Options, override func(*domain.Config)) (*domain.Config, error) {
	cwd := opts.Root
	if cwd == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, zerr.Wrap(err, "failed to get working directory")
		}
		cwd = wd
	} else if abs, err := filepath.Abs(cwd); err == nil {
		cwd = abs
	}

	cfg, err := a.configLoader.Load(cwd, opts.ConfigPath)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to load configuration")
	}
	if override != nil {
		override(cfg)
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// session is everything one command invocation needs to run pipelines.
type session struct {
	cfg      *domain.Config
	registry *domain.Registry
	mode     detector.OutputMode
	runner   *pipeline.Runner
	renderer ports.Renderer
	shutdown func(context.Context) error
}

func (a *App) newSession(opts Options, override func(*domain.Config)) (*session, error) {
	cfg, err := a.loadConfig(opts, override)
	if err != nil {
		return nil, err
	}
	reg, err := domain.StandardRegistry(cfg)
	if err != nil {
		return nil, err
	}

	s := &session{
		cfg:      cfg,
		registry: reg,
		mode:     detector.ResolveMode(detector.ModeAuto, opts.CI, opts.JSON),
		shutdown: func(context.Context) error { return nil },
	}

	var tracer ports.Tracer
	if s.mode == detector.ModeJSON {
		a.logger.SetJSON(true)
		tracer = telemetry.NewNoOpTracer()
	} else {
		var rOpts []linear.Option
		if s.mode.Interactive() {
			rOpts = append(rOpts, linear.WithInteractive())
		}
		s.renderer = linear.NewRenderer(a.stdout, a.stderr, rOpts...)
		tp := telemetry.NewProvider(s.renderer)
		tracer = telemetry.NewOTelTracer(tp).WithRenderer(s.renderer)
		s.shutdown = tp.Shutdown
	}

	dispatcher := stages.NewDispatcher(cfg, fs.NewStore(cfg.OutputDir()), a.resolver, a.handlers.byKind())
	s.runner = pipeline.NewRunner(dispatcher, tracer, a.metrics, cfg.Concurrency)
	return s, nil
}

// execute runs work alongside the renderer and stops the renderer once work returns.
func (s *session) execute(ctx context.Context, work func(context.Context) error) error {
	defer func() { _ = s.shutdown(context.WithoutCancel(ctx)) }()

	if s.renderer == nil {
		return work(ctx)
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := s.renderer.Start(ctx); err != nil {
			return err
		}
		return s.renderer.Wait()
	})

	g.Go(func() error {
		defer func() { _ = s.renderer.Stop() }()
		return work(ctx)
	})

	return g.Wait()
}

func displayPath(root, p string) string {
	if rel, err := filepath.Rel(root, p); err == nil && !strings.HasPrefix(rel, "..") {
		return filepath.ToSlash(rel)
	}
	return p
}
