// Package styles compiles SCSS with an external compiler and post-processes the CSS.
package styles

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"go.trai.ch/sitepipe/internal/core/domain"
	"go.trai.ch/sitepipe/internal/core/ports"
	"go.trai.ch/zerr"
)

// Compiler implements ports.StageHandler for domain.KindStyles. It runs the
// configured sass-compatible executable once for all entry points.
type Compiler struct {
	executor ports.Executor
}

var _ ports.StageHandler = (*Compiler)(nil)

// NewCompiler returns a Compiler running commands through executor.
func NewCompiler(executor ports.Executor) *Compiler {
	return &Compiler{executor: executor}
}

// Handle compiles every input into a scratch directory, then moves the CSS
// and source maps into the output store.
func (c *Compiler) Handle(ctx context.Context, job *ports.StageJob) error {
	if len(job.Inputs) == 0 {
		return nil
	}

	scratch, err := os.MkdirTemp("", "sitepipe-styles-")
	if err != nil {
		return domain.Wrap(err, domain.ErrStyleCompileFailed)
	}
	defer func() { _ = os.RemoveAll(scratch) }()

	cmd := ports.Command{
		Argv: CompileArgs(job.Config, job.Inputs, scratch),
		Dir:  job.Config.Root,
	}
	if err := c.executor.Execute(ctx, cmd, job.Log, job.Log); err != nil {
		files := make([]string, len(job.Inputs))
		for i, in := range job.Inputs {
			files[i] = in.Rel
		}
		return zerr.With(domain.Wrap(err, domain.ErrStyleCompileFailed), "files", strings.Join(files, ","))
	}

	entries, err := os.ReadDir(scratch)
	if err != nil {
		return domain.Wrap(err, domain.ErrStyleCompileFailed)
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if err := c.move(filepath.Join(scratch, e.Name()), path.Join(job.Stage.Output, e.Name()), job.Store); err != nil {
			return err
		}
		_, _ = fmt.Fprintf(job.Log, "wrote %s\n", path.Join(job.Stage.Output, e.Name()))
	}
	return nil
}

func (c *Compiler) move(src, rel string, store ports.OutputStore) error {
	f, err := os.Open(src) //nolint:gosec // scratch dir owned by this process
	if err != nil {
		return zerr.With(domain.Wrap(err, domain.ErrFileReadFailed), "file", src)
	}
	defer func() { _ = f.Close() }()
	return store.WriteStream(rel, f)
}

// CompileArgs builds the compiler argv: the configured command, one
// --load-path per load path, the source map flag and an in:out pair per entry.
func CompileArgs(cfg *domain.Config, inputs []domain.SourceFile, outDir string) []string {
	argv := slices.Clone(cfg.Styles.Compiler)
	for _, p := range cfg.LoadPaths() {
		argv = append(argv, "--load-path="+p)
	}
	if cfg.Styles.Sourcemaps {
		argv = append(argv, "--source-map", "--source-map-urls=absolute")
	} else {
		argv = append(argv, "--no-source-map")
	}
	for _, in := range inputs {
		stem := strings.TrimSuffix(path.Base(in.Rel), path.Ext(in.Rel))
		argv = append(argv, in.Path+":"+filepath.Join(outDir, stem+".css"))
	}
	return argv
}
