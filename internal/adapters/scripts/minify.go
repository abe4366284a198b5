// Package scripts minifies built JavaScript in place.
package scripts

import (
	"context"
	"fmt"
	"os"
	"path"

	"github.com/tdewolff/minify/v2"
	"go.trai.ch/sitepipe/internal/adapters/minifier"
	"go.trai.ch/sitepipe/internal/core/domain"
	"go.trai.ch/sitepipe/internal/core/ports"
	"go.trai.ch/zerr"
)

// Minifier implements ports.StageHandler for domain.KindMinifyScripts.
type Minifier struct {
	minify *minify.M
}

var _ ports.StageHandler = (*Minifier)(nil)

// NewMinifier returns a script Minifier.
func NewMinifier() *Minifier {
	return &Minifier{minify: minifier.JS()}
}

// Handle replaces every input with its minified form.
func (m *Minifier) Handle(ctx context.Context, job *ports.StageJob) error {
	var before, after int
	for _, in := range job.Inputs {
		if err := ctx.Err(); err != nil {
			return err
		}
		src, err := os.ReadFile(in.Path)
		if err != nil {
			return zerr.With(domain.Wrap(err, domain.ErrFileReadFailed), "file", in.Path)
		}
		out, err := m.minify.Bytes(minifier.MediaJS, src)
		if err != nil {
			return zerr.With(domain.Wrap(err, domain.ErrMinifyFailed), "file", in.Rel)
		}
		if err := job.Store.Write(path.Join(job.Stage.Output, in.Rel), out); err != nil {
			return err
		}
		before += len(src)
		after += len(out)
	}
	if len(job.Inputs) > 0 {
		_, _ = fmt.Fprintf(job.Log, "minified %d script(s): %d -> %d bytes\n", len(job.Inputs), before, after)
	}
	return nil
}
