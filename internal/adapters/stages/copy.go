package stages

import (
	"context"
	"fmt"
	"os"
	"path"

	"go.trai.ch/sitepipe/internal/core/domain"
	"go.trai.ch/sitepipe/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.StageHandler = (*Copier)(nil)

// Copier implements ports.StageHandler for domain.KindCopy. Files keep their
// path relative to the pattern base, below the stage output directory.
type Copier struct{}

// NewCopier returns a Copier.
func NewCopier() *Copier {
	return &Copier{}
}

// Handle copies every input.
func (c *Copier) Handle(ctx context.Context, job *ports.StageJob) error {
	for _, in := range job.Inputs {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := copyFile(job.Store, in.Path, path.Join(job.Stage.Output, in.Rel)); err != nil {
			return err
		}
	}
	if len(job.Inputs) > 0 {
		dest := job.Stage.Output
		if dest == "" {
			dest = "."
		}
		_, _ = fmt.Fprintf(job.Log, "copied %d file(s) to %s\n", len(job.Inputs), dest)
	}
	return nil
}

func copyFile(store ports.OutputStore, src, rel string) error {
	f, err := os.Open(src) //nolint:gosec // inputs come from the resolver
	if err != nil {
		return zerr.With(domain.Wrap(err, domain.ErrFileReadFailed), "file", src)
	}
	defer func() { _ = f.Close() }()
	return store.WriteStream(rel, f)
}
