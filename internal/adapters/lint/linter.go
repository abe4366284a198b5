// Package lint validates built HTML.
package lint

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.trai.ch/sitepipe/internal/core/domain"
	"go.trai.ch/sitepipe/internal/core/ports"
	"go.trai.ch/zerr"
)

// Linter implements ports.StageHandler for domain.KindLintHTML.
type Linter struct{}

var _ ports.StageHandler = (*Linter)(nil)

// NewLinter returns a Linter.
func NewLinter() *Linter {
	return &Linter{}
}

// Handle checks every input and writes one line per violation to the job
// log. Any violation fails the stage with domain.ErrLintFailed.
func (l *Linter) Handle(ctx context.Context, job *ports.StageJob) error {
	var all []error
	for _, in := range job.Inputs {
		if err := ctx.Err(); err != nil {
			return err
		}

		violations, err := l.checkFile(job.Config, in)
		if err != nil {
			return err
		}
		for _, v := range violations {
			_, _ = fmt.Fprintln(job.Log, v.Error())
			all = append(all, v)
		}
	}

	if len(all) == 0 {
		_, _ = fmt.Fprintf(job.Log, "%d file(s) clean\n", len(job.Inputs))
		return nil
	}
	return zerr.With(domain.Wrap(errors.Join(all...), domain.ErrLintFailed), "violations", len(all))
}

func (l *Linter) checkFile(cfg *domain.Config, in domain.SourceFile) ([]Violation, error) {
	f, err := os.Open(in.Path)
	if err != nil {
		return nil, zerr.With(domain.Wrap(err, domain.ErrFileReadFailed), "file", in.Path)
	}
	defer func() { _ = f.Close() }()

	name := in.Path
	if rel, err := filepath.Rel(cfg.Root, in.Path); err == nil {
		name = filepath.ToSlash(rel)
	}

	violations, err := Check(name, f, cfg.LintRuleEnabled)
	if err != nil {
		return nil, zerr.With(domain.Wrap(err, domain.ErrFileReadFailed), "file", name)
	}
	return violations, nil
}
