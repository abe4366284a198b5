// Package templates renders Twig-syntax pages to minified HTML.
package templates

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/flosch/pongo2/v6"
	"github.com/tdewolff/minify/v2"
	"go.trai.ch/sitepipe/internal/adapters/minifier"
	"go.trai.ch/sitepipe/internal/core/domain"
	"go.trai.ch/sitepipe/internal/core/ports"
	"go.trai.ch/zerr"
)

// Handler implements ports.StageHandler for domain.KindTemplates.
type Handler struct {
	minify *minify.M
}

var _ ports.StageHandler = (*Handler)(nil)

// NewHandler returns a template handler.
func NewHandler() *Handler {
	return &Handler{minify: minifier.HTML()}
}

// Handle renders every input with a fresh template set, so edited partials
// are never served from a cache.
func (h *Handler) Handle(ctx context.Context, job *ports.StageJob) error {
	data, err := LoadData(job.Config.DataFile())
	if err != nil {
		return err
	}

	loader, err := pongo2.NewLocalFileSystemLoader(job.Config.SourceDir())
	if err != nil {
		return zerr.With(domain.Wrap(err, domain.ErrTemplateRenderFailed), "dir", job.Config.SourceDir())
	}
	set := pongo2.NewSet(job.Stage.Name, loader)

	for _, in := range job.Inputs {
		if err := ctx.Err(); err != nil {
			return err
		}

		rel := path.Join(job.Stage.Output, strings.TrimSuffix(in.Rel, path.Ext(in.Rel))+".html")
		out, err := h.render(set, in.Path, data)
		if err != nil {
			return err
		}
		if err := job.Store.Write(rel, out); err != nil {
			return err
		}
		_, _ = fmt.Fprintf(job.Log, "%s -> %s\n", in.Rel, rel)
	}
	return nil
}

func (h *Handler) render(set *pongo2.TemplateSet, file string, data pongo2.Context) ([]byte, error) {
	tpl, err := set.FromFile(file)
	if err != nil {
		return nil, renderError(err, file)
	}
	page, err := tpl.ExecuteBytes(data)
	if err != nil {
		return nil, renderError(err, file)
	}
	out, err := h.minify.Bytes(minifier.MediaHTML, page)
	if err != nil {
		return nil, zerr.With(domain.Wrap(err, domain.ErrMinifyFailed), "file", file)
	}
	return out, nil
}

func renderError(err error, file string) error {
	line := 0
	var perr *pongo2.Error
	if errors.As(err, &perr) {
		if perr.Filename != "" {
			file = perr.Filename
		}
		line = perr.Line
	}
	wrapped := zerr.With(domain.Wrap(err, domain.ErrTemplateRenderFailed), "file", file)
	if line > 0 {
		wrapped = zerr.With(wrapped, "line", line)
	}
	return wrapped
}
