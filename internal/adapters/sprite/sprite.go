// Package sprite merges SVG icons into one symbol sprite.
package sprite

import (
	"context"
	"fmt"
	"path"
	"slices"
	"strings"

	"github.com/beevik/etree"
	"go.trai.ch/sitepipe/internal/core/domain"
	"go.trai.ch/sitepipe/internal/core/ports"
	"go.trai.ch/zerr"
)

const svgNamespace = "http://www.w3.org/2000/svg"

// Builder implements ports.StageHandler for domain.KindSprite.
type Builder struct{}

var _ ports.StageHandler = (*Builder)(nil)

// NewBuilder returns a sprite Builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// Handle writes the sprite for all inputs. With no icons nothing is written.
func (b *Builder) Handle(ctx context.Context, job *ports.StageJob) error {
	if len(job.Inputs) == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	out, err := Build(job.Inputs)
	if err != nil {
		return err
	}
	rel := path.Join(job.Stage.Output, domain.SpriteFileName)
	if err := job.Store.Write(rel, out); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(job.Log, "merged %d icon(s) into %s\n", len(job.Inputs), rel)
	return nil
}

// Build returns a sprite holding one <symbol> per icon, ordered by path.
// Each symbol takes the icon's file stem as id and keeps its viewBox.
// Defs from every icon are hoisted into a single <defs> block.
func Build(icons []domain.SourceFile) ([]byte, error) {
	icons = slices.Clone(icons)
	slices.SortFunc(icons, func(a, b domain.SourceFile) int { return strings.Compare(a.Rel, b.Rel) })

	doc := etree.NewDocument()
	root := doc.CreateElement("svg")
	root.CreateAttr("xmlns", svgNamespace)
	defs := etree.NewElement("defs")

	ids := make(map[string]string, len(icons))
	for _, icon := range icons {
		id := strings.TrimSuffix(path.Base(icon.Rel), path.Ext(icon.Rel))
		if prev, dup := ids[id]; dup {
			return nil, domain.Annotate(domain.ErrSpriteBuildFailed, "id", id, "files", prev+","+icon.Rel)
		}
		ids[id] = icon.Rel

		symbol, err := symbolFor(icon, id, root, defs)
		if err != nil {
			return nil, err
		}
		root.AddChild(symbol)
	}

	if len(defs.ChildElements()) > 0 {
		root.InsertChildAt(0, defs)
	}

	doc.Indent(2)
	out, err := doc.WriteToBytes()
	if err != nil {
		return nil, domain.Wrap(err, domain.ErrSpriteBuildFailed)
	}
	return out, nil
}

// symbolFor converts one icon into a symbol. Namespace declarations the
// icon relies on, such as xmlns:xlink, move up to the sprite root.
func symbolFor(icon domain.SourceFile, id string, root, defs *etree.Element) (*etree.Element, error) {
	src := etree.NewDocument()
	if err := src.ReadFromFile(icon.Path); err != nil {
		return nil, zerr.With(domain.Wrap(err, domain.ErrSpriteBuildFailed), "file", icon.Rel)
	}
	svg := src.Root()
	if svg == nil || svg.Tag != "svg" {
		return nil, domain.Annotate(domain.ErrSpriteBuildFailed, "file", icon.Rel, "reason", "root element is not <svg>")
	}

	for _, attr := range svg.Attr {
		if attr.Space == "xmlns" {
			root.CreateAttr(attr.FullKey(), attr.Value)
		}
	}

	symbol := etree.NewElement("symbol")
	symbol.CreateAttr("id", id)
	if vb := svg.SelectAttrValue("viewBox", ""); vb != "" {
		symbol.CreateAttr("viewBox", vb)
	}
	for _, child := range svg.ChildElements() {
		if child.Tag == "defs" {
			for _, def := range child.ChildElements() {
				defs.AddChild(def.Copy())
			}
			continue
		}
		symbol.AddChild(child.Copy())
	}
	return symbol, nil
}
