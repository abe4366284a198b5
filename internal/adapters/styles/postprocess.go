package styles

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"

	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
	"go.trai.ch/sitepipe/internal/adapters/minifier"
	"go.trai.ch/sitepipe/internal/core/domain"
	"go.trai.ch/sitepipe/internal/core/ports"
	"go.trai.ch/zerr"
)

// Postprocessor implements ports.StageHandler for domain.KindPostCSS.
// Each compiled stylesheet is minified, patched for flexbox bugs and
// autoprefixed, then written back in place.
type Postprocessor struct {
	minify *minify.M
}

var _ ports.StageHandler = (*Postprocessor)(nil)

// NewPostprocessor returns a Postprocessor.
func NewPostprocessor() *Postprocessor {
	return &Postprocessor{minify: minifier.CSS()}
}

// Handle rewrites every input stylesheet.
func (p *Postprocessor) Handle(ctx context.Context, job *ports.StageJob) error {
	for _, in := range job.Inputs {
		if err := ctx.Err(); err != nil {
			return err
		}
		src, err := os.ReadFile(in.Path)
		if err != nil {
			return zerr.With(domain.Wrap(err, domain.ErrFileReadFailed), "file", in.Path)
		}
		out, err := p.Process(src)
		if err != nil {
			return zerr.With(err, "file", in.Rel)
		}
		rel := path.Join(job.Stage.Output, in.Rel)
		if err := job.Store.Write(rel, out); err != nil {
			return err
		}
		_, _ = fmt.Fprintf(job.Log, "processed %s (%d -> %d bytes)\n", rel, len(src), len(out))
	}
	return nil
}

// Process runs the post-processing chain on one stylesheet. Running it on
// its own output changes nothing. A trailing sourceMappingURL comment
// survives minification.
func (p *Postprocessor) Process(src []byte) ([]byte, error) {
	body, mapURL := cutSourceMapURL(src)
	minified, err := p.minify.Bytes(minifier.MediaCSS, body)
	if err != nil {
		return nil, domain.Wrap(err, domain.ErrMinifyFailed)
	}
	out, err := rewrite(minified)
	if err != nil || mapURL == nil {
		return out, err
	}
	out = append(out, '\n')
	return append(out, mapURL...), nil
}

var sourceMapMarker = []byte("/*# sourceMappingURL=")

// cutSourceMapURL splits off the last sourceMappingURL comment when only
// whitespace follows it.
func cutSourceMapURL(src []byte) (body, comment []byte) {
	i := bytes.LastIndex(src, sourceMapMarker)
	if i < 0 {
		return src, nil
	}
	end := bytes.Index(src[i:], []byte("*/"))
	if end < 0 || len(bytes.TrimSpace(src[i+end+2:])) > 0 {
		return src, nil
	}
	return src[:i], bytes.Clone(src[i : i+end+2])
}

// rewrite re-serializes a minified stylesheet, applying the declaration passes.
func rewrite(src []byte) ([]byte, error) {
	p := css.NewParser(parse.NewInputBytes(src), false)
	var out bytes.Buffer
	var block *ruleset

	for {
		gt, _, data := p.Next()
		switch gt {
		case css.ErrorGrammar:
			if errors.Is(p.Err(), io.EOF) {
				return out.Bytes(), nil
			}
			return nil, zerr.With(domain.Wrap(p.Err(), domain.ErrStylePostProcessFailed), "offset", p.Offset())
		case css.BeginRulesetGrammar:
			writeTokens(&out, p.Values())
			out.WriteByte('{')
			block = newRuleset(block)
		case css.BeginAtRuleGrammar:
			out.Write(data)
			writeTokens(&out, p.Values())
			out.WriteByte('{')
			block = newRuleset(block)
		case css.EndRulesetGrammar, css.EndAtRuleGrammar:
			if b := out.Bytes(); len(b) > 0 && b[len(b)-1] == ';' {
				out.Truncate(out.Len() - 1)
			}
			out.WriteByte('}')
			if block != nil {
				block = block.parent
			}
		case css.AtRuleGrammar:
			out.Write(data)
			writeTokens(&out, p.Values())
			out.WriteByte(';')
		case css.DeclarationGrammar:
			decl := declaration{property: string(data), value: tokensString(p.Values())}
			decl.value = fixFlex(decl)
			variants := prefixed(decl)
			for _, d := range variants[:len(variants)-1] {
				if block != nil && block.has(d) {
					continue
				}
				d.writeTo(&out)
				if block != nil {
					block.add(d)
				}
			}
			// The authored declaration is always written, repeats included.
			decl.writeTo(&out)
			if block != nil {
				block.add(decl)
			}
		case css.CustomPropertyGrammar:
			out.Write(data)
			out.WriteByte(':')
			writeTokens(&out, p.Values())
			out.WriteByte(';')
		default:
			out.Write(data)
		}
	}
}

func writeTokens(w *bytes.Buffer, tokens []css.Token) {
	for _, t := range tokens {
		w.Write(t.Data)
	}
}

func tokensString(tokens []css.Token) string {
	var b bytes.Buffer
	writeTokens(&b, tokens)
	return b.String()
}

type declaration struct {
	property string
	value    string
}

func (d declaration) writeTo(w *bytes.Buffer) {
	w.WriteString(d.property)
	w.WriteByte(':')
	w.WriteString(d.value)
	w.WriteByte(';')
}

// ruleset tracks the declarations already emitted inside one block so
// generated vendor variants are written once.
type ruleset struct {
	parent *ruleset
	seen   map[declaration]struct{}
}

func newRuleset(parent *ruleset) *ruleset {
	return &ruleset{parent: parent, seen: make(map[declaration]struct{})}
}

func (r *ruleset) has(d declaration) bool {
	_, ok := r.seen[d]
	return ok
}

func (r *ruleset) add(d declaration) {
	r.seen[d] = struct{}{}
}
