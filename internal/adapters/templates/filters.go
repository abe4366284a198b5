package templates

import (
	"bytes"

	"github.com/flosch/pongo2/v6"
	"github.com/yuin/goldmark"
)

var markdown = goldmark.New()

func init() {
	if !pongo2.FilterExists("markdown") {
		_ = pongo2.RegisterFilter("markdown", filterMarkdown)
	}
}

// filterMarkdown renders the value as CommonMark. The result is marked safe.
func filterMarkdown(in, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(in.String()), &buf); err != nil {
		return nil, &pongo2.Error{Sender: "filter:markdown", OrigError: err}
	}
	return pongo2.AsSafeValue(buf.String()), nil
}
