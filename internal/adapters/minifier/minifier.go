// Package minifier configures tdewolff/minify for the three asset types sitepipe emits.
package minifier

import (
	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/css"
	"github.com/tdewolff/minify/v2/html"
	"github.com/tdewolff/minify/v2/js"
)

// Media types.
const (
	MediaHTML = "text/html"
	MediaCSS  = "text/css"
	MediaJS   = "application/javascript"
)

// CSSPrecision is the number of significant digits kept in CSS numbers.
const CSSPrecision = 5

// HTML returns a conservative HTML minifier. Document tags, end tags, quotes
// and default attribute values survive. Inline CSS is minified; inline
// scripts are left untouched because no JS minifier is registered.
func HTML() *minify.M {
	m := minify.New()
	m.Add(MediaHTML, &html.Minifier{
		KeepDocumentTags:    true,
		KeepEndTags:         true,
		KeepQuotes:          true,
		KeepDefaultAttrVals: true,
	})
	m.Add(MediaCSS, &css.Minifier{Precision: CSSPrecision})
	return m
}

// CSS returns the stylesheet minifier.
func CSS() *minify.M {
	m := minify.New()
	m.Add(MediaCSS, &css.Minifier{Precision: CSSPrecision})
	return m
}

// JS returns the script minifier.
func JS() *minify.M {
	m := minify.New()
	m.Add(MediaJS, &js.Minifier{})
	return m
}
