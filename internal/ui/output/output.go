// Package output builds termenv outputs with the color rules used across sitepipe.
package output

import (
	"io"
	"os"

	"github.com/muesli/termenv"
)

// Profile picks the color profile. NO_COLOR always wins.
// CI logs get plain ANSI since most CI viewers understand nothing richer.
func Profile(ci bool) termenv.Profile {
	if os.Getenv("NO_COLOR") != "" {
		return termenv.Ascii
	}
	if ci {
		return termenv.ANSI
	}
	return termenv.EnvColorProfile()
}

// New returns an output for an interactive terminal.
func New(w io.Writer, opts ...termenv.OutputOption) *termenv.Output {
	return newOutput(w, Profile(false), opts)
}

// NewCI returns an output for non-interactive logs.
func NewCI(w io.Writer, opts ...termenv.OutputOption) *termenv.Output {
	return newOutput(w, Profile(true), opts)
}

func newOutput(w io.Writer, p termenv.Profile, opts []termenv.OutputOption) *termenv.Output {
	if w == nil {
		w = os.Stderr
	}
	opts = append(opts, termenv.WithProfile(p), termenv.WithTTY(true))
	return termenv.NewOutput(w, opts...)
}
