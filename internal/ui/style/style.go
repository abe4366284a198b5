// Package style holds the palette and glyphs shared by the logger and the
// linear renderer.
package style

import "github.com/charmbracelet/lipgloss"

// Palette.
var (
	Accent = lipgloss.Color("#0EA5E9")
	Muted  = lipgloss.Color("#64748B")
	Green  = lipgloss.Color("#16A34A")
	Red    = lipgloss.Color("#DC2626")
	Yellow = lipgloss.Color("#D97706")
)

// Tags colors stage prefixes. A stage keeps its color across runs.
var Tags = []lipgloss.Color{
	"#0EA5E9",
	"#A855F7",
	"#14B8A6",
	"#F59E0B",
	"#EC4899",
	"#84CC16",
}

// Glyphs.
const (
	Check   = "✓"
	Cross   = "✗"
	Warning = "!"
	Arrow   = "→"
	Reload  = "↻"
)

// Hex returns the color as a hex string usable by termenv.
func Hex(c lipgloss.Color) string {
	return string(c)
}
