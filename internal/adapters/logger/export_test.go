package logger

// ErrorEntry exposes errorEntry fields for white-box tests.
type ErrorEntry = errorEntry

var (
	CollectErrorEntries = collectErrorEntries
	FormatErrorEntries  = formatErrorEntries
)

// Message returns the entry message.
func (e ErrorEntry) Message() string { return e.message }

// Meta returns the entry metadata.
func (e ErrorEntry) Meta() map[string]any { return e.metadata }

// Depth returns the join depth of the entry.
func (e ErrorEntry) Depth() int { return e.depth }
