// Package build holds build-time information.
package build

// Build metadata. Each defaults to a placeholder and can be overwritten by
// linker flags.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)
