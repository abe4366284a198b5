// Package detector picks how sitepipe presents progress for the current process.
package detector

import (
	"os"

	"golang.org/x/term"
)

// OutputMode is the presentation chosen for a run.
type OutputMode int

const (
	// ModeAuto defers to DetectEnvironment.
	ModeAuto OutputMode = iota
	// ModeInteractive colors output for a terminal and may open a browser.
	ModeInteractive
	// ModeLinear prints plain ANSI logs for CI systems and pipes.
	ModeLinear
	// ModeJSON suppresses the renderer and logs JSON lines.
	ModeJSON
)

// String returns the mode name.
func (m OutputMode) String() string {
	switch m {
	case ModeInteractive:
		return "interactive"
	case ModeLinear:
		return "linear"
	case ModeJSON:
		return "json"
	default:
		return "auto"
	}
}

// IsCI reports whether the CI variable is set to a truthy value.
func IsCI() bool {
	ci := os.Getenv("CI")
	return ci == "true" || ci == "1"
}

// DetectEnvironment returns ModeLinear when stdout is not a terminal or CI is
// set, and ModeInteractive otherwise.
func DetectEnvironment() OutputMode {
	if !term.IsTerminal(int(os.Stdout.Fd())) || IsCI() {
		return ModeLinear
	}
	return ModeInteractive
}

// ResolveMode applies the --json and --ci flags on top of the detected mode.
// JSON wins over CI.
func ResolveMode(detected OutputMode, ci, json bool) OutputMode {
	switch {
	case json:
		return ModeJSON
	case ci:
		return ModeLinear
	case detected == ModeAuto:
		return DetectEnvironment()
	default:
		return detected
	}
}

// Interactive reports whether a human is likely watching the terminal.
func (m OutputMode) Interactive() bool {
	return m == ModeInteractive
}
