// Package ports defines the core interfaces for the application.
package ports

import (
	"context"
	"io"
)

// Command describes an external process invocation.
type Command struct {
	// Argv is the executable followed by its arguments.
	Argv []string
	// Dir is the working directory.
	Dir string
	// Env holds extra "KEY=VALUE" entries appended to the allowed host environment.
	Env []string
}

// Executor defines the interface for running external tools such as the style compiler.
//
//go:generate mockgen -source=executor.go -destination=mocks/mock_executor.go -package=mocks
type Executor interface {
	// Execute runs cmd and streams its output.
	// It returns an error carrying the exit code if the process fails.
	Execute(ctx context.Context, cmd Command, stdout, stderr io.Writer) error
}
