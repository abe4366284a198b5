package ports

import (
	"context"

	"go.trai.ch/sitepipe/internal/core/domain"
)

// Reloader receives reload notifications after successful watch runs.
//
//go:generate mockgen -source=devserver.go -destination=mocks/mock_devserver.go -package=mocks
type Reloader interface {
	// NotifyReload must not block.
	NotifyReload(ev domain.ReloadEvent)
}

// DevServer serves the output tree and pushes reloads to connected browsers.
type DevServer interface {
	Reloader
	// Start binds addr and serves rootDir in the background.
	// It returns once the listener is bound.
	Start(ctx context.Context, rootDir, addr string) error
	// URL returns the base URL of the bound listener.
	URL() string
	// Open shows the served site in the user's browser.
	Open() error
	// Shutdown disconnects reload clients and stops the HTTP server.
	Shutdown(ctx context.Context) error
}
