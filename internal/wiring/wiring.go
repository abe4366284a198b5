// Package wiring registers all Graft nodes for the application.
package wiring

import (
	// Register adapter nodes.
	_ "go.trai.ch/sitepipe/internal/adapters/config"
	_ "go.trai.ch/sitepipe/internal/adapters/devserver"
	_ "go.trai.ch/sitepipe/internal/adapters/fs"
	_ "go.trai.ch/sitepipe/internal/adapters/lint"
	_ "go.trai.ch/sitepipe/internal/adapters/logger"
	_ "go.trai.ch/sitepipe/internal/adapters/metrics"
	_ "go.trai.ch/sitepipe/internal/adapters/scripts"
	_ "go.trai.ch/sitepipe/internal/adapters/shell"
	_ "go.trai.ch/sitepipe/internal/adapters/sprite"
	_ "go.trai.ch/sitepipe/internal/adapters/stages"
	_ "go.trai.ch/sitepipe/internal/adapters/styles"
	_ "go.trai.ch/sitepipe/internal/adapters/templates"
	_ "go.trai.ch/sitepipe/internal/adapters/watcher"
	// Register app nodes.
	_ "go.trai.ch/sitepipe/internal/app"
)
