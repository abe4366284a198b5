package ports

import "go.trai.ch/sitepipe/internal/core/domain"

// ConfigLoader defines the interface for loading the project configuration.
//
//go:generate mockgen -source=config_loader.go -destination=mocks/mock_config_loader.go -package=mocks
type ConfigLoader interface {
	// Load resolves the configuration for cwd.
	// A non-empty explicit path names the config file and disables discovery.
	// When no config file is found, the defaults rooted at cwd are returned.
	Load(cwd, explicit string) (*domain.Config, error)
}
