package driven

import "github.com/custodia-labs/docsync/internal/core/domain"

// ConfigStore provides access to persisted application configuration.
// Implementations handle persistence (e.g., TOML files).
type ConfigStore interface {
	// Load reads settings from storage. Missing storage yields defaults.
	Load() (*domain.Settings, error)

	// Save persists settings to storage.
	Save(settings *domain.Settings) error

	// Path returns the configuration file path.
	Path() string
}

// EnvSource overlays process environment onto settings.
type EnvSource interface {
	// Apply overwrites fields of settings for which a variable is set.
	Apply(settings *domain.Settings) error
}
