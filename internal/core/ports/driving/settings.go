package driving

import "github.com/custodia-labs/docsync/internal/core/domain"

// SettingsService manages application settings.
type SettingsService interface {
	// Resolve layers defaults, the config file, the environment and the
	// given overrides, then validates the result. overrides may be nil.
	Resolve(overrides func(*domain.Settings)) (*domain.Settings, error)

	// Load returns the settings held in the config file, without the
	// environment applied.
	Load() (*domain.Settings, error)

	// Save validates and persists settings to the config file.
	Save(settings *domain.Settings) error

	// Path returns the config file path.
	Path() string
}
