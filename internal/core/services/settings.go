package services

import (
	"fmt"

	"github.com/custodia-labs/docsync/internal/core/domain"
	"github.com/custodia-labs/docsync/internal/core/ports/driven"
	"github.com/custodia-labs/docsync/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
	env         driven.EnvSource
}

// NewSettingsService creates a new settings service. env may be nil, in
// which case no environment overlay is applied.
func NewSettingsService(configStore driven.ConfigStore, env driven.EnvSource) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		env:         env,
	}
}

// Resolve returns the effective settings for this process.
func (s *SettingsService) Resolve(overrides func(*domain.Settings)) (*domain.Settings, error) {
	settings, err := s.configStore.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	if s.env != nil {
		if err := s.env.Apply(settings); err != nil {
			return nil, fmt.Errorf("apply environment: %w", err)
		}
	}

	if overrides != nil {
		overrides(settings)
	}

	if err := settings.Validate(); err != nil {
		return nil, err
	}
	return settings, nil
}

// Load returns the persisted settings.
func (s *SettingsService) Load() (*domain.Settings, error) {
	settings, err := s.configStore.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return settings, nil
}

// Save persists settings after validating them.
func (s *SettingsService) Save(settings *domain.Settings) error {
	if settings == nil {
		return domain.ErrInvalidInput
	}
	if err := settings.Validate(); err != nil {
		return err
	}
	if err := s.configStore.Save(settings); err != nil {
		return fmt.Errorf("save config: %w", err)
	}
	return nil
}

// Path returns the config file path.
func (s *SettingsService) Path() string {
	return s.configStore.Path()
}
