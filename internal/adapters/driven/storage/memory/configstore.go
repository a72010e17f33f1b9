package memory

import (
	"sync"

	"github.com/custodia-labs/docsync/internal/core/domain"
	"github.com/custodia-labs/docsync/internal/core/ports/driven"
)

// Ensure ConfigStore implements the interface.
var _ driven.ConfigStore = (*ConfigStore)(nil)

// ConfigStore is an in-memory implementation of driven.ConfigStore for testing.
type ConfigStore struct {
	mu       sync.RWMutex
	settings *domain.Settings
}

// NewConfigStore creates a new in-memory config store holding defaults.
func NewConfigStore() *ConfigStore {
	return &ConfigStore{
		settings: domain.DefaultSettings(),
	}
}

// Load returns a copy of the held settings.
func (s *ConfigStore) Load() (*domain.Settings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	settings := *s.settings
	return &settings, nil
}

// Save replaces the held settings with a copy of settings.
func (s *ConfigStore) Save(settings *domain.Settings) error {
	if settings == nil {
		return domain.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	held := *settings
	s.settings = &held
	return nil
}

// Path returns an empty string as there is no backing file.
func (s *ConfigStore) Path() string {
	return ""
}
