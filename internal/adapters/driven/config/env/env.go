// Package env overlays environment variables onto settings.
// Variables come from the process environment and, with lower precedence,
// from .env files read with godotenv.
package env

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/custodia-labs/docsync/internal/core/domain"
	"github.com/custodia-labs/docsync/internal/core/ports/driven"
)

// Ensure Source implements the interface.
var _ driven.EnvSource = (*Source)(nil)

// Recognised variables.
const (
	VarStore      = "DOCSYNC_STORE"
	VarContainer  = "DOCSYNC_CONTAINER"
	VarStoreToken = "DOCSYNC_STORE_TOKEN"
	VarTikaURL    = "TIKA_URL"
	VarEngine     = "DOCSYNC_ENGINE"
	VarESURL      = "ES_URL"
	VarESIndex    = "ES_INDEX"
	VarESUsername = "ES_USERNAME"
	VarESPassword = "ES_PASSWORD"
	VarDataDir    = "DOCSYNC_DATA_DIR"
	VarLogLevel   = "DOCSYNC_LOG_LEVEL"
	VarWorkers    = "DOCSYNC_WORKERS"
	VarHistory    = "DOCSYNC_HISTORY"
)

// Source resolves variables from a lookup function.
type Source struct {
	lookup func(string) (string, bool)
}

// New returns a Source over the process environment, falling back to the
// given .env files. Missing files are skipped.
func New(files ...string) (*Source, error) {
	dotenv := make(map[string]string)
	for _, file := range files {
		vars, err := godotenv.Read(file)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("reading %s: %w", file, err)
		}
		for k, v := range vars {
			if _, seen := dotenv[k]; !seen {
				dotenv[k] = v
			}
		}
	}

	return NewWithLookup(func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			return v, true
		}
		v, ok := dotenv[key]
		return v, ok
	}), nil
}

// NewWithLookup returns a Source backed by lookup.
func NewWithLookup(lookup func(string) (string, bool)) *Source {
	return &Source{lookup: lookup}
}

// Apply overwrites fields of settings for which a non-empty variable is set.
// The store type is applied first so the token fallback follows it.
func (s *Source) Apply(settings *domain.Settings) error {
	if v, ok := s.get(VarStore); ok {
		settings.Store.Type = domain.StoreType(strings.ToLower(v))
	}
	if v, ok := s.get(VarContainer); ok {
		settings.Store.Container = v
	}
	if v, ok := s.get(VarStoreToken); ok {
		settings.Store.Token = v
	} else if name := settings.Store.Type.TokenEnv(); name != "" {
		if v, ok := s.get(name); ok {
			settings.Store.Token = v
		}
	}

	if v, ok := s.get(VarTikaURL); ok {
		settings.Extractor.URL = v
	}

	if v, ok := s.get(VarEngine); ok {
		settings.Engine.Type = domain.EngineType(strings.ToLower(v))
	}
	if v, ok := s.get(VarESURL); ok {
		settings.Engine.URL = normaliseURL(v)
	}
	if v, ok := s.get(VarESIndex); ok {
		settings.Engine.Index = v
	}
	if v, ok := s.get(VarESUsername); ok {
		settings.Engine.Username = v
	}
	if v, ok := s.get(VarESPassword); ok {
		settings.Engine.Password = v
	}

	if v, ok := s.get(VarDataDir); ok {
		settings.DataDir = v
	}
	if v, ok := s.get(VarLogLevel); ok {
		settings.LogLevel = strings.ToLower(v)
	}
	if v, ok := s.get(VarHistory); ok {
		settings.History.Backend = domain.HistoryBackend(strings.ToLower(v))
	}
	if v, ok := s.get(VarWorkers); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: %s=%q is not a number", domain.ErrInvalidInput, VarWorkers, v)
		}
		settings.Sync.Workers = n
	}
	return nil
}

func (s *Source) get(key string) (string, bool) {
	v, ok := s.lookup(key)
	v = strings.TrimSpace(v)
	return v, ok && v != ""
}

// normaliseURL adds a scheme to bare host:port values such as "localhost:9200".
func normaliseURL(v string) string {
	if strings.Contains(v, "://") {
		return v
	}
	return "http://" + v
}
