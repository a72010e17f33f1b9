package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/custodia-labs/docsync/internal/adapters/driven/config/env"
	"github.com/custodia-labs/docsync/internal/adapters/driven/config/file"
	"github.com/custodia-labs/docsync/internal/adapters/driven/extractor/tika"
	"github.com/custodia-labs/docsync/internal/adapters/driven/lock"
	"github.com/custodia-labs/docsync/internal/adapters/driven/search"
	"github.com/custodia-labs/docsync/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/docsync/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/docsync/internal/adapters/driving/cli"
	"github.com/custodia-labs/docsync/internal/connectors"
	"github.com/custodia-labs/docsync/internal/core/domain"
	"github.com/custodia-labs/docsync/internal/core/ports/driven"
	"github.com/custodia-labs/docsync/internal/core/ports/driving"
	"github.com/custodia-labs/docsync/internal/core/services"
	"github.com/custodia-labs/docsync/internal/logger"
)

// wiring is the composition root. Every handle it opens is released by the
// Close function of the returned services.
type wiring struct{}

var _ cli.Wiring = (*wiring)(nil)

// Settings builds the settings service over the TOML config file and the
// environment.
func (w *wiring) Settings(configDir, envFile string) (driving.SettingsService, error) {
	store, err := file.NewConfigStore(configDir)
	if err != nil {
		return nil, fmt.Errorf("config directory: %w", err)
	}

	var files []string
	if envFile != "" {
		files = append(files, envFile)
	}
	source, err := env.New(files...)
	if err != nil {
		return nil, err
	}
	return services.NewSettingsService(store, source), nil
}

// Build constructs the services selected by needs.
func (w *wiring) Build(ctx context.Context, settings *domain.Settings, needs cli.Needs) (_ *cli.Services, err error) {
	var closers []func() error
	closeAll := func() error {
		var errs []error
		for i := len(closers) - 1; i >= 0; i-- {
			errs = append(errs, closers[i]())
		}
		closers = nil
		return errors.Join(errs...)
	}
	defer func() {
		if err != nil {
			_ = closeAll()
		}
	}()

	dataDir, err := resolveDataDir(settings.DataDir)
	if err != nil {
		return nil, err
	}
	logger.Debug("data directory: %s", dataDir)

	out := &cli.Services{}

	var engine driven.SearchEngine
	if needs.Query || needs.Sync {
		engine, err = search.NewEngine(settings.Engine, dataDir)
		if err != nil {
			return nil, err
		}
		closers = append(closers, engine.Close)
		out.Query = services.NewQueryService(engine, settings.Engine.Index, settings.Engine.ResultSize)
	}

	var runs driven.RunStore
	if needs.History || needs.Sync {
		runs, err = newRunStore(settings.History.Backend, dataDir)
		if err != nil {
			return nil, err
		}
		closers = append(closers, runs.Close)
		out.History = services.NewHistoryService(runs)
	}

	if needs.Sync {
		store, err := connectors.NewStore(ctx, settings.Store)
		if err != nil {
			return nil, err
		}
		closers = append(closers, store.Close)

		extractor := tika.New(tika.Config{
			URL:               settings.Extractor.URL,
			Timeout:           time.Duration(settings.Extractor.TimeoutSeconds) * time.Second,
			MaxRetries:        settings.Extractor.MaxRetries,
			RequestsPerSecond: settings.Extractor.RequestsPerSecond,
		})

		orchestrator := services.NewSyncOrchestrator(
			store,
			extractor,
			engine,
			services.NewIndexWriter(engine, settings.Engine.Index),
			services.NewSpool(settings.Sync.Spool, settings.Sync.SpoolDir, settings.Sync.MaxDocumentBytes),
			services.SyncOptions{
				Container:           settings.Store.Container,
				Extension:           settings.Sync.Extension,
				ExtensionIgnoreCase: settings.Sync.ExtensionIgnoreCase,
				Workers:             settings.Sync.Workers,
				TextDumpDir:         settings.Sync.TextDumpDir,
			},
		)
		orchestrator.SetRunStore(runs)
		orchestrator.SetRunLock(lock.NewFileLock(dataDir))
		out.Sync = orchestrator

		if watcher, ok := store.(driven.Watcher); ok {
			container := settings.Store.Container
			out.Watch = func(ctx context.Context) (<-chan struct{}, error) {
				return watcher.Watch(ctx, container)
			}
		}
	}

	out.Close = closeAll
	return out, nil
}

// newRunStore opens the configured run history.
func newRunStore(backend domain.HistoryBackend, dataDir string) (driven.RunStore, error) {
	switch backend {
	case domain.HistoryMemory:
		return memory.NewRunStore(), nil
	case domain.HistorySQLite, "":
		db, err := sqlite.NewStore(dataDir)
		if err != nil {
			return nil, fmt.Errorf("run history: %w", err)
		}
		return db.RunStore(), nil
	default:
		return nil, fmt.Errorf("%w: history backend %q", domain.ErrUnsupportedType, backend)
	}
}

// resolveDataDir returns dir, or ~/.docsync/data when dir is empty.
func resolveDataDir(dir string) (string, error) {
	if dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".docsync", "data"), nil
}
