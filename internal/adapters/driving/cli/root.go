// Package cli provides the cobra command tree for docsync.
// Commands use package-level services that are either wired by the
// composition root through SetWiring or injected directly by tests.
package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docsync/internal/core/domain"
	"github.com/custodia-labs/docsync/internal/core/ports/driving"
	"github.com/custodia-labs/docsync/internal/logger"
)

// version is set at build time with -ldflags "-X .../cli.version=v1.2.3".
var version = "dev"

const (
	// needsAnnotation lists the services a command requires, comma separated.
	needsAnnotation = "docsync/needs"

	// rawConfigAnnotation marks commands that run without resolving settings.
	rawConfigAnnotation = "docsync/raw-config"
)

// Needs selects which services the composition root must build.
type Needs struct {
	Sync    bool
	Query   bool
	History bool
}

// Any reports whether any service is needed.
func (n Needs) Any() bool {
	return n.Sync || n.Query || n.History
}

// Services are the core services built for one command invocation.
type Services struct {
	Sync    driving.SyncOrchestrator
	Query   driving.QueryService
	History driving.HistoryService

	// Watch, when set, signals changes in the synced container.
	Watch func(ctx context.Context) (<-chan struct{}, error)

	// Close releases every handle opened by Build.
	Close func() error
}

// Wiring is implemented by the composition root.
type Wiring interface {
	// Settings returns the settings service for the given config directory
	// and .env file. Empty values select the defaults.
	Settings(configDir, envFile string) (driving.SettingsService, error)

	// Build constructs the services selected by needs.
	Build(ctx context.Context, settings *domain.Settings, needs Needs) (*Services, error)
}

var (
	wiring Wiring

	settingsService  driving.SettingsService
	syncOrchestrator driving.SyncOrchestrator
	queryService     driving.QueryService
	historyService   driving.HistoryService
	watchFunc        func(ctx context.Context) (<-chan struct{}, error)
	closeServices    func() error

	// currentSettings are the settings resolved for the running command.
	currentSettings *domain.Settings
)

// Global flags.
var (
	flagConfigDir string
	flagEnvFile   string
	flagVerbose   bool
	flagDebug     bool
	flagStore     string
	flagContainer string
	flagEngine    string
	flagEngineURL string
	flagIndex     string
	flagTikaURL   string
	flagWorkers   int
	flagDataDir   string
)

var rootCmd = &cobra.Command{
	Use:   "docsync",
	Short: "Sync documents from a store into a search index",
	Long: `docsync lists documents in a document store (Dropbox, Google Drive,
GitHub or a local directory), extracts their text with Apache Tika and
indexes it into Elasticsearch or an embedded Bleve index.

The same index can be queried from the command line, over HTTP,
through MCP or in an interactive terminal UI.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&flagConfigDir, "config-dir", "", "configuration directory (default ~/.docsync)")
	flags.StringVar(&flagEnvFile, "env-file", ".env", "dotenv file read for environment variables")
	flags.BoolVarP(&flagVerbose, "verbose", "v", false, "log progress at info level")
	flags.BoolVar(&flagDebug, "debug", false, "log at debug level")
	flags.StringVar(&flagStore, "store", "", "document store: dropbox, gdrive, github, filesystem")
	flags.StringVar(&flagContainer, "container", "", "folder, repository path or directory to sync")
	flags.StringVar(&flagEngine, "engine", "", "search engine: elasticsearch, bleve")
	flags.StringVar(&flagEngineURL, "engine-url", "", "Elasticsearch URL")
	flags.StringVar(&flagIndex, "index", "", "index name")
	flags.StringVar(&flagTikaURL, "tika-url", "", "Tika extraction endpoint")
	flags.IntVar(&flagWorkers, "workers", 0, "documents processed concurrently")
	flags.StringVar(&flagDataDir, "data-dir", "", "directory for run history, lock and embedded indexes")
}

// SetWiring installs the composition root.
func SetWiring(w Wiring) {
	wiring = w
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// Execute runs the root command and releases the services it built.
func Execute(ctx context.Context) error {
	defer func() {
		if closeServices == nil {
			return
		}
		if err := closeServices(); err != nil {
			logger.Warn("closing services: %v", err)
		}
		closeServices = nil
	}()
	return rootCmd.ExecuteContext(ctx)
}

// setup resolves settings, configures logging and builds the services the
// command declares.
func setup(cmd *cobra.Command, _ []string) error {
	if wiring != nil {
		svc, err := wiring.Settings(flagConfigDir, flagEnvFile)
		if err != nil {
			return fmt.Errorf("loading settings: %w", err)
		}
		settingsService = svc
	}

	if settingsService != nil && !skipResolve(cmd) {
		settings, err := settingsService.Resolve(flagOverrides(cmd))
		if err != nil {
			return err
		}
		currentSettings = settings
	}

	configureLogging(currentSettings)

	needs := needsOf(cmd)
	if wiring == nil || !needs.Any() {
		return nil
	}
	if currentSettings == nil {
		return errors.New("settings service not configured")
	}

	services, err := wiring.Build(cmd.Context(), currentSettings, needs)
	if err != nil {
		return err
	}
	syncOrchestrator = services.Sync
	queryService = services.Query
	historyService = services.History
	watchFunc = services.Watch
	closeServices = services.Close
	return nil
}

// configureLogging applies the configured level, then --verbose and --debug.
func configureLogging(settings *domain.Settings) {
	level := logger.LevelError
	if settings != nil {
		if l, err := logger.ParseLevel(settings.LogLevel); err == nil {
			level = l
		}
	}
	switch {
	case flagDebug:
		level = logger.LevelDebug
	case flagVerbose && level < logger.LevelInfo:
		level = logger.LevelInfo
	}
	logger.SetLevel(level)
}

// flagOverrides returns a function applying the global flags that were set
// on the command line.
func flagOverrides(cmd *cobra.Command) func(*domain.Settings) {
	return func(s *domain.Settings) {
		flags := cmd.Flags()
		if flags.Changed("store") {
			s.Store.Type = domain.StoreType(strings.ToLower(flagStore))
		}
		if flags.Changed("container") {
			s.Store.Container = flagContainer
		}
		if flags.Changed("engine") {
			s.Engine.Type = domain.EngineType(strings.ToLower(flagEngine))
		}
		if flags.Changed("engine-url") {
			s.Engine.URL = flagEngineURL
		}
		if flags.Changed("index") {
			s.Engine.Index = flagIndex
		}
		if flags.Changed("tika-url") {
			s.Extractor.URL = flagTikaURL
		}
		if flags.Changed("workers") {
			s.Sync.Workers = flagWorkers
		}
		if flags.Changed("data-dir") {
			s.DataDir = flagDataDir
		}
	}
}

// needsOf reads the services a command declared in its annotations.
func needsOf(cmd *cobra.Command) Needs {
	var n Needs
	for _, name := range strings.Split(cmd.Annotations[needsAnnotation], ",") {
		switch strings.TrimSpace(name) {
		case "sync":
			n.Sync = true
		case "query":
			n.Query = true
		case "history":
			n.History = true
		}
	}
	if f := cmd.Flags().Lookup("with-sync"); f != nil && f.Value.String() == "true" {
		n.Sync = true
	}
	return n
}

// skipResolve reports commands that must work with a broken configuration.
func skipResolve(cmd *cobra.Command) bool {
	return cmd.Annotations[rawConfigAnnotation] == "true"
}

// needs builds the annotation map for a command.
func needs(services ...string) map[string]string {
	return map[string]string{needsAnnotation: strings.Join(services, ",")}
}
