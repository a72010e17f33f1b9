package domain

import (
	"fmt"
	"strings"
)

const unknownDescription = "Unknown"

// StoreType identifies a document store backend.
type StoreType string

// Available document stores.
const (
	// StoreDropbox is a Dropbox account folder.
	StoreDropbox StoreType = "dropbox"

	// StoreGoogleDrive is a Google Drive folder.
	StoreGoogleDrive StoreType = "gdrive"

	// StoreGitHub is a path inside a GitHub repository.
	StoreGitHub StoreType = "github"

	// StoreFilesystem is a local directory.
	StoreFilesystem StoreType = "filesystem"
)

// IsValid returns true if the store type is recognised.
func (t StoreType) IsValid() bool {
	switch t {
	case StoreDropbox, StoreGoogleDrive, StoreGitHub, StoreFilesystem:
		return true
	default:
		return false
	}
}

// RequiresToken returns true if the store needs an access token.
func (t StoreType) RequiresToken() bool {
	return t != StoreFilesystem
}

// TokenEnv returns the conventional environment variable holding the
// store's access token.
func (t StoreType) TokenEnv() string {
	switch t {
	case StoreDropbox:
		return "DROPBOX_TOKEN"
	case StoreGoogleDrive:
		return "GOOGLE_DRIVE_TOKEN"
	case StoreGitHub:
		return "GITHUB_TOKEN"
	default:
		return ""
	}
}

// Description returns a human-readable description of the store.
func (t StoreType) Description() string {
	switch t {
	case StoreDropbox:
		return "Dropbox"
	case StoreGoogleDrive:
		return "Google Drive"
	case StoreGitHub:
		return "GitHub repository"
	case StoreFilesystem:
		return "Local filesystem"
	default:
		return unknownDescription
	}
}

// EngineType identifies a search engine backend.
type EngineType string

// Available search engines.
const (
	// EngineElasticsearch talks to an Elasticsearch cluster over REST.
	EngineElasticsearch EngineType = "elasticsearch"

	// EngineBleve is an embedded on-disk index.
	EngineBleve EngineType = "bleve"
)

// IsValid returns true if the engine type is recognised.
func (t EngineType) IsValid() bool {
	return t == EngineElasticsearch || t == EngineBleve
}

// SpoolMode selects where fetched content is held before extraction.
type SpoolMode string

// Available spool modes.
const (
	// SpoolMemory holds content in a memory buffer.
	SpoolMemory SpoolMode = "memory"

	// SpoolDisk holds content in a temporary file.
	SpoolDisk SpoolMode = "disk"
)

// IsValid returns true if the spool mode is recognised.
func (m SpoolMode) IsValid() bool {
	return m == SpoolMemory || m == SpoolDisk
}

// HistoryBackend selects where sync reports are kept.
type HistoryBackend string

// Available history backends.
const (
	// HistorySQLite persists reports in <data dir>/runs.db.
	HistorySQLite HistoryBackend = "sqlite"

	// HistoryMemory keeps reports for the lifetime of the process only.
	HistoryMemory HistoryBackend = "memory"
)

// IsValid returns true if the history backend is recognised.
func (b HistoryBackend) IsValid() bool {
	return b == HistorySQLite || b == HistoryMemory
}

// StoreSettings configures the document store.
type StoreSettings struct {
	Type      StoreType `toml:"type" yaml:"type"`
	Container string    `toml:"container" yaml:"container"`
	Token     string    `toml:"token,omitempty" yaml:"token,omitempty"`
}

// ExtractorSettings configures the text-extraction service.
type ExtractorSettings struct {
	URL               string  `toml:"url" yaml:"url"`
	TimeoutSeconds    int     `toml:"timeout_seconds" yaml:"timeout_seconds"`
	MaxRetries        int     `toml:"max_retries" yaml:"max_retries"`
	RequestsPerSecond float64 `toml:"requests_per_second" yaml:"requests_per_second"`
}

// EngineSettings configures the search engine.
type EngineSettings struct {
	Type           EngineType `toml:"type" yaml:"type"`
	URL            string     `toml:"url" yaml:"url"`
	Index          string     `toml:"index" yaml:"index"`
	Username       string     `toml:"username,omitempty" yaml:"username,omitempty"`
	Password       string     `toml:"password,omitempty" yaml:"password,omitempty"`
	TimeoutSeconds int        `toml:"timeout_seconds" yaml:"timeout_seconds"`
	ResultSize     int        `toml:"result_size" yaml:"result_size"`
}

// SyncSettings configures the ingestion pipeline.
type SyncSettings struct {
	Extension           string    `toml:"extension" yaml:"extension"`
	ExtensionIgnoreCase bool      `toml:"extension_ignore_case,omitempty" yaml:"extension_ignore_case,omitempty"`
	Workers             int       `toml:"workers" yaml:"workers"`
	Spool               SpoolMode `toml:"spool" yaml:"spool"`
	SpoolDir            string    `toml:"spool_dir,omitempty" yaml:"spool_dir,omitempty"`
	MaxDocumentBytes    int64     `toml:"max_document_bytes" yaml:"max_document_bytes"`
	TextDumpDir         string    `toml:"text_dump_dir,omitempty" yaml:"text_dump_dir,omitempty"`
}

// HistorySettings configures run history.
type HistorySettings struct {
	Backend HistoryBackend `toml:"backend" yaml:"backend"`
}

// ServerSettings configures the query HTTP surface.
type ServerSettings struct {
	Addr string `toml:"addr" yaml:"addr"`
}

// Settings is the complete process configuration.
type Settings struct {
	// DataDir holds run history, the lock file and embedded indexes.
	DataDir string `toml:"data_dir,omitempty" yaml:"data_dir,omitempty"`

	// LogLevel is one of error, warn, info, debug.
	LogLevel string `toml:"log_level" yaml:"log_level"`

	Store     StoreSettings     `toml:"store" yaml:"store"`
	Extractor ExtractorSettings `toml:"extractor" yaml:"extractor"`
	Engine    EngineSettings    `toml:"engine" yaml:"engine"`
	Sync      SyncSettings      `toml:"sync" yaml:"sync"`
	History   HistorySettings   `toml:"history" yaml:"history"`
	Server    ServerSettings    `toml:"server" yaml:"server"`
}

// DefaultSettings returns settings matching the stock deployment:
// Dropbox root, Tika on localhost:9998 and Elasticsearch on localhost:9200.
func DefaultSettings() *Settings {
	return &Settings{
		LogLevel: "error",
		Store: StoreSettings{
			Type:      StoreDropbox,
			Container: "",
		},
		Extractor: ExtractorSettings{
			URL:               "http://localhost:9998/tika",
			TimeoutSeconds:    120,
			MaxRetries:        2,
			RequestsPerSecond: 0,
		},
		Engine: EngineSettings{
			Type:           EngineElasticsearch,
			URL:            "http://localhost:9200",
			Index:          "docsearchdemo",
			TimeoutSeconds: 30,
			ResultSize:     10,
		},
		Sync: SyncSettings{
			Extension:        ".pdf",
			Workers:          1,
			Spool:            SpoolMemory,
			MaxDocumentBytes: 64 * 1024 * 1024,
		},
		History: HistorySettings{
			Backend: HistorySQLite,
		},
		Server: ServerSettings{
			Addr: ":9000",
		},
	}
}

// Validate checks the settings for values the pipeline cannot work with.
func (s *Settings) Validate() error {
	if !s.Store.Type.IsValid() {
		return fmt.Errorf("%w: store type %q", ErrUnsupportedType, s.Store.Type)
	}
	if !s.Engine.Type.IsValid() {
		return fmt.Errorf("%w: engine type %q", ErrUnsupportedType, s.Engine.Type)
	}
	if strings.TrimSpace(s.Engine.Index) == "" {
		return fmt.Errorf("%w: engine index name is empty", ErrInvalidInput)
	}
	if !strings.HasPrefix(s.Sync.Extension, ".") || len(s.Sync.Extension) < 2 {
		return fmt.Errorf("%w: extension %q must start with a dot", ErrInvalidInput, s.Sync.Extension)
	}
	if s.Sync.Workers < 1 {
		return fmt.Errorf("%w: workers must be at least 1", ErrInvalidInput)
	}
	if !s.Sync.Spool.IsValid() {
		return fmt.Errorf("%w: spool mode %q", ErrInvalidInput, s.Sync.Spool)
	}
	if s.Sync.MaxDocumentBytes <= 0 {
		return fmt.Errorf("%w: max_document_bytes must be positive", ErrInvalidInput)
	}
	if !s.History.Backend.IsValid() {
		return fmt.Errorf("%w: history backend %q", ErrUnsupportedType, s.History.Backend)
	}
	switch strings.ToLower(s.LogLevel) {
	case "error", "warn", "info", "debug":
	default:
		return fmt.Errorf("%w: log level %q", ErrInvalidInput, s.LogLevel)
	}
	return nil
}

// Redacted returns a copy with secrets masked, for display.
func (s *Settings) Redacted() *Settings {
	c := *s
	if c.Store.Token != "" {
		c.Store.Token = "********"
	}
	if c.Engine.Password != "" {
		c.Engine.Password = "********"
	}
	return &c
}
