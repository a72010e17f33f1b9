package drive

// Config holds Google Drive store configuration.
type Config struct {
	// PageSize is the page size for list requests.
	PageSize int64

	// ExportWorkspaceFiles exports Docs, Sheets and Slides as PDF and lists
	// them with a ".pdf" suffix so they pass the extension filter.
	ExportWorkspaceFiles bool
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		PageSize:             100,
		ExportWorkspaceFiles: true,
	}
}
