package mcp

import (
	"github.com/custodia-labs/docsync/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Query answers search requests.
	Query driving.QueryService

	// Sync reports progress of a running sync pass.
	Sync driving.SyncOrchestrator

	// History exposes past sync reports.
	History driving.HistoryService
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Query == nil {
		return ErrMissingQueryService
	}
	// Sync and History are optional
	return nil
}
