// Package tui provides an interactive terminal user interface for docsync.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"github.com/custodia-labs/docsync/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the TUI.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Query answers search requests.
	Query driving.QueryService

	// History lists past sync runs. Optional.
	History driving.HistoryService

	// Sync reports progress of a running pass. Optional.
	Sync driving.SyncOrchestrator
}

// NewPorts creates a new Ports aggregate with the given services.
func NewPorts(
	query driving.QueryService,
	history driving.HistoryService,
	sync driving.SyncOrchestrator,
) *Ports {
	return &Ports{
		Query:   query,
		History: history,
		Sync:    sync,
	}
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Query == nil {
		return ErrMissingQueryService
	}
	return nil
}
