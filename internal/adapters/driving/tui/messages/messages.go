// Package messages defines Bubbletea message types for the TUI.
// Messages represent events and commands that flow through the Elm architecture.
package messages

import (
	"github.com/custodia-labs/docsync/internal/core/domain"
	"github.com/custodia-labs/docsync/internal/core/ports/driving"
)

// SearchRequested is a command to perform a search.
type SearchRequested struct {
	Query string
}

// SearchCompleted carries the query response back to the model.
type SearchCompleted struct {
	Query    string
	Response *driving.QueryResponse
	Err      error
}

// ViewChanged is sent when navigating between views.
type ViewChanged struct {
	View ViewType
}

// ViewType identifies which view is currently active.
type ViewType int

const (
	// ViewMenu is the main navigation menu.
	ViewMenu ViewType = iota
	// ViewSearch is the search input and results view.
	ViewSearch
	// ViewRuns lists past sync runs.
	ViewRuns
	// ViewHelp is the help/keybindings view.
	ViewHelp
)

// String returns the string representation of the view type.
func (v ViewType) String() string {
	switch v {
	case ViewMenu:
		return "menu"
	case ViewSearch:
		return "search"
	case ViewRuns:
		return "runs"
	case ViewHelp:
		return "help"
	default:
		return "unknown"
	}
}

// ErrorOccurred signals that an error happened.
type ErrorOccurred struct {
	Err error
}

// Quit signals the application should exit.
type Quit struct{}

// RunsLoaded carries recent sync reports from the history service.
type RunsLoaded struct {
	Reports []domain.SyncReport
	Err     error
}

// SyncStatusLoaded carries the progress of the running sync pass.
type SyncStatusLoaded struct {
	Status *driving.SyncStatus
	Err    error
}
