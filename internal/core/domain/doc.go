// Package domain defines the core business entities for docsync.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - DocumentRef: A listed entry in the remote document store
//   - IndexEntry: The (id, text) pair written to the search index
//   - IndexSchema: The fixed schema of the target index
//   - SyncReport: The per-run outcome of a sync pass
//   - QueryResult: The normalised answer to a search query
//   - Settings: Process configuration
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
