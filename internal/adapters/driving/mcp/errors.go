// Package mcp provides an MCP (Model Context Protocol) server adapter for docsync.
// It lets AI assistants query the document index and inspect sync runs.
package mcp

import "errors"

// ErrMissingQueryService is returned when the query service is not provided.
var ErrMissingQueryService = errors.New("mcp: query service is required")

// errShuttingDown rejects sync requests once the server is stopping.
var errShuttingDown = errors.New("mcp: server is shutting down")
