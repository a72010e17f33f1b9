package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/docsync/internal/core/domain"
	"github.com/custodia-labs/docsync/internal/logger"
)

// SearchInput is the input schema for the search tool.
type SearchInput struct {
	Query string `json:"query" jsonschema:"free-text query matched against document text; may be empty"`
}

// SearchOutput is the output schema for the search tool.
type SearchOutput struct {
	Items    int      `json:"items"`
	Paths    []string `json:"paths"`
	Degraded bool     `json:"degraded,omitempty"`
	Raw      string   `json:"raw,omitempty"`
}

// SyncStatusInput is the input schema for the sync_status tool.
type SyncStatusInput struct{}

// SyncStatusOutput is the output schema for the sync_status tool.
type SyncStatusOutput struct {
	RunID     string `json:"run_id,omitempty"`
	Running   bool   `json:"running"`
	Eligible  int    `json:"eligible"`
	Indexed   int    `json:"indexed"`
	Failed    int    `json:"failed"`
	Processed int    `json:"processed"`
}

// SyncInput is the input schema for the sync tool.
type SyncInput struct{}

// SyncOutput is the output schema for the sync tool.
type SyncOutput struct {
	Started bool `json:"started"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search",
		Description: "Search the document index; returns the hit count and matching document names in relevance order",
	}, s.handleSearch)

	if s.ports.Sync != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "sync_status",
			Description: "Report progress of the sync pass currently running, if any",
		}, s.handleSyncStatus)

		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "sync",
			Description: "Start a sync pass in the background; poll sync_status for progress",
		}, s.handleSync)
	}
}

// handleSearch handles the search tool invocation.
func (s *Server) handleSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	resp, err := s.ports.Query.Search(ctx, input.Query)
	if err != nil {
		return nil, SearchOutput{}, err
	}

	if resp.Degraded() {
		return nil, SearchOutput{
			Paths:    []string{},
			Degraded: true,
			Raw:      string(resp.Raw),
		}, nil
	}

	paths := resp.Result.DocumentIDs
	if paths == nil {
		paths = []string{}
	}
	return nil, SearchOutput{
		Items: resp.Result.TotalCount,
		Paths: paths,
	}, nil
}

// handleSyncStatus handles the sync_status tool invocation.
func (s *Server) handleSyncStatus(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ SyncStatusInput,
) (*mcp.CallToolResult, SyncStatusOutput, error) {
	status, err := s.ports.Sync.Status(ctx)
	if err != nil {
		return nil, SyncStatusOutput{}, err
	}
	return nil, SyncStatusOutput{
		RunID:     status.RunID,
		Running:   status.Running,
		Eligible:  status.Eligible,
		Indexed:   status.Indexed,
		Failed:    status.Failed,
		Processed: status.Processed(),
	}, nil
}

// handleSync starts a pass that outlives the tool call but not the server.
func (s *Server) handleSync(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ SyncInput,
) (*mcp.CallToolResult, SyncOutput, error) {
	status, err := s.ports.Sync.Status(ctx)
	if err != nil {
		return nil, SyncOutput{}, err
	}
	if status.Running {
		return nil, SyncOutput{}, fmt.Errorf("%w: run %s", domain.ErrSyncInProgress, status.RunID)
	}

	started := s.startRun(func(runCtx context.Context) {
		report, err := s.ports.Sync.Run(runCtx)
		if err != nil {
			logger.Error("sync: %v", err)
			return
		}
		logger.Info("sync %s: indexed %d of %d, %d failed",
			report.RunID, report.Indexed, report.Eligible, len(report.Failed))
	})
	if !started {
		return nil, SyncOutput{}, errShuttingDown
	}

	return nil, SyncOutput{Started: true}, nil
}

// marshalIndent renders v for a resource body.
func marshalIndent(v any) (string, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}
