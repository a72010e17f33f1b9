package mcp

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/docsync/internal/core/domain"
)

const (
	// uriScheme is the custom URI scheme for docsync resources.
	uriScheme = "docsync://"

	// runsURI lists recent runs.
	runsURI = uriScheme + "runs"

	// recentRunsLimit caps the runs resource listing.
	recentRunsLimit = 20
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	// Static resource for listing recent runs.
	s.server.AddResource(&mcp.Resource{
		URI:         runsURI,
		Name:        "runs",
		Description: "Recent sync runs, newest first",
		MIMEType:    "application/json",
	}, s.handleRunsResource)

	// Template for one full run report.
	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: runsURI + "/{runId}",
		Name:        "run-report",
		Description: "Full report of a sync run, including per-document failures",
		MIMEType:    "application/json",
	}, s.handleRunResource)
}

// runInfo is the summary row of the runs resource.
type runInfo struct {
	RunID      string    `json:"run_id"`
	StartedAt  time.Time `json:"started_at"`
	Eligible   int       `json:"eligible"`
	Indexed    int       `json:"indexed"`
	Failed     int       `json:"failed"`
	IndexTotal int64     `json:"index_total"`
	Fatal      string    `json:"fatal,omitempty"`
	URI        string    `json:"uri"`
}

// handleRunsResource returns a summary of recent runs.
func (s *Server) handleRunsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.History == nil {
		return jsonResource(req.Params.URI, "[]"), nil
	}

	reports, err := s.ports.History.Recent(ctx, recentRunsLimit)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}

	infos := make([]runInfo, len(reports))
	for i := range reports {
		r := &reports[i]
		infos[i] = runInfo{
			RunID:      r.RunID,
			StartedAt:  r.StartedAt,
			Eligible:   r.Eligible,
			Indexed:    r.Indexed,
			Failed:     len(r.Failed),
			IndexTotal: r.IndexTotal,
			Fatal:      r.Fatal,
			URI:        uriScheme + "runs/" + r.RunID,
		}
	}

	text, err := marshalIndent(infos)
	if err != nil {
		return nil, fmt.Errorf("marshalling runs: %w", err)
	}
	return jsonResource(req.Params.URI, text), nil
}

// handleRunResource returns the full report of one run.
func (s *Server) handleRunResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.History == nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	// Extract runId from URI: docsync://runs/{runId}
	runID := extractRunID(req.Params.URI)
	if runID == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	report, err := s.ports.History.Get(ctx, runID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, mcp.ResourceNotFoundError(req.Params.URI)
		}
		return nil, fmt.Errorf("getting run: %w", err)
	}

	text, err := marshalIndent(report)
	if err != nil {
		return nil, fmt.Errorf("marshalling run: %w", err)
	}
	return jsonResource(req.Params.URI, text), nil
}

func jsonResource(uri, text string) *mcp.ReadResourceResult {
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     text,
		}},
	}
}

// extractRunID extracts the run ID from a URI like docsync://runs/{runId}.
func extractRunID(uri string) string {
	const prefix = uriScheme + "runs/"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}

	id := strings.TrimPrefix(uri, prefix)
	if strings.Contains(id, "/") {
		return ""
	}
	return id
}
