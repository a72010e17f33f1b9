package mcp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/docsync/internal/logger"
)

const (
	// defaultVersion is reported when no build version is supplied.
	defaultVersion = "dev"

	readHeaderTimeout = 10 * time.Second
	shutdownTimeout   = 5 * time.Second
)

// Options tune the server identity advertised to clients.
type Options struct {
	// Version is the build version reported in the initialize handshake.
	Version string

	// Index names the index the search tool queries. It is included in the
	// server instructions so clients know what they are searching.
	Index string
}

// Server exposes docsync services to MCP clients.
type Server struct {
	ports  *Ports
	opts   Options
	server *mcp.Server

	// Background sync passes run under runCtx and are awaited on shutdown.
	runCtx     context.Context
	cancelRuns context.CancelFunc
	runsMu     sync.Mutex
	runs       sync.WaitGroup
	stopped    bool
}

// NewServer creates a server over ports. Tools and resources are
// registered according to which optional ports are set.
func NewServer(ports *Ports, opts Options) (*Server, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("validating ports: %w", err)
	}
	if opts.Version == "" {
		opts.Version = defaultVersion
	}

	impl := &mcp.Implementation{
		Name:    "docsync",
		Version: opts.Version,
	}

	s := &Server{
		ports: ports,
		opts:  opts,
	}
	s.runCtx, s.cancelRuns = context.WithCancel(context.Background())
	s.server = mcp.NewServer(impl, &mcp.ServerOptions{Instructions: s.instructions()})

	s.registerTools()
	s.registerResources()

	return s, nil
}

// instructions describes the exposed surface for clients.
func (s *Server) instructions() string {
	var b strings.Builder
	b.WriteString("Full-text search over documents synced by docsync")
	if s.opts.Index != "" {
		fmt.Fprintf(&b, " into index %q", s.opts.Index)
	}
	b.WriteString(". Use the search tool with a term; results are document names in relevance order.")
	if s.ports.History != nil {
		b.WriteString(" Past sync runs are listed at " + runsURI + ".")
	}
	if s.ports.Sync != nil {
		b.WriteString(" The sync tool starts a new pass; sync_status reports its progress.")
	}
	return b.String()
}

// Run serves over stdio until ctx is cancelled or the client disconnects.
func (s *Server) Run(ctx context.Context) error {
	logger.Debug("mcp: serving on stdio")
	defer s.stopRuns()
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// RunHTTP serves the streamable HTTP transport on addr until ctx is
// cancelled.
func (s *Server) RunHTTP(ctx context.Context, addr string) error {
	handler := mcp.NewStreamableHTTPHandler(func(_ *http.Request) *mcp.Server {
		return s.server
	}, nil)

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Warn("mcp: shutdown: %v", err)
		}
	}()

	defer s.stopRuns()

	logger.Info("mcp: serving on %s", addr)
	err := httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// startRun runs fn in the background under the server lifetime.
// It reports false once the server is shutting down.
func (s *Server) startRun(fn func(ctx context.Context)) bool {
	s.runsMu.Lock()
	defer s.runsMu.Unlock()
	if s.stopped {
		return false
	}
	s.runs.Add(1)
	go func() {
		defer s.runs.Done()
		fn(s.runCtx)
	}()
	return true
}

// stopRuns cancels background passes and waits for them to record their
// reports.
func (s *Server) stopRuns() {
	s.runsMu.Lock()
	s.stopped = true
	s.runsMu.Unlock()

	s.cancelRuns()
	s.runs.Wait()
}
