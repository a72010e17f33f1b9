// Package httpapi serves the query surface over HTTP.
//
// Routes:
//
//	GET /                health probe, always {}
//	GET /search?q=term   {"items": n, "paths": [...]} or the raw engine payload
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/custodia-labs/docsync/internal/core/domain"
	"github.com/custodia-labs/docsync/internal/core/ports/driving"
	"github.com/custodia-labs/docsync/internal/logger"
)

// ErrMissingQueryService is returned when the server is built without a
// query service.
var ErrMissingQueryService = errors.New("query service is required")

// shutdownTimeout bounds graceful shutdown.
const shutdownTimeout = 5 * time.Second

// Server exposes a QueryService over HTTP.
type Server struct {
	mu       sync.Mutex
	addr     string
	query    driving.QueryService
	server   *http.Server
	listener net.Listener
	errChan  chan error
}

// NewServer creates a server that will listen on addr.
func NewServer(addr string, query driving.QueryService) (*Server, error) {
	if query == nil {
		return nil, ErrMissingQueryService
	}
	return &Server{
		addr:    addr,
		query:   query,
		errChan: make(chan error, 1),
	}, nil
}

// Handler returns the routing handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleRoot)
	mux.HandleFunc("GET /search", s.handleSearch)
	return mux
}

// Start begins listening and serving in the background.
func (s *Server) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.server != nil {
		return errors.New("server already started")
	}

	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.addr, err)
	}
	s.listener = listener
	s.server = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			select {
			case s.errChan <- err:
			default:
			}
		}
	}()

	logger.Info("Serving queries on http://%s", listener.Addr())
	return nil
}

// Serve starts the server and blocks until ctx is cancelled or the server
// fails, then shuts it down.
func (s *Server) Serve(ctx context.Context) error {
	if err := s.Start(); err != nil {
		return err
	}

	select {
	case <-ctx.Done():
		return s.Stop()
	case err := <-s.errChan:
		_ = s.Stop()
		return err
	}
}

// Stop shuts the server down gracefully.
func (s *Server) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.server == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	err := s.server.Shutdown(ctx)
	s.server = nil
	return err
}

// Addr returns the bound address once started, else the configured one.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.addr
}

func (s *Server) handleRoot(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, struct{}{})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	term := r.URL.Query().Get("q")
	logger.Debug("GET /search q=%q", term)

	resp, err := s.query.Search(r.Context(), term)
	if err != nil {
		logger.Error("Search failed: %v", err)
		writeJSON(w, statusFor(err), errorBody{Error: err.Error()})
		return
	}

	if resp.Degraded() {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(resp.Raw)
		return
	}
	writeJSON(w, http.StatusOK, resp.Result)
}

type errorBody struct {
	Error string `json:"error"`
}

// statusFor maps a query error onto a response status. Engine-side
// failures are reported as a bad gateway.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrQueryFailed), errors.Is(err, domain.ErrEngineConnectionFailed):
		return http.StatusBadGateway
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
