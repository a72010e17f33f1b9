package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docsync/internal/adapters/driving/httpapi"
)

// defaultServeAddr is used when neither --addr nor settings name an address.
const defaultServeAddr = ":9000"

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve search queries over HTTP",
	Long: `Starts an HTTP server answering queries against the index.

Routes:
  GET /              returns {}
  GET /search?q=...  returns {"items": N, "paths": [...]}

A missing q parameter searches for the empty term. When the engine answer
cannot be interpreted, the raw engine payload is returned unchanged.`,
	Args:        cobra.NoArgs,
	Annotations: needs("query"),
	RunE:        runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from settings, :9000)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	if queryService == nil {
		return errors.New("query service not configured")
	}

	addr := serveAddr
	if addr == "" && currentSettings != nil {
		addr = currentSettings.Server.Addr
	}
	if addr == "" {
		addr = defaultServeAddr
	}

	server, err := httpapi.NewServer(addr, queryService)
	if err != nil {
		return err
	}

	cmd.Printf("Serving queries on %s (Ctrl+C to stop)\n", addr)
	if err := server.Serve(cmd.Context()); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}
