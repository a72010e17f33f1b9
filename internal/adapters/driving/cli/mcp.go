package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docsync/internal/adapters/driving/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  `Commands for the Model Context Protocol (MCP) server integration.`,
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol server so AI assistants can query
the index.

By default, the server communicates over stdio using JSON-RPC.
Use --port to start an HTTP server instead.

The server offers a "search" tool. With --with-sync it also offers "sync",
which starts a pass in the background, and "sync_status". Past sync runs
are exposed as resources under docsync://runs.

Examples:
  # Stdio mode (default)
  docsync mcp serve

  # HTTP mode (for MCP Inspector, remote access)
  docsync mcp serve --port 8080

Client configuration:
  {
    "mcpServers": {
      "docsync": {
        "command": "/path/to/docsync",
        "args": ["mcp", "serve"]
      }
    }
  }`,
	Annotations: needs("query", "history"),
	RunE:        runMCPServe,
}

func init() {
	mcpServeCmd.Flags().IntP("port", "p", 0, "HTTP port (0 = use stdio)")
	mcpServeCmd.Flags().Bool("with-sync", false, "expose the sync and sync_status tools")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	port, err := cmd.Flags().GetInt("port")
	if err != nil {
		return fmt.Errorf("getting port flag: %w", err)
	}
	withSync, err := cmd.Flags().GetBool("with-sync")
	if err != nil {
		return fmt.Errorf("getting with-sync flag: %w", err)
	}

	ports := &mcp.Ports{
		Query:   queryService,
		History: historyService,
	}
	if withSync {
		ports.Sync = syncOrchestrator
	}

	opts := mcp.Options{Version: version}
	if currentSettings != nil {
		opts.Index = currentSettings.Engine.Index
	}
	server, err := mcp.NewServer(ports, opts)
	if err != nil {
		return err
	}

	if port > 0 {
		addr := fmt.Sprintf(":%d", port)
		fmt.Fprintf(cmd.OutOrStdout(), "MCP server listening on http://localhost%s\n", addr)
		return server.RunHTTP(cmd.Context(), addr)
	}

	return server.Run(cmd.Context())
}
