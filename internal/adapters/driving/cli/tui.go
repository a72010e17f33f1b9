package cli

import (
	"fmt"
	"os"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docsync/internal/adapters/driving/tui"
)

// tuiCmd represents the tui command.
var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive terminal UI",
	Long: `Launch the interactive terminal user interface for docsync.

The TUI searches the index as you type queries and lists recent sync runs
with their failures.

Controls:
  ↑/k, ↓/j - Navigate
  Enter    - Search / Select
  Esc      - Back
  q        - Quit`,
	Args:        cobra.NoArgs,
	Annotations: needs("query", "history"),
	RunE:        runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, _ []string) error {
	// Add panic recovery to get stack traces
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in TUI: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
		}
	}()

	app, err := newTUIApp()
	if err != nil {
		return err
	}
	app.WithContext(cmd.Context())

	if err := app.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}

// newTUIApp builds the TUI model from the configured services.
func newTUIApp() (*tui.App, error) {
	subtitle := ""
	if currentSettings != nil {
		subtitle = fmt.Sprintf("%s index %s", currentSettings.Engine.Type, currentSettings.Engine.Index)
	}

	ports := tui.NewPorts(queryService, historyService, syncOrchestrator)
	app, err := tui.NewApp(ports, subtitle)
	if err != nil {
		return nil, fmt.Errorf("failed to create TUI: %w", err)
	}
	return app, nil
}
