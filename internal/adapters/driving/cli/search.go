package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docsync/internal/core/domain"
)

var searchFormat string

var searchCmd = &cobra.Command{
	Use:   "search [term...]",
	Short: "Search indexed documents",
	Long: `Runs a full-text match of the term against the index and prints the
total hit count and the matching document names in relevance order.
Multiple arguments are joined with spaces; no argument searches for the
empty term.

If the engine answer cannot be interpreted, the raw engine payload is
printed instead.`,
	Annotations: needs("query"),
	RunE:        runSearch,
}

func init() {
	searchCmd.Flags().StringVarP(&searchFormat, "format", "o", formatText, "output format: text, json, yaml")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	if queryService == nil {
		return errors.New("query service not configured")
	}
	format, err := parseFormat(searchFormat)
	if err != nil {
		return err
	}

	term := strings.Join(args, " ")

	resp, err := queryService.Search(cmd.Context(), term)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if resp.Degraded() {
		cmd.PrintErrln("Unexpected engine response; raw payload follows.")
		return outputRaw(cmd, resp.Raw)
	}

	if format != formatText {
		return writeStructured(cmd.OutOrStdout(), format, resp.Result)
	}
	return outputSearchText(cmd, resp.Result)
}

// outputRaw prints the engine payload, indented when it is valid JSON.
func outputRaw(cmd *cobra.Command, raw []byte) error {
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		buf.Reset()
		buf.Write(raw)
	}
	cmd.Println(buf.String())
	return nil
}

func outputSearchText(cmd *cobra.Command, result *domain.QueryResult) error {
	if len(result.DocumentIDs) == 0 {
		cmd.Printf("No results found (%d hits).\n", result.TotalCount)
		return nil
	}

	if result.TotalCount > len(result.DocumentIDs) {
		cmd.Printf("%d hits, showing %d:\n", result.TotalCount, len(result.DocumentIDs))
	} else {
		cmd.Printf("%d hits:\n", result.TotalCount)
	}
	for i, id := range result.DocumentIDs {
		cmd.Printf("  [%d] %s\n", i+1, id)
	}
	return nil
}
