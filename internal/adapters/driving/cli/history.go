package cli

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docsync/internal/core/domain"
)

var (
	historyLimit  int
	historyFormat string
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent sync runs",
	Long: `Lists recent sync runs, newest first, with their document counts.
Use "history show <run-id>" to see the failures of one run.`,
	Args:        cobra.NoArgs,
	Annotations: needs("history"),
	RunE:        runHistoryList,
}

var historyShowCmd = &cobra.Command{
	Use:         "show <run-id>",
	Short:       "Show one sync run",
	Args:        cobra.ExactArgs(1),
	Annotations: needs("history"),
	RunE:        runHistoryShow,
}

func init() {
	historyCmd.PersistentFlags().StringVarP(&historyFormat, "format", "o", formatText, "output format: text, json, yaml")
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "maximum number of runs")
	historyCmd.AddCommand(historyShowCmd)
	rootCmd.AddCommand(historyCmd)
}

func runHistoryList(cmd *cobra.Command, _ []string) error {
	if historyService == nil {
		return errors.New("history service not configured")
	}
	format, err := parseFormat(historyFormat)
	if err != nil {
		return err
	}

	reports, err := historyService.Recent(cmd.Context(), historyLimit)
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}

	if format != formatText {
		if reports == nil {
			reports = []domain.SyncReport{}
		}
		return writeStructured(cmd.OutOrStdout(), format, reports)
	}

	if len(reports) == 0 {
		cmd.Println("No sync runs recorded.")
		return nil
	}

	cmd.Printf("%-36s  %-19s  %-8s  %8s  %8s  %6s\n", "RUN", "STARTED", "OUTCOME", "ELIGIBLE", "INDEXED", "FAILED")
	for i := range reports {
		r := &reports[i]
		cmd.Printf("%-36s  %-19s  %-8s  %8d  %8d  %6d\n",
			r.RunID,
			r.StartedAt.Local().Format(time.DateTime),
			runOutcome(r),
			r.Eligible, r.Indexed, len(r.Failed),
		)
	}
	return nil
}

func runHistoryShow(cmd *cobra.Command, args []string) error {
	if historyService == nil {
		return errors.New("history service not configured")
	}
	format, err := parseFormat(historyFormat)
	if err != nil {
		return err
	}

	report, err := historyService.Get(cmd.Context(), args[0])
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("run not found: %s", args[0])
		}
		return fmt.Errorf("failed to get run: %w", err)
	}

	if format != formatText {
		return writeStructured(cmd.OutOrStdout(), format, report)
	}
	printRunDetail(cmd.OutOrStdout(), report)
	return nil
}

func printRunDetail(w io.Writer, r *domain.SyncReport) {
	fmt.Fprintf(w, "Run:       %s\n", r.RunID)
	fmt.Fprintf(w, "Outcome:   %s\n", runOutcome(r))
	fmt.Fprintf(w, "Store:     %s %s\n", r.StoreType, r.Container)
	fmt.Fprintf(w, "Index:     %s\n", r.Index)
	fmt.Fprintf(w, "Started:   %s\n", r.StartedAt.Local().Format(time.DateTime))
	fmt.Fprintf(w, "Duration:  %s\n", r.Duration().Round(time.Millisecond))
	fmt.Fprintf(w, "Listed:    %d\n", r.Listed)
	fmt.Fprintf(w, "Eligible:  %d\n", r.Eligible)
	fmt.Fprintf(w, "Indexed:   %d\n", r.Indexed)
	if r.IndexTotal >= 0 {
		fmt.Fprintf(w, "In index:  %d\n", r.IndexTotal)
	}
	if r.Aborted() {
		fmt.Fprintf(w, "Aborted:   %s\n", r.Fatal)
	}
	if len(r.Failed) > 0 {
		fmt.Fprintf(w, "\nFailures (%d):\n", len(r.Failed))
		for _, f := range r.Failed {
			fmt.Fprintf(w, "  %s  [%s] %s\n", f.Name, f.Reason, f.Message)
		}
	}
}

func runOutcome(r *domain.SyncReport) string {
	switch {
	case r.Aborted():
		return "aborted"
	case len(r.Failed) > 0:
		return "partial"
	default:
		return "ok"
	}
}
