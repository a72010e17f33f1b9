package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/docsync/internal/core/domain"
	"github.com/custodia-labs/docsync/internal/core/ports/driving"
	"github.com/custodia-labs/docsync/internal/logger"
)

// progressInterval is how often the progress line is refreshed.
const progressInterval = 500 * time.Millisecond

var (
	syncWatch  bool
	syncFormat string
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Synchronise documents into the search index",
	Long: `Lists the configured container, extracts the text of every document with
the supported extension and upserts it into the index under the document
name. One document's failure never aborts the pass; an unreachable store
or engine does, and the command then exits non-zero.

With --watch the pass is repeated whenever the store reports a change.
Only the filesystem store supports watching.`,
	Args:        cobra.NoArgs,
	Annotations: needs("sync"),
	RunE:        runSync,
}

func init() {
	syncCmd.Flags().BoolVarP(&syncWatch, "watch", "w", false, "rerun when the container changes")
	syncCmd.Flags().StringVarP(&syncFormat, "format", "o", formatText, "report format: text, json, yaml")
	rootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, _ []string) error {
	if syncOrchestrator == nil {
		return errors.New("sync service not configured")
	}
	format, err := parseFormat(syncFormat)
	if err != nil {
		return err
	}

	ctx := cmd.Context()

	if !syncWatch {
		return syncOnce(ctx, cmd, format)
	}

	if watchFunc == nil {
		return errors.New("watch mode needs a store that reports changes (use --store filesystem)")
	}
	changes, err := watchFunc(ctx)
	if err != nil {
		return fmt.Errorf("watch failed: %w", err)
	}

	if err := syncOnce(ctx, cmd, format); err != nil {
		logger.Error("%v", err)
	}
	cmd.Println("Watching for changes (Ctrl+C to stop)...")

	for {
		select {
		case <-ctx.Done():
			return nil
		case _, ok := <-changes:
			if !ok {
				return nil
			}
			logger.Info("change detected, starting sync")
			if err := syncOnce(ctx, cmd, format); err != nil {
				logger.Error("%v", err)
			}
		}
	}
}

// syncOnce runs one pass and prints its report.
func syncOnce(ctx context.Context, cmd *cobra.Command, format string) error {
	out := cmd.OutOrStdout()

	var (
		report *domain.SyncReport
		err    error
	)
	if format == formatText && isTerminal(out) {
		report, err = syncWithProgress(ctx, cmd, syncOrchestrator)
	} else {
		report, err = syncOrchestrator.Run(ctx)
	}

	if report != nil {
		if format == formatText {
			printReport(out, report)
		} else if werr := writeStructured(out, format, report); werr != nil {
			return werr
		}
	}
	if err != nil {
		return fmt.Errorf("sync failed: %w", err)
	}
	return nil
}

// syncWithProgress runs sync while displaying progress updates.
func syncWithProgress(
	ctx context.Context,
	cmd *cobra.Command,
	syncOrch driving.SyncOrchestrator,
) (*domain.SyncReport, error) {
	type result struct {
		report *domain.SyncReport
		err    error
	}
	done := make(chan result, 1)
	go func() {
		report, err := syncOrch.Run(ctx)
		done <- result{report, err}
	}()

	ticker := time.NewTicker(progressInterval)
	defer ticker.Stop()

	shown := false
	for {
		select {
		case r := <-done:
			if shown {
				cmd.Print("\r\033[K")
			}
			return r.report, r.err
		case <-ticker.C:
			// Status is best effort.
			status, err := syncOrch.Status(ctx)
			if err != nil || status == nil || !status.Running {
				continue
			}
			cmd.Printf("\rProcessing... %d/%d documents (%d failed)",
				status.Processed(), status.Eligible, status.Failed)
			shown = true
		}
	}
}

// printReport writes the human-readable summary of a pass.
func printReport(w io.Writer, r *domain.SyncReport) {
	for _, f := range r.Failed {
		fmt.Fprintf(w, "FAILED %s: %s (%s)\n", f.Name, f.Reason, f.Message)
	}
	if r.Aborted() {
		fmt.Fprintf(w, "Sync aborted: %s\n", r.Fatal)
	}
	fmt.Fprintf(w, "Indexed %d of %d eligible documents (%d listed, %d failed) in %s.\n",
		r.Indexed, r.Eligible, r.Listed, len(r.Failed), r.Duration().Round(time.Millisecond))
	if r.IndexTotal >= 0 && !r.Aborted() {
		fmt.Fprintf(w, "Index %s now holds %d documents.\n", r.Index, r.IndexTotal)
	}
}

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
