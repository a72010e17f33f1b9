package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/docsync/internal/core/domain"
	"github.com/custodia-labs/docsync/internal/core/ports/driven"
	"github.com/custodia-labs/docsync/internal/core/ports/driving"
	"github.com/custodia-labs/docsync/internal/logger"
)

// Ensure SyncOrchestrator implements the interface.
var _ driving.SyncOrchestrator = (*SyncOrchestrator)(nil)

// SyncOptions configures a sync pass.
type SyncOptions struct {
	// Container is the folder, repository or directory to list.
	Container string

	// Extension is the only file extension ingested (e.g. ".pdf").
	Extension string

	// ExtensionIgnoreCase also ingests names like "REPORT.PDF".
	ExtensionIgnoreCase bool

	// Workers bounds concurrent document processing. Values below 1 mean 1.
	Workers int

	// TextDumpDir, when set, receives a <name>.txt copy of each extracted text.
	TextDumpDir string
}

// SyncOrchestrator drives documents from the store through extraction
// into the index. One document's failure never aborts the pass; only
// connectivity and index setup failures do.
type SyncOrchestrator struct {
	store     driven.DocumentStore
	extractor driven.TextExtractor
	engine    driven.SearchEngine
	writer    *IndexWriter
	spool     *Spool
	opts      SyncOptions

	runs driven.RunStore
	lock driven.RunLock
	now  func() time.Time

	// Status tracking
	mu     sync.RWMutex
	status *driving.SyncStatus
}

// NewSyncOrchestrator creates a new sync orchestrator.
// The store, extractor and engine handles are owned by the caller.
func NewSyncOrchestrator(
	store driven.DocumentStore,
	extractor driven.TextExtractor,
	engine driven.SearchEngine,
	writer *IndexWriter,
	spool *Spool,
	opts SyncOptions,
) *SyncOrchestrator {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if spool == nil {
		spool = NewSpool(domain.SpoolMemory, "", 0)
	}
	return &SyncOrchestrator{
		store:     store,
		extractor: extractor,
		engine:    engine,
		writer:    writer,
		spool:     spool,
		opts:      opts,
		now:       time.Now,
	}
}

// SetRunStore sets the store finished reports are saved to.
func (o *SyncOrchestrator) SetRunStore(runs driven.RunStore) {
	o.runs = runs
}

// SetRunLock sets the cross-process lock held for the duration of a pass.
func (o *SyncOrchestrator) SetRunLock(lock driven.RunLock) {
	o.lock = lock
}

// Run executes one sync pass. The report is returned even when the pass
// was aborted, in which case the error is the run-fatal cause.
func (o *SyncOrchestrator) Run(ctx context.Context) (*domain.SyncReport, error) {
	release, err := o.acquire()
	if err != nil {
		return nil, err
	}
	defer release()

	report := &domain.SyncReport{
		RunID:      uuid.NewString(),
		StoreType:  o.store.Type(),
		Container:  o.opts.Container,
		Index:      o.writer.Index(),
		StartedAt:  o.now(),
		Failed:     []domain.DocumentFailure{},
		IndexTotal: -1,
	}
	o.setStatus(&driving.SyncStatus{RunID: report.RunID, Running: true})
	defer o.clearStatus()

	logger.Info("Starting sync %s of %s %q into %s", report.RunID, report.StoreType, report.Container, report.Index)

	err = o.run(ctx, report)
	report.FinishedAt = o.now()
	if err != nil {
		report.Fatal = err.Error()
		logger.Error("Sync aborted: %v", err)
	} else {
		logger.Info("Sync complete: %d indexed, %d failed", report.Indexed, len(report.Failed))
	}

	o.save(ctx, report)
	return report, err
}

// Status returns progress of the running pass, or an idle status.
func (o *SyncOrchestrator) Status(_ context.Context) (*driving.SyncStatus, error) {
	o.mu.RLock()
	defer o.mu.RUnlock()

	if o.status == nil {
		return &driving.SyncStatus{}, nil
	}
	// Return a copy to avoid race conditions
	status := *o.status
	return &status, nil
}

// acquire guards against overlapping passes in this process and, when a
// lock is configured, across processes.
func (o *SyncOrchestrator) acquire() (func(), error) {
	o.mu.Lock()
	if o.status != nil {
		o.mu.Unlock()
		return nil, domain.ErrSyncInProgress
	}
	// Reserve the slot until Run installs the real status.
	o.status = &driving.SyncStatus{Running: true}
	o.mu.Unlock()

	if o.lock == nil {
		return func() {}, nil
	}

	ok, err := o.lock.TryLock()
	if err != nil || !ok {
		o.clearStatus()
		if err != nil {
			return nil, fmt.Errorf("acquire run lock: %w", err)
		}
		return nil, domain.ErrSyncInProgress
	}
	return func() {
		if err := o.lock.Unlock(); err != nil {
			logger.Warn("Failed to release run lock: %v", err)
		}
	}, nil
}

//nolint:gocognit // Orchestration function with necessary sequential steps
func (o *SyncOrchestrator) run(ctx context.Context, report *domain.SyncReport) error {
	logger.Section("Sync")

	// 1. Preflight both backing services
	if err := o.store.Validate(ctx); err != nil {
		return fatal(domain.ErrStoreConnectionFailed, "validate store", err)
	}
	info, err := o.engine.Info(ctx)
	if err != nil {
		return fatal(domain.ErrEngineConnectionFailed, "engine info", err)
	}
	logger.Debug("Connected to %s %s on %s", info.Name, info.Version, info.Cluster)

	// 2. Ensure the target index exists
	if err := o.writer.EnsureIndex(ctx); err != nil {
		return err
	}

	// 3. List and filter
	refs, err := o.store.List(ctx, o.opts.Container)
	if err != nil {
		return fmt.Errorf("list %q: %w", o.opts.Container, err)
	}
	eligible := domain.FilterEligible(refs, o.opts.Extension, o.opts.ExtensionIgnoreCase)
	report.Listed = len(refs)
	report.Eligible = len(eligible)
	o.updateStatus(func(s *driving.SyncStatus) { s.Eligible = len(eligible) })
	logger.Debug("Listed %d entries, %d eligible", len(refs), len(eligible))

	if o.opts.TextDumpDir != "" {
		if err := os.MkdirAll(o.opts.TextDumpDir, 0o755); err != nil {
			logger.Warn("Text dump disabled: %v", err)
			o.opts.TextDumpDir = ""
		}
	}

	// 4. Process documents with per-document isolation
	var reportMu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.opts.Workers)

	for _, ref := range eligible {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			err := o.processDocument(gctx, ref)
			if err == nil {
				reportMu.Lock()
				report.Indexed++
				reportMu.Unlock()
				o.updateStatus(func(s *driving.SyncStatus) { s.Indexed++ })
				return nil
			}
			if domain.IsFatal(err) || gctx.Err() != nil {
				return err
			}

			docErr := domain.NewDocumentError(ref.Name, err)
			logger.Error("Failed to index %s (%s): %v", ref.Name, docErr.Reason, err)
			reportMu.Lock()
			report.RecordFailure(docErr)
			reportMu.Unlock()
			o.updateStatus(func(s *driving.SyncStatus) { s.Failed++ })
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil && !domain.IsFatal(err) {
			return ctxErr
		}
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	// 5. Report the index size
	total, err := o.engine.Count(ctx, o.writer.Index())
	if err != nil {
		logger.Warn("Failed to count index %s: %v", o.writer.Index(), err)
	} else {
		report.IndexTotal = total
		logger.Info("Total %d documents in index %s", total, o.writer.Index())
	}
	return nil
}

// processDocument runs fetch, extract and upsert for one document.
// Content is released on every path.
func (o *SyncOrchestrator) processDocument(ctx context.Context, ref domain.DocumentRef) error {
	logger.Info("Downloading %s", ref.Name)

	content, err := o.fetch(ctx, ref)
	if err != nil {
		return err
	}
	defer func() {
		if err := content.Release(); err != nil {
			logger.Warn("Failed to release content of %s: %v", ref.Name, err)
		}
	}()

	if content.Size() == 0 {
		return fmt.Errorf("%w: document has no content", domain.ErrEmptyText)
	}

	text, err := o.extractor.Extract(ctx, content)
	if err != nil {
		if errors.Is(err, domain.ErrExtractionFailed) {
			return err
		}
		return fmt.Errorf("%w: %w", domain.ErrExtractionFailed, err)
	}
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("%w: extraction returned blank text", domain.ErrEmptyText)
	}
	logger.Debug("%s [%s...]", ref.Name, preview(text, 64))

	o.dumpText(ref.Name, text)

	return o.writer.Upsert(ctx, ref.Name, text)
}

func (o *SyncOrchestrator) fetch(ctx context.Context, ref domain.DocumentRef) (Content, error) {
	rc, err := o.store.Fetch(ctx, ref.RemoteID)
	if err != nil {
		if domain.IsFatal(err) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", domain.ErrFetchFailed, err)
	}
	defer rc.Close()

	content, err := o.spool.Acquire(rc)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrFetchFailed, err)
	}
	return content, nil
}

// dumpText writes the extracted text next to the run for inspection.
// Failures are logged and never fail the document.
func (o *SyncOrchestrator) dumpText(name, text string) {
	if o.opts.TextDumpDir == "" {
		return
	}
	path := filepath.Join(o.opts.TextDumpDir, dumpFileName(name))
	if err := os.WriteFile(path, []byte(text), 0o600); err != nil {
		logger.Warn("Failed to dump text of %s: %v", name, err)
	}
}

func (o *SyncOrchestrator) save(ctx context.Context, report *domain.SyncReport) {
	if o.runs == nil {
		return
	}
	if err := o.runs.Save(context.WithoutCancel(ctx), *report); err != nil {
		logger.Warn("Failed to save run %s: %v", report.RunID, err)
	}
}

func (o *SyncOrchestrator) setStatus(status *driving.SyncStatus) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.status = status
}

func (o *SyncOrchestrator) updateStatus(fn func(*driving.SyncStatus)) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.status != nil {
		fn(o.status)
	}
}

func (o *SyncOrchestrator) clearStatus() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.status = nil
}

// fatal wraps err in sentinel unless it already carries it.
func fatal(sentinel error, op string, err error) error {
	if errors.Is(err, sentinel) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%w: %s: %w", sentinel, op, err)
}

// dumpFileName flattens path separators so nested names stay in one directory.
func dumpFileName(name string) string {
	name = strings.NewReplacer("/", "_", "\\", "_").Replace(strings.TrimLeft(name, "/"))
	return name + ".txt"
}

func preview(text string, n int) string {
	text = strings.Join(strings.Fields(text), " ")
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	return string(runes[:n])
}
