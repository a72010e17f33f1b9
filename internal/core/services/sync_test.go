package services

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docsync/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/docsync/internal/core/domain"
)

const testIndex = "docsearchdemo"

type syncFixture struct {
	store     *mockStore
	extractor *mockExtractor
	engine    *mockEngine
	runs      *memory.RunStore
	orch      *SyncOrchestrator
}

func newSyncFixture(t *testing.T, files map[string]string, opts SyncOptions) *syncFixture {
	t.Helper()
	if opts.Extension == "" {
		opts.Extension = ".pdf"
	}
	f := &syncFixture{
		store:     newMockStore(files),
		extractor: newMockExtractor(),
		engine:    newMockEngine(),
		runs:      memory.NewRunStore(),
	}
	f.orch = NewSyncOrchestrator(
		f.store,
		f.extractor,
		f.engine,
		NewIndexWriter(f.engine, testIndex),
		NewSpool(domain.SpoolMemory, "", 0),
		opts,
	)
	f.orch.SetRunStore(f.runs)
	return f
}

func TestSyncOrchestrator_Run_IndexesEligibleDocuments(t *testing.T) {
	f := newSyncFixture(t, map[string]string{
		"a.pdf":     "alpha text",
		"b.pdf":     "bravo text",
		"notes.txt": "ignored",
	}, SyncOptions{})

	report, err := f.orch.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, report.Listed)
	assert.Equal(t, 2, report.Eligible)
	assert.Equal(t, 2, report.Indexed)
	assert.Empty(t, report.Failed)
	assert.Equal(t, int64(2), report.IndexTotal)
	assert.Equal(t, "mock", report.StoreType)
	assert.Equal(t, testIndex, report.Index)
	assert.NotEmpty(t, report.RunID)
	assert.False(t, report.Aborted())
	assert.False(t, report.FinishedAt.Before(report.StartedAt))

	assert.Equal(t, map[string]string{"a.pdf": "alpha text", "b.pdf": "bravo text"}, f.engine.entries(testIndex))
}

func TestSyncOrchestrator_Run_Filtering(t *testing.T) {
	f := newSyncFixture(t, map[string]string{
		"a.pdf":      "alpha",
		"b.docx":     "bravo",
		"c":          "charlie",
		"d.pdf.bak":  "delta",
		"E.PDF":      "echo",
		".pdf":       "dotfile",
		"folder.pdf": "",
	}, SyncOptions{})
	// folder.pdf has no content and must be recorded, not skipped.

	report, err := f.orch.Run(context.Background())
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"id:a.pdf", "id:folder.pdf"}, f.store.fetchedIDs())
	assert.ElementsMatch(t, []string{"a.pdf"}, f.engine.upsertIDs())
	assert.Equal(t, 2, report.Eligible)
	assert.Equal(t, 1, report.Indexed)
	require.Len(t, report.Failed, 1)
	assert.Equal(t, "folder.pdf", report.Failed[0].Name)
}

func TestSyncOrchestrator_Run_ExtensionIgnoreCase(t *testing.T) {
	f := newSyncFixture(t, map[string]string{
		"a.pdf": "alpha",
		"E.PDF": "echo",
		".pdf":  "dotfile",
	}, SyncOptions{ExtensionIgnoreCase: true})

	report, err := f.orch.Run(context.Background())
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"E.PDF", "a.pdf"}, f.engine.upsertIDs())
	assert.Equal(t, 2, report.Eligible)
}

func TestSyncOrchestrator_Run_Idempotent(t *testing.T) {
	f := newSyncFixture(t, map[string]string{
		"a.pdf": "hello world",
		"b.pdf": "goodbye world",
	}, SyncOptions{})
	ctx := context.Background()

	first, err := f.orch.Run(ctx)
	require.NoError(t, err)
	second, err := f.orch.Run(ctx)
	require.NoError(t, err)

	assert.Equal(t, first.IndexTotal, second.IndexTotal)
	assert.Equal(t, int64(2), second.IndexTotal)
	assert.Len(t, f.engine.entries(testIndex), 2)
	assert.Equal(t, 1, f.engine.creates, "index is created once")
	assert.NotEqual(t, first.RunID, second.RunID)
}

func TestSyncOrchestrator_Run_Isolation(t *testing.T) {
	for _, workers := range []int{1, 4} {
		t.Run(map[int]string{1: "sequential", 4: "parallel"}[workers], func(t *testing.T) {
			f := newSyncFixture(t, map[string]string{
				"a.pdf": "alpha",
				"b.pdf": "broken",
				"c.pdf": "charlie",
				"d.pdf": "delta",
			}, SyncOptions{Workers: workers})
			f.extractor.fail["broken"] = errors.New("status 422")

			report, err := f.orch.Run(context.Background())
			require.NoError(t, err)

			assert.Equal(t, 3, report.Indexed)
			require.Len(t, report.Failed, 1)
			assert.Equal(t, "b.pdf", report.Failed[0].Name)
			assert.Equal(t, domain.ReasonExtractionFailed, report.Failed[0].Reason)
			assert.Contains(t, report.Failed[0].Message, "status 422")
			assert.NotContains(t, f.engine.entries(testIndex), "b.pdf")
			assert.Zero(t, f.store.openReaders(), "every fetched stream is closed")
		})
	}
}

func TestSyncOrchestrator_Run_EmptyTextGuard(t *testing.T) {
	f := newSyncFixture(t, map[string]string{
		"blank.pdf":  "scanned",
		"spaces.pdf": "spaces",
		"empty.pdf":  "",
		"ok.pdf":     "real text",
	}, SyncOptions{})
	f.extractor.texts["scanned"] = ""
	f.extractor.texts["spaces"] = " \n\t "

	report, err := f.orch.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, report.Indexed)
	require.Len(t, report.Failed, 3)
	for _, failure := range report.Failed {
		assert.Equal(t, domain.ReasonEmptyText, failure.Reason, failure.Name)
	}
	assert.Equal(t, []string{"ok.pdf"}, f.engine.upsertIDs())
	assert.Equal(t, 3, f.extractor.callCount(), "empty content never reaches the extractor")
}

func TestSyncOrchestrator_Run_PerDocumentFailures(t *testing.T) {
	f := newSyncFixture(t, map[string]string{
		"fetch.pdf":  "x",
		"write.pdf":  "y",
		"good.pdf":   "z",
		"broken.pdf": "w",
	}, SyncOptions{})
	f.store.fetchErrs["id:fetch.pdf"] = errors.New("path/not_found")
	f.engine.upsertErr["write.pdf"] = errors.New("mapper_parsing_exception")
	f.extractor.fail["w"] = domain.ErrExtractionFailed

	report, err := f.orch.Run(context.Background())
	require.NoError(t, err)

	reasons := make(map[string]domain.FailureReason)
	for _, failure := range report.Failed {
		reasons[failure.Name] = failure.Reason
	}
	assert.Equal(t, map[string]domain.FailureReason{
		"fetch.pdf":  domain.ReasonFetchFailed,
		"write.pdf":  domain.ReasonIndexWriteFailed,
		"broken.pdf": domain.ReasonExtractionFailed,
	}, reasons)
	assert.Equal(t, 1, report.Indexed)
}

func TestSyncOrchestrator_Run_SetupFatality(t *testing.T) {
	f := newSyncFixture(t, map[string]string{"a.pdf": "alpha"}, SyncOptions{})
	f.engine.createErr = errors.New("resource_already_exists_exception")

	report, err := f.orch.Run(context.Background())

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrIndexSetupFailed)
	require.NotNil(t, report)
	assert.True(t, report.Aborted())
	assert.Empty(t, f.store.fetchedIDs(), "no document processing after setup failure")
	assert.Zero(t, f.extractor.callCount())
	assert.Empty(t, f.engine.upsertIDs())
}

func TestSyncOrchestrator_Run_ConnectivityFatality(t *testing.T) {
	tests := []struct {
		name  string
		setup func(f *syncFixture)
		want  error
	}{
		{
			name:  "store rejects token",
			setup: func(f *syncFixture) { f.store.validateErr = errors.New("invalid_access_token") },
			want:  domain.ErrStoreConnectionFailed,
		},
		{
			name:  "engine unreachable",
			setup: func(f *syncFixture) { f.engine.infoErr = errors.New("connection refused") },
			want:  domain.ErrEngineConnectionFailed,
		},
		{
			name: "store drops mid-run",
			setup: func(f *syncFixture) {
				f.store.fetchErrs["id:a.pdf"] = domain.ErrStoreConnectionFailed
			},
			want: domain.ErrStoreConnectionFailed,
		},
		{
			name: "engine drops mid-run",
			setup: func(f *syncFixture) {
				f.engine.upsertErr["a.pdf"] = domain.ErrEngineConnectionFailed
			},
			want: domain.ErrEngineConnectionFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newSyncFixture(t, map[string]string{"a.pdf": "alpha"}, SyncOptions{})
			tt.setup(f)

			report, err := f.orch.Run(context.Background())

			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
			assert.True(t, domain.IsFatal(err))
			assert.True(t, report.Aborted())
			assert.Empty(t, report.Failed, "fatal errors are not recorded as document failures")
		})
	}
}

func TestSyncOrchestrator_Run_ListFailure(t *testing.T) {
	f := newSyncFixture(t, nil, SyncOptions{})
	f.store.listErr = errors.New("path/not_found")

	report, err := f.orch.Run(context.Background())

	require.Error(t, err)
	assert.Contains(t, report.Fatal, "path/not_found")
}

func TestSyncOrchestrator_Run_CountFailureIsNotFatal(t *testing.T) {
	f := newSyncFixture(t, map[string]string{"a.pdf": "alpha"}, SyncOptions{})
	f.engine.countErr = errors.New("timeout")

	report, err := f.orch.Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, report.Indexed)
	assert.Equal(t, int64(-1), report.IndexTotal)
}

func TestSyncOrchestrator_Run_Cancelled(t *testing.T) {
	f := newSyncFixture(t, map[string]string{"a.pdf": "alpha"}, SyncOptions{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := f.orch.Run(ctx)

	require.Error(t, err)
	assert.True(t, report.Aborted())
	assert.Empty(t, f.engine.upsertIDs())
}

func TestSyncOrchestrator_Run_SavesReport(t *testing.T) {
	f := newSyncFixture(t, map[string]string{"a.pdf": "alpha"}, SyncOptions{Container: "/docs"})

	report, err := f.orch.Run(context.Background())
	require.NoError(t, err)

	saved, err := f.runs.Get(context.Background(), report.RunID)
	require.NoError(t, err)
	assert.Equal(t, report.Indexed, saved.Indexed)
	assert.Equal(t, "/docs", saved.Container)
}

func TestSyncOrchestrator_Run_SavesAbortedReport(t *testing.T) {
	f := newSyncFixture(t, nil, SyncOptions{})
	f.engine.infoErr = errors.New("connection refused")

	report, err := f.orch.Run(context.Background())
	require.Error(t, err)

	saved, err := f.runs.Get(context.Background(), report.RunID)
	require.NoError(t, err)
	assert.True(t, saved.Aborted())
}

func TestSyncOrchestrator_Run_DiskSpoolCleansUp(t *testing.T) {
	dir := t.TempDir()
	f := newSyncFixture(t, map[string]string{
		"a.pdf": "alpha",
		"b.pdf": "bravo",
	}, SyncOptions{})
	f.extractor.fail["bravo"] = errors.New("boom")
	f.orch.spool = NewSpool(domain.SpoolDisk, dir, 0)

	_, err := f.orch.Run(context.Background())
	require.NoError(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "spool files are removed on success and failure")
}

func TestSyncOrchestrator_Run_SizeLimitIsFetchFailure(t *testing.T) {
	f := newSyncFixture(t, map[string]string{
		"big.pdf":   "0123456789",
		"small.pdf": "01",
	}, SyncOptions{})
	f.orch.spool = NewSpool(domain.SpoolMemory, "", 4)

	report, err := f.orch.Run(context.Background())
	require.NoError(t, err)

	require.Len(t, report.Failed, 1)
	assert.Equal(t, "big.pdf", report.Failed[0].Name)
	assert.Equal(t, domain.ReasonFetchFailed, report.Failed[0].Reason)
}

func TestSyncOrchestrator_Run_TextDump(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "dump")
	f := newSyncFixture(t, map[string]string{
		"a.pdf":        "alpha",
		"nested/b.pdf": "bravo",
		"failing.pdf":  "fail",
	}, SyncOptions{TextDumpDir: dir})
	f.extractor.fail["fail"] = errors.New("boom")

	_, err := f.orch.Run(context.Background())
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "a.pdf.txt"))
	require.NoError(t, err)
	assert.Equal(t, "alpha", string(data))

	_, err = os.Stat(filepath.Join(dir, "nested_b.pdf.txt"))
	assert.NoError(t, err)

	_, err = os.Stat(filepath.Join(dir, "failing.pdf.txt"))
	assert.True(t, os.IsNotExist(err))
}

func TestSyncOrchestrator_Run_Lock(t *testing.T) {
	f := newSyncFixture(t, map[string]string{"a.pdf": "alpha"}, SyncOptions{})
	lock := &mockLock{}
	f.orch.SetRunLock(lock)

	_, err := f.orch.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, lock.unlocked)
	assert.False(t, lock.held)

	lock.held = true
	report, err := f.orch.Run(context.Background())
	assert.ErrorIs(t, err, domain.ErrSyncInProgress)
	assert.Nil(t, report)

	status, err := f.orch.Status(context.Background())
	require.NoError(t, err)
	assert.False(t, status.Running, "a refused run leaves the orchestrator idle")
}

func TestSyncOrchestrator_Run_LockError(t *testing.T) {
	f := newSyncFixture(t, nil, SyncOptions{})
	f.orch.SetRunLock(&mockLock{tryErr: errors.New("permission denied")})

	_, err := f.orch.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "acquire run lock")
}

func TestSyncOrchestrator_Status(t *testing.T) {
	f := newSyncFixture(t, map[string]string{"a.pdf": "alpha"}, SyncOptions{})

	status, err := f.orch.Status(context.Background())
	require.NoError(t, err)
	assert.False(t, status.Running)
	assert.Empty(t, status.RunID)

	blocking := &blockingExtractor{started: make(chan struct{}), release: make(chan struct{})}
	f.orch.extractor = blocking

	done := make(chan error, 1)
	go func() {
		_, err := f.orch.Run(context.Background())
		done <- err
	}()

	<-blocking.started
	status, err = f.orch.Status(context.Background())
	require.NoError(t, err)
	assert.True(t, status.Running)
	assert.NotEmpty(t, status.RunID)
	assert.Equal(t, 1, status.Eligible)
	assert.Zero(t, status.Processed())

	_, err = f.orch.Run(context.Background())
	assert.ErrorIs(t, err, domain.ErrSyncInProgress)

	close(blocking.release)
	require.NoError(t, <-done)

	status, err = f.orch.Status(context.Background())
	require.NoError(t, err)
	assert.False(t, status.Running)
}

func TestNewSyncOrchestrator_NormalisesWorkers(t *testing.T) {
	orch := NewSyncOrchestrator(newMockStore(nil), newMockExtractor(), newMockEngine(),
		NewIndexWriter(newMockEngine(), testIndex), nil, SyncOptions{Workers: 0})

	assert.Equal(t, 1, orch.opts.Workers)
	assert.NotNil(t, orch.spool)
}

func TestDumpFileName(t *testing.T) {
	assert.Equal(t, "a.pdf.txt", dumpFileName("a.pdf"))
	assert.Equal(t, "docs_reports_q1.pdf.txt", dumpFileName("/docs/reports/q1.pdf"))
}

func TestPreview(t *testing.T) {
	assert.Equal(t, "hello world", preview("hello\n\nworld", 64))
	assert.Equal(t, "abc", preview("abcdef", 3))
}

// blockingExtractor blocks until released so status can be observed mid-run.
type blockingExtractor struct {
	started chan struct{}
	release chan struct{}
}

func (e *blockingExtractor) Extract(ctx context.Context, _ io.Reader) (string, error) {
	close(e.started)
	select {
	case <-e.release:
		return "text", nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}
