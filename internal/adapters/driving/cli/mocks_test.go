package cli

import (
	"bytes"
	"context"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/custodia-labs/docsync/internal/core/domain"
	"github.com/custodia-labs/docsync/internal/core/ports/driving"
)

// mockSyncOrchestrator implements driving.SyncOrchestrator for testing.
type mockSyncOrchestrator struct {
	report *domain.SyncReport
	err    error
	status *driving.SyncStatus
	runs   int
}

func (m *mockSyncOrchestrator) Run(_ context.Context) (*domain.SyncReport, error) {
	m.runs++
	return m.report, m.err
}

func (m *mockSyncOrchestrator) Status(_ context.Context) (*driving.SyncStatus, error) {
	if m.status == nil {
		return &driving.SyncStatus{}, nil
	}
	return m.status, nil
}

// mockQueryService implements driving.QueryService for testing.
type mockQueryService struct {
	resp  *driving.QueryResponse
	err   error
	terms []string
}

func (m *mockQueryService) Search(_ context.Context, term string) (*driving.QueryResponse, error) {
	m.terms = append(m.terms, term)
	return m.resp, m.err
}

// mockHistoryService implements driving.HistoryService for testing.
type mockHistoryService struct {
	reports []domain.SyncReport
	err     error
	limit   int
}

func (m *mockHistoryService) Recent(_ context.Context, limit int) ([]domain.SyncReport, error) {
	m.limit = limit
	return m.reports, m.err
}

func (m *mockHistoryService) Get(_ context.Context, runID string) (*domain.SyncReport, error) {
	if m.err != nil {
		return nil, m.err
	}
	for i := range m.reports {
		if m.reports[i].RunID == runID {
			return &m.reports[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

// mockWiring implements Wiring for testing.
type mockWiring struct {
	settings driving.SettingsService
	services *Services
	buildErr error

	configDir string
	needs     Needs
	built     *domain.Settings
	closed    bool
}

func (m *mockWiring) Settings(configDir, _ string) (driving.SettingsService, error) {
	m.configDir = configDir
	return m.settings, nil
}

func (m *mockWiring) Build(_ context.Context, settings *domain.Settings, needs Needs) (*Services, error) {
	m.needs = needs
	m.built = settings
	if m.buildErr != nil {
		return nil, m.buildErr
	}
	svc := *m.services
	svc.Close = func() error {
		m.closed = true
		return nil
	}
	return &svc, nil
}

var (
	_ driving.SyncOrchestrator = (*mockSyncOrchestrator)(nil)
	_ driving.QueryService     = (*mockQueryService)(nil)
	_ driving.HistoryService   = (*mockHistoryService)(nil)
	_ Wiring                   = (*mockWiring)(nil)
)

// sampleReport returns a finished report with one failure.
func sampleReport() *domain.SyncReport {
	return &domain.SyncReport{
		RunID:     "run-1",
		StoreType: "dropbox",
		Index:     "docsearchdemo",
		Listed:    4,
		Eligible:  3,
		Indexed:   2,
		Failed: []domain.DocumentFailure{
			{Name: "scan.pdf", Reason: domain.ReasonEmptyText, Message: "no text extracted"},
		},
		IndexTotal: 12,
	}
}

// resetGlobals restores every package-level service and flag after a test.
func resetGlobals(t *testing.T) {
	t.Helper()
	oldWiring := wiring
	oldSettings := settingsService
	oldSync := syncOrchestrator
	oldQuery := queryService
	oldHistory := historyService
	oldWatch := watchFunc
	oldClose := closeServices
	oldCurrent := currentSettings

	wiring = nil
	settingsService = nil
	syncOrchestrator = nil
	queryService = nil
	historyService = nil
	watchFunc = nil
	closeServices = nil
	currentSettings = nil

	t.Cleanup(func() {
		wiring = oldWiring
		settingsService = oldSettings
		syncOrchestrator = oldSync
		queryService = oldQuery
		historyService = oldHistory
		watchFunc = oldWatch
		closeServices = oldClose
		currentSettings = oldCurrent
		resetFlags(rootCmd)
		rootCmd.SetArgs(nil)
	})
}

// resetFlags returns every flag of cmd and its children to its default.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, child := range cmd.Commands() {
		resetFlags(child)
	}
}

// execute runs the root command with args and returns its output.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	err := Execute(context.Background())
	return buf.String(), err
}
