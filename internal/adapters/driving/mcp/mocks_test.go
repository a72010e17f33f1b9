package mcp

import (
	"context"

	"github.com/custodia-labs/docsync/internal/core/domain"
	"github.com/custodia-labs/docsync/internal/core/ports/driving"
)

// mockQueryService is a mock implementation of driving.QueryService.
type mockQueryService struct {
	resp  *driving.QueryResponse
	err   error
	terms []string
}

func (m *mockQueryService) Search(_ context.Context, term string) (*driving.QueryResponse, error) {
	m.terms = append(m.terms, term)
	return m.resp, m.err
}

// mockSyncOrchestrator is a mock implementation of driving.SyncOrchestrator.
type mockSyncOrchestrator struct {
	status *driving.SyncStatus
	err    error
	ran    chan struct{}

	// block holds Run until its context is cancelled, then closes done.
	block bool
	done  chan struct{}
}

func (m *mockSyncOrchestrator) Run(ctx context.Context) (*domain.SyncReport, error) {
	if m.ran != nil {
		close(m.ran)
	}
	if m.block {
		<-ctx.Done()
		close(m.done)
		return &domain.SyncReport{Fatal: ctx.Err().Error()}, ctx.Err()
	}
	return &domain.SyncReport{}, m.err
}

func (m *mockSyncOrchestrator) Status(_ context.Context) (*driving.SyncStatus, error) {
	return m.status, m.err
}

// mockHistoryService is a mock implementation of driving.HistoryService.
type mockHistoryService struct {
	reports []domain.SyncReport
	report  *domain.SyncReport
	err     error
	limit   int
}

func (m *mockHistoryService) Recent(_ context.Context, limit int) ([]domain.SyncReport, error) {
	m.limit = limit
	return m.reports, m.err
}

func (m *mockHistoryService) Get(_ context.Context, _ string) (*domain.SyncReport, error) {
	return m.report, m.err
}
