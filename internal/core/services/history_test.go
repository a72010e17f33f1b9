package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docsync/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/docsync/internal/core/domain"
)

func TestHistoryService_Recent(t *testing.T) {
	runs := memory.NewRunStore()
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 25; i++ {
		require.NoError(t, runs.Save(ctx, domain.SyncReport{
			RunID:     fmt.Sprintf("run-%02d", i),
			StartedAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}
	svc := NewHistoryService(runs)

	reports, err := svc.Recent(ctx, 3)
	require.NoError(t, err)
	require.Len(t, reports, 3)
	assert.Equal(t, "run-24", reports[0].RunID)
	assert.Equal(t, "run-22", reports[2].RunID)

	reports, err = svc.Recent(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, reports, defaultHistoryLimit)
}

func TestHistoryService_Get(t *testing.T) {
	runs := memory.NewRunStore()
	ctx := context.Background()
	require.NoError(t, runs.Save(ctx, domain.SyncReport{RunID: "abc", Indexed: 4}))
	svc := NewHistoryService(runs)

	report, err := svc.Get(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, 4, report.Indexed)

	_, err = svc.Get(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = svc.Get(ctx, "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
