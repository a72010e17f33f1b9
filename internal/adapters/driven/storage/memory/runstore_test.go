package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docsync/internal/core/domain"
)

func TestNewRunStore(t *testing.T) {
	store := NewRunStore()
	require.NotNil(t, store)
	assert.NotNil(t, store.runs)
}

func TestRunStore_SaveAndGet(t *testing.T) {
	store := NewRunStore()
	ctx := context.Background()

	report := domain.SyncReport{
		RunID:   "run-1",
		Indexed: 2,
		Failed: []domain.DocumentFailure{
			{Name: "b.pdf", Reason: domain.ReasonEmptyText, Message: "empty text"},
		},
	}
	require.NoError(t, store.Save(ctx, report))

	// Mutating the caller's slice must not change the stored copy
	report.Failed[0].Name = "changed.pdf"

	got, err := store.Get(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, 2, got.Indexed)
	assert.Equal(t, "b.pdf", got.Failed[0].Name)
}

func TestRunStore_Get_NotFound(t *testing.T) {
	store := NewRunStore()

	_, err := store.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRunStore_List_NewestFirst(t *testing.T) {
	store := NewRunStore()
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, store.Save(ctx, domain.SyncReport{RunID: "old", StartedAt: now.Add(-2 * time.Hour)}))
	require.NoError(t, store.Save(ctx, domain.SyncReport{RunID: "new", StartedAt: now}))
	require.NoError(t, store.Save(ctx, domain.SyncReport{RunID: "mid", StartedAt: now.Add(-time.Hour)}))

	all, err := store.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "new", all[0].RunID)
	assert.Equal(t, "mid", all[1].RunID)
	assert.Equal(t, "old", all[2].RunID)

	limited, err := store.List(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestRunStore_ConcurrentAccess(t *testing.T) {
	store := NewRunStore()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_ = store.Save(ctx, domain.SyncReport{RunID: string(rune('a' + n%26)), Indexed: n})
			_, _ = store.List(ctx, 5)
		}(i)
	}
	wg.Wait()

	all, err := store.List(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, 26)
	assert.NoError(t, store.Close())
}
