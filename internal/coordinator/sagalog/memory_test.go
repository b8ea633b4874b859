package sagalog

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryListStuckUsesLatestRow(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, NewEntry(ctx, "a", StatusStepDone, "persist_order", "persist_order")))
	require.NoError(t, repo.Save(ctx, NewEntry(ctx, "b", StatusStepDone, "persist_order", "persist_order")))
	require.NoError(t, repo.Save(ctx, NewEntry(ctx, "b", StatusCompletedDegraded, "publish_confirmation", "publish_confirmation")))
	require.NoError(t, repo.Save(ctx, NewEntry(ctx, "c", StatusFailed, "request_payment", "persist_order_lines")))

	// "a" is still inside a step until it goes idle.
	stuck, err := repo.ListStuck(ctx, time.Now().Add(-time.Minute), "persist_order", "persist_order_lines")
	require.NoError(t, err)
	require.Len(t, stuck, 1)
	assert.Equal(t, "c", stuck[0].SagaID)

	stuck, err = repo.ListStuck(ctx, time.Now().Add(time.Minute), "persist_order", "persist_order_lines")
	require.NoError(t, err)
	require.Len(t, stuck, 2)
	assert.Equal(t, "a", stuck[0].SagaID)
	assert.Equal(t, "c", stuck[1].SagaID)

	latest, err := repo.GetLatest(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, StatusCompletedDegraded, latest.Status)
	assert.Len(t, repo.History("b"), 2)
}

func TestNewEntryWithoutSpan(t *testing.T) {
	e := NewEntry(context.Background(), "s", StatusStarted, "", "")
	assert.Empty(t, e.TraceID)
	assert.Empty(t, e.SpanID)
	assert.False(t, e.UpdatedAt.IsZero())
}

func TestStuck(t *testing.T) {
	now := time.Now()
	idleSince := now.Add(-5 * time.Minute)

	assert.True(t, SagaLog{Status: StatusFailed, UpdatedAt: now}.Stuck(idleSince))
	assert.False(t, SagaLog{Status: StatusStepDone, UpdatedAt: now}.Stuck(idleSince))
	assert.True(t, SagaLog{Status: StatusStepDone, UpdatedAt: now.Add(-time.Hour)}.Stuck(idleSince))
	assert.False(t, SagaLog{Status: StatusCompleted, UpdatedAt: now.Add(-time.Hour)}.Stuck(idleSince))
	assert.False(t, SagaLog{Status: StatusCompletedDegraded, UpdatedAt: now.Add(-time.Hour)}.Stuck(idleSince))
}
