package sagalog

import (
	"context"
	"time"
)

// Repository persists saga log entries. The orchestrator depends on this
// port so the SQLite store can be swapped for the in-memory one in tests.
type Repository interface {
	// Save appends a row. Rows are never updated.
	Save(ctx context.Context, entry *SagaLog) error

	// GetLatest returns the most recent row for sagaID.
	GetLatest(ctx context.Context, sagaID string) (*SagaLog, error)

	// ListStuck returns the latest row of every saga whose furthest step is
	// one of furthestSteps and that is Stuck as of idleSince. Sagas still
	// inside a step are left out until they go idle.
	ListStuck(ctx context.Context, idleSince time.Time, furthestSteps ...string) ([]SagaLog, error)
}
