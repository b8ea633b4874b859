package sagalog

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"
)

// MemoryRepository keeps the log in process. It is used when no SQLite path
// is configured and in tests.
type MemoryRepository struct {
	mu      sync.RWMutex
	entries []SagaLog
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{}
}

func (r *MemoryRepository) Save(_ context.Context, entry *SagaLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e := *entry
	e.Errors = slices.Clone(entry.Errors)
	r.entries = append(r.entries, e)
	return nil
}

func (r *MemoryRepository) GetLatest(_ context.Context, sagaID string) (*SagaLog, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for i := len(r.entries) - 1; i >= 0; i-- {
		if r.entries[i].SagaID == sagaID {
			e := r.entries[i]
			return &e, nil
		}
	}
	return nil, fmt.Errorf("sagalog: saga %q not found", sagaID)
}

// History returns every row of sagaID in insertion order.
func (r *MemoryRepository) History(sagaID string) []SagaLog {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []SagaLog
	for _, e := range r.entries {
		if e.SagaID == sagaID {
			out = append(out, e)
		}
	}
	return out
}

func (r *MemoryRepository) ListStuck(_ context.Context, idleSince time.Time, furthestSteps ...string) ([]SagaLog, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	latest := make(map[string]int, len(r.entries))
	for i, e := range r.entries {
		latest[e.SagaID] = i
	}
	idx := make([]int, 0, len(latest))
	for _, i := range latest {
		e := r.entries[i]
		if e.Stuck(idleSince) && slices.Contains(furthestSteps, e.FurthestStep) {
			idx = append(idx, i)
		}
	}
	slices.Sort(idx)

	out := make([]SagaLog, 0, len(idx))
	for _, i := range idx {
		out = append(out, r.entries[i])
	}
	return out, nil
}
