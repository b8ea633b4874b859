package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/puzpuzpuz/xsync/v3"
)

type memoryEntry struct {
	value     string
	expiresAt time.Time
}

func (e memoryEntry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

// memoryCache is used when no Redis address is configured and in tests.
type memoryCache struct {
	entries     *xsync.MapOf[string, memoryEntry]
	serviceName string
	now         func() time.Time
}

func NewMemoryCache(serviceName string) Cache {
	return &memoryCache{
		entries:     xsync.NewMapOf[string, memoryEntry](),
		serviceName: serviceName,
		now:         time.Now,
	}
}

func (m *memoryCache) entry(value string, ttl time.Duration) memoryEntry {
	e := memoryEntry{value: value}
	if ttl > 0 {
		e.expiresAt = m.now().Add(ttl)
	}
	return e
}

func (m *memoryCache) Set(_ context.Context, key, value string, ttl time.Duration) error {
	m.entries.Store(key, m.entry(value, ttl))
	return nil
}

func (m *memoryCache) Get(_ context.Context, key string) (string, error) {
	e, ok := m.entries.Load(key)
	if !ok || e.expired(m.now()) {
		return "", nil
	}
	return e.value, nil
}

func (m *memoryCache) SetNX(_ context.Context, key, value string, ttl time.Duration) (bool, error) {
	stored := false
	m.entries.Compute(key, func(old memoryEntry, loaded bool) (memoryEntry, bool) {
		if loaded && !old.expired(m.now()) {
			return old, false
		}
		stored = true
		return m.entry(value, ttl), false
	})
	return stored, nil
}

func (m *memoryCache) Delete(_ context.Context, key string) error {
	m.entries.Delete(key)
	return nil
}

func (m *memoryCache) GenerateKey(operation, key string) string {
	return fmt.Sprintf("%s:%s:%s", m.serviceName, operation, key)
}
