package cache

import (
	"context"
	"sync"
	"time"

	"github.com/pitchscope/pitchscope/pkg/models"
)

// entry holds a cached narrative with its own expiry, so each Set call's
// ttl argument is honored independently rather than one cache-wide TTL.
type entry struct {
	value     *models.Narrative
	expiresAt time.Time
}

// Memory is a thread-safe in-memory cache with per-entry TTL. Expired
// entries are cleaned up lazily on Get — there is no background sweep.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]*entry
}

// NewMemory constructs an empty in-memory cache.
func NewMemory() *Memory {
	return &Memory{entries: make(map[string]*entry)}
}

// Get returns the cached narrative if present and not expired.
func (m *Memory) Get(_ context.Context, key string) (*models.Narrative, bool, error) {
	m.mu.RLock()
	e, ok := m.entries[key]
	m.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}

	if time.Now().After(e.expiresAt) {
		m.mu.Lock()
		if current, ok := m.entries[key]; ok && time.Now().After(current.expiresAt) {
			delete(m.entries, key)
		}
		m.mu.Unlock()
		return nil, false, nil
	}

	return e.value, true, nil
}

// Set stores value under key with the given TTL.
func (m *Memory) Set(_ context.Context, key string, value *models.Narrative, ttl time.Duration) error {
	m.mu.Lock()
	m.entries[key] = &entry{value: value, expiresAt: time.Now().Add(ttl)}
	m.mu.Unlock()
	return nil
}

// Delete removes key, if present.
func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.entries, key)
	m.mu.Unlock()
	return nil
}

// Close is a no-op; Memory holds no external resources.
func (m *Memory) Close() error { return nil }
