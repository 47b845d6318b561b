package cache

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// maxExtensions caps how many hits may push an entry's expiry forward.
const maxExtensions = 6

// sweepThreshold is the size above which Set drops expired entries.
const sweepThreshold = 256

type entry struct {
	value       []byte
	expiration  time.Time
	accessCount int
	originalTTL time.Duration
}

// Memory is a process-local cache with a sliding TTL window.
type Memory struct {
	mu      sync.Mutex
	entries map[string]*entry
	now     func() time.Time
}

// NewMemory creates an empty in-memory cache.
func NewMemory() *Memory {
	return &Memory{
		entries: make(map[string]*entry),
		now:     time.Now,
	}
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[key]
	if !ok {
		log.Debug().Str("key", key).Msg("Cache miss")
		return nil, false
	}

	now := m.now()
	if now.After(e.expiration) {
		delete(m.entries, key)
		log.Debug().Str("key", key).Msg("Cache entry expired")
		return nil, false
	}
	log.Debug().Str("key", key).Msg("Cache hit")

	// Sliding window extension
	if e.accessCount < maxExtensions {
		e.expiration = now.Add(e.originalTTL)
		e.accessCount++
		log.Trace().Str("key", key).Int("count", e.accessCount).Msg("Extended cache TTL")
	}

	return e.value, true
}

func (m *Memory) Set(_ context.Context, key string, value []byte, ttl time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	if len(m.entries) >= sweepThreshold {
		m.sweep(now)
	}

	m.entries[key] = &entry{
		value:       value,
		expiration:  now.Add(ttl),
		originalTTL: ttl,
		accessCount: 1,
	}
	log.Debug().Str("key", key).Dur("ttl", ttl).Msg("Added to cache")
}

// sweep removes entries that expired before now. Callers hold m.mu.
func (m *Memory) sweep(now time.Time) {
	removed := 0
	for k, e := range m.entries {
		if now.After(e.expiration) {
			delete(m.entries, k)
			removed++
		}
	}
	if removed > 0 {
		log.Debug().Int("removed", removed).Int("remaining", len(m.entries)).Msg("Swept expired cache entries")
	}
}

// Len reports the number of stored entries, expired ones included.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}
