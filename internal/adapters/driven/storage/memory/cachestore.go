package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/custodia-labs/geocache/internal/core/ports/driven"
)

// Ensure CacheStore implements the interface.
var _ driven.CacheStore = (*CacheStore)(nil)

type cacheEntry struct {
	value     []byte
	expiresAt time.Time
}

// CacheStore is an in-memory implementation of driven.CacheStore.
// Values are msgpack encoded so callers never share mutable state with
// the cache.
type CacheStore struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry
	now     func() time.Time
}

// NewCacheStore creates a new in-memory cache store.
func NewCacheStore(opts ...Option) *CacheStore {
	o := buildOptions(opts)
	return &CacheStore{
		entries: make(map[string]cacheEntry),
		now:     o.now,
	}
}

// Get decodes a live entry into dst.
func (s *CacheStore) Get(_ context.Context, key string, dst any) bool {
	s.mu.RLock()
	entry, ok := s.entries[key]
	s.mu.RUnlock()
	if !ok || !s.now().Before(entry.expiresAt) {
		return false
	}
	return msgpack.Unmarshal(entry.value, dst) == nil
}

// Put stores value under key until now+ttl.
func (s *CacheStore) Put(_ context.Context, key string, value any, ttl time.Duration) error {
	data, err := msgpack.Marshal(value)
	if err != nil {
		return fmt.Errorf("encoding cache entry %s: %w", key, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = cacheEntry{value: data, expiresAt: s.now().Add(ttl)}
	return nil
}

// Delete removes key.
func (s *CacheStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
	return nil
}

// Purge removes every expired entry.
func (s *CacheStore) Purge(_ context.Context) (int, error) {
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for key, entry := range s.entries {
		if !now.Before(entry.expiresAt) {
			delete(s.entries, key)
			n++
		}
	}
	return n, nil
}
