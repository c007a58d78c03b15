package cache

import (
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// statsLogInterval is how often the store logs its counters at debug level.
const statsLogInterval = 5 * time.Minute

type entry struct {
	value     []byte
	expiresAt time.Time
}

func (e *entry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

// MemoryStore is the in-process Store implementation. Reads and writes are
// guarded by a single RWMutex, so a concurrently swept entry is observed
// either fully present or fully absent. Expired entries are left resident
// until the periodic sweep removes them, which is what keeps GetStale
// working between expiry and eviction.
type MemoryStore struct {
	mu         sync.RWMutex
	data       map[string]*entry
	defaultTTL time.Duration

	hits   atomic.Uint64
	misses atomic.Uint64

	// now is injectable for tests.
	now func() time.Time

	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

// MemoryOptions configures a MemoryStore.
type MemoryOptions struct {
	// DefaultTTL applies when Set receives a non-positive TTL.
	DefaultTTL time.Duration
	// SweepInterval is the period of the background eviction sweep.
	// A non-positive value disables the sweep goroutine.
	SweepInterval time.Duration
}

// NewMemoryStore creates a MemoryStore and starts its sweep goroutine.
// The caller must Close the store to stop background work.
func NewMemoryStore(opts MemoryOptions) *MemoryStore {
	if opts.DefaultTTL <= 0 {
		opts.DefaultTTL = DefaultTTL
	}

	s := &MemoryStore{
		data:       make(map[string]*entry),
		defaultTTL: opts.DefaultTTL,
		now:        time.Now,
		stop:       make(chan struct{}),
		done:       make(chan struct{}),
	}

	if opts.SweepInterval > 0 {
		go s.sweepLoop(opts.SweepInterval)
	} else {
		close(s.done)
	}

	return s
}

// Get returns the value only while the entry is unexpired.
func (s *MemoryStore) Get(key string) ([]byte, bool) {
	s.mu.RLock()
	e, ok := s.data[key]
	s.mu.RUnlock()

	if !ok || e.expired(s.now()) {
		s.misses.Add(1)
		slog.Debug("cache miss", "key", key)
		return nil, false
	}

	s.hits.Add(1)
	slog.Debug("cache hit", "key", key)
	return e.value, true
}

// GetStale returns the value even after expiry, until the sweep evicts it.
func (s *MemoryStore) GetStale(key string) ([]byte, bool) {
	s.mu.RLock()
	e, ok := s.data[key]
	s.mu.RUnlock()

	if !ok {
		return nil, false
	}
	return e.value, true
}

// Set stores value under key, resetting the entry's expiry to now + ttl.
func (s *MemoryStore) Set(key string, value []byte, ttl time.Duration) {
	if ttl <= 0 {
		ttl = s.defaultTTL
	}

	s.mu.Lock()
	s.data[key] = &entry{value: value, expiresAt: s.now().Add(ttl)}
	s.mu.Unlock()

	slog.Debug("cache set", "key", key, "ttl", ttl)
}

// Has reports whether an unexpired entry exists for key.
func (s *MemoryStore) Has(key string) bool {
	s.mu.RLock()
	e, ok := s.data[key]
	s.mu.RUnlock()

	return ok && !e.expired(s.now())
}

// Delete removes the entry, reporting whether one was resident.
func (s *MemoryStore) Delete(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.data[key]; !ok {
		return false
	}
	delete(s.data, key)
	return true
}

// Invalidate removes every resident key containing pattern.
func (s *MemoryStore) Invalidate(pattern string) {
	if pattern == "" {
		return
	}

	s.mu.Lock()
	var removed int
	for key := range s.data {
		if strings.Contains(key, pattern) {
			delete(s.data, key)
			removed++
		}
	}
	s.mu.Unlock()

	slog.Info("cache invalidated", "pattern", pattern, "removed", removed)
}

// Clear removes all entries. Hit/miss counters are not reset.
func (s *MemoryStore) Clear() {
	s.mu.Lock()
	s.data = make(map[string]*entry)
	s.mu.Unlock()

	slog.Info("cache cleared")
}

// ExpiryTime returns the absolute expiry of key, or the zero time.
func (s *MemoryStore) ExpiryTime(key string) time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if e, ok := s.data[key]; ok {
		return e.expiresAt
	}
	return time.Time{}
}

// Stats returns current cache counters.
func (s *MemoryStore) Stats() Stats {
	s.mu.RLock()
	keys := len(s.data)
	s.mu.RUnlock()

	return Stats{
		Keys:   keys,
		Hits:   s.hits.Load(),
		Misses: s.misses.Load(),
	}
}

// Close stops the sweep goroutine. Idempotent.
func (s *MemoryStore) Close() error {
	s.stopOnce.Do(func() { close(s.stop) })
	<-s.done
	return nil
}

// sweepOnce evicts every expired entry and returns the eviction count.
func (s *MemoryStore) sweepOnce() int {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	var evicted int
	for key, e := range s.data {
		if e.expired(now) {
			delete(s.data, key)
			evicted++
		}
	}
	return evicted
}

func (s *MemoryStore) sweepLoop(interval time.Duration) {
	defer close(s.done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	statsTicker := time.NewTicker(statsLogInterval)
	defer statsTicker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			if evicted := s.sweepOnce(); evicted > 0 {
				slog.Debug("cache sweep completed", "evicted", evicted)
			}
		case <-statsTicker.C:
			st := s.Stats()
			slog.Debug("cache statistics", "keys", st.Keys, "hits", st.Hits, "misses", st.Misses)
		}
	}
}
