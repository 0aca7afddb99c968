// Package memstore is the in-process bounded TTL cache backing the
// feature-info proxy. It is a performance optimization only, never a source
// of truth: contents are gone on restart and that is fine.
package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/evhagen/aoiview/internal/core/observability"
)

const (
	DefaultTTL           = 5 * time.Minute
	DefaultMaxSize       = 1000
	DefaultSweepInterval = time.Minute
)

type entry struct {
	value    []byte
	storedAt time.Time
}

// Store guards a plain map with one mutex. Request handlers and the
// background sweep both mutate through it; entries are immutable once
// stored so no finer locking is needed.
type Store struct {
	mu      sync.Mutex
	items   map[string]entry
	ttl     time.Duration
	maxSize int

	now func() time.Time // for tests
}

func New(ttl time.Duration, maxSize int) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	return &Store{
		items:   make(map[string]entry),
		ttl:     ttl,
		maxSize: maxSize,
		now:     time.Now,
	}
}

func (s *Store) Get(key string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.items[key]
	if !ok || s.now().Sub(e.storedAt) >= s.ttl {
		observability.IncCacheMiss()
		return nil, false
	}
	observability.IncCacheHit()
	out := make([]byte, len(e.value))
	copy(out, e.value)
	return out, true
}

func (s *Store) Put(key string, val []byte) {
	cp := make([]byte, len(val))
	copy(cp, val)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[key] = entry{value: cp, storedAt: s.now()}
	s.cleanupLocked()
}

// Cleanup runs the two-phase sweep: drop everything past TTL, then evict
// oldest-first until the count is back under the size ceiling.
func (s *Store) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cleanupLocked()
}

func (s *Store) cleanupLocked() {
	nowTs := s.now()
	for k, e := range s.items {
		if nowTs.Sub(e.storedAt) >= s.ttl {
			delete(s.items, k)
			observability.IncCacheEviction("expired")
		}
	}

	if over := len(s.items) - s.maxSize; over > 0 {
		type aged struct {
			key string
			at  time.Time
		}
		all := make([]aged, 0, len(s.items))
		for k, e := range s.items {
			all = append(all, aged{k, e.storedAt})
		}
		sort.Slice(all, func(i, j int) bool { return all[i].at.Before(all[j].at) })
		for _, a := range all[:over] {
			delete(s.items, a.key)
			observability.IncCacheEviction("size")
		}
	}

	observability.SetCacheSize(len(s.items))
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// Run sweeps on a fixed interval until ctx is done, independent of request
// traffic, so idle processes still release expired entries.
func (s *Store) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			s.Cleanup()
		}
	}
}
