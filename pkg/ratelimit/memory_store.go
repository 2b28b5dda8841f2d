package ratelimit

import (
	"context"
	"sync"
	"time"
)

type memoryWindow struct {
	count    int64
	expireAt time.Time
}

// MemoryStore is an in-memory Store. Windows are pruned lazily on access, so
// the map only grows with the set of keys active within one window.
type MemoryStore struct {
	mu      sync.Mutex
	windows map[string]*memoryWindow
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{windows: make(map[string]*memoryWindow)}
}

func (s *MemoryStore) IncrementAndGet(_ context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	w, ok := s.windows[key]
	if !ok || now.After(w.expireAt) {
		w = &memoryWindow{expireAt: now.Add(window)}
		s.windows[key] = w
	}
	w.count++
	return w.count, w.expireAt.Sub(now), nil
}
