package memory

import (
	"context"
	"sync"

	"holidaze/internal/app/cache"
)

// CacheStore keeps query cache entries in process memory.
type CacheStore struct {
	mu    sync.RWMutex
	items map[string]cache.Entry
}

func NewCacheStore() *CacheStore {
	return &CacheStore{items: make(map[string]cache.Entry)}
}

func (s *CacheStore) Get(ctx context.Context, key string) (cache.Entry, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.items[key]
	if !ok {
		return cache.Entry{}, false, nil
	}
	entry.Value = append([]byte(nil), entry.Value...)
	return entry, true, nil
}

func (s *CacheStore) Set(ctx context.Context, key string, entry cache.Entry) error {
	entry.Value = append([]byte(nil), entry.Value...)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[key] = entry
	return nil
}

func (s *CacheStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, key)
	return nil
}

// Len reports the number of cached keys.
func (s *CacheStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

var _ cache.Store = (*CacheStore)(nil)
