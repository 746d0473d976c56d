package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// item wraps cached data with its expiry time
type item struct {
	data      []byte
	expiresAt time.Time
}

// MemoryStore is an in-process Store backed by a bounded LRU.
// Expired items are dropped lazily on read.
type MemoryStore struct {
	lru *lru.Cache[string, item]
	mu  sync.Mutex
	now func() time.Time
}

// NewMemoryStore creates a MemoryStore holding at most capacity keys
func NewMemoryStore(capacity int) (*MemoryStore, error) {
	if capacity <= 0 {
		capacity = 10000
	}
	l, err := lru.New[string, item](capacity)
	if err != nil {
		return nil, fmt.Errorf("create lru: %w", err)
	}
	return &MemoryStore{lru: l, now: time.Now}, nil
}

func (s *MemoryStore) load(key string) (item, bool) {
	val, ok := s.lru.Get(key)
	if !ok {
		return item{}, false
	}
	if s.now().After(val.expiresAt) {
		s.lru.Remove(key)
		return item{}, false
	}
	return val, true
}

// Get implements Store
func (s *MemoryStore) Get(_ context.Context, key string, dst any) (bool, error) {
	s.mu.Lock()
	val, ok := s.load(key)
	s.mu.Unlock()
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(val.data, dst); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

// Set implements Store
func (s *MemoryStore) Set(_ context.Context, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	s.mu.Lock()
	s.lru.Add(key, item{data: data, expiresAt: s.now().Add(ttl)})
	s.mu.Unlock()
	return nil
}

// Replace implements Store
func (s *MemoryStore) Replace(_ context.Context, key string, value any, ttl time.Duration) (bool, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return false, fmt.Errorf("encode %s: %w", key, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.load(key); !ok {
		return false, nil
	}
	s.lru.Add(key, item{data: data, expiresAt: s.now().Add(ttl)})
	return true, nil
}

// Delete implements Store
func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	s.lru.Remove(key)
	s.mu.Unlock()
	return nil
}

// Incr implements Store
func (s *MemoryStore) Incr(_ context.Context, key string, ttl time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	expiresAt := s.now().Add(ttl)
	if val, ok := s.load(key); ok {
		parsed, err := strconv.ParseInt(string(val.data), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("counter %s is not an integer", key)
		}
		n = parsed
		expiresAt = val.expiresAt
	}
	n++
	s.lru.Add(key, item{data: []byte(strconv.FormatInt(n, 10)), expiresAt: expiresAt})
	return n, nil
}
