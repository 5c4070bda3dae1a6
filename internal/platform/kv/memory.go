package kv

import (
	"context"
	"strconv"
	"sync"

	crerr "github.com/cockroachdb/errors"
)

// MemoryStore is a process-local Store. Counters and flags are only shared
// by callers holding the same instance.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]string)}
}

func (s *MemoryStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	value, ok := s.entries[key]
	s.mu.RUnlock()
	return value, ok, nil
}

func (s *MemoryStore) Set(_ context.Context, key, value string) error {
	if key == "" {
		return crerr.New("kv: key is required")
	}

	s.mu.Lock()
	s.entries[key] = value
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	delete(s.entries, key)
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Incr(_ context.Context, key string) (int64, error) {
	if key == "" {
		return 0, crerr.New("kv: key is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var current int64
	if raw, ok := s.entries[key]; ok {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return 0, crerr.Wrapf(err, "kv: value at %q is not an integer", key)
		}
		current = parsed
	}
	current++
	s.entries[key] = strconv.FormatInt(current, 10)
	return current, nil
}

func (s *MemoryStore) Rollover(_ context.Context, dateKey, today, counterKey string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if stored, ok := s.entries[dateKey]; ok && stored == today {
		return false, nil
	}
	s.entries[dateKey] = today
	s.entries[counterKey] = "0"
	return true, nil
}

func (s *MemoryStore) CompareAndSwap(_ context.Context, key, prev, next string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.entries[key]
	if !ok {
		current = ""
	}
	if current != prev {
		return false, nil
	}
	s.entries[key] = next
	return true, nil
}
