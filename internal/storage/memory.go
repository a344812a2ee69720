package storage

import (
	"context"
	"sync"
)

// MemoryStore keeps values for the lifetime of the process only
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		values: make(map[string]string),
	}
}

func (m *MemoryStore) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	value, ok := m.values[key]
	return value, ok, nil
}

func (m *MemoryStore) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.values[key] = value
	return nil
}

func (m *MemoryStore) Close() error {
	return nil
}
