package store

import (
	"context"
	"sync"
)

// MemAdapter is an in-memory Adapter for tests.
type MemAdapter struct {
	mu   sync.Mutex
	data map[string]string

	// SetCalls counts Set invocations, letting tests assert how often a
	// caller persisted.
	SetCalls int
}

// NewMemAdapter creates an empty in-memory adapter.
func NewMemAdapter() *MemAdapter {
	return &MemAdapter{data: make(map[string]string)}
}

func (m *MemAdapter) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *MemAdapter) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	m.SetCalls++
	return nil
}

func (m *MemAdapter) Remove(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

// Keys returns a snapshot of all stored keys.
func (m *MemAdapter) Keys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	keys := make([]string, 0, len(m.data))
	for k := range m.data {
		keys = append(keys, k)
	}
	return keys
}
