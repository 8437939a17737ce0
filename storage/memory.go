package storage

import "sync"

// Memory is a transient map-backed store. It is the backing used by tests and
// by callers that need store semantics without durability.
type Memory struct {
	mu    sync.RWMutex
	items map[string]any
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{items: map[string]any{}}
}

func (m *Memory) Get(key string) (any, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	value, ok := m.items[key]
	if !ok {
		return nil, ErrNotFound
	}
	return value, nil
}

func (m *Memory) Set(key string, value any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[key] = value
	return nil
}

func (m *Memory) Has(key string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.items[key]
	return ok, nil
}

func (m *Memory) All(sel Selector) (map[string]any, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	all := make(map[string]any)
	for key, value := range m.items {
		if selectorMatches(sel, key) {
			all[key] = value
		}
	}
	return all, nil
}

var _ Storage = (*Memory)(nil)
