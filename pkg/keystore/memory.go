package keystore

import (
	"context"
	"errors"
	"sync"
)

// MemoryStore implements Store and Updater in process memory.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string][]byte
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string][]byte)}
}

func (m *MemoryStore) Get(ctx context.Context, name string, def []byte) ([]byte, error) {
	if name == "" {
		return nil, ErrEmptyName
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.values[name]
	if !ok {
		return def, nil
	}
	return cloneBytes(v), nil
}

func (m *MemoryStore) Set(ctx context.Context, name string, value []byte) error {
	if name == "" {
		return ErrEmptyName
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.values[name] = cloneBytes(value)
	return nil
}

// Update holds the write lock for the whole read-modify-write.
func (m *MemoryStore) Update(ctx context.Context, name string, fn UpdateFunc) error {
	if name == "" {
		return ErrEmptyName
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	next, err := fn(cloneBytes(m.values[name]))
	if err != nil {
		return errors.Join(ErrAborted, err)
	}
	m.values[name] = cloneBytes(next)
	return nil
}
