// Package mock provides a blob.Store test double with error injection.
package mock

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/kozaktomas/face-gallery/internal/blob"
)

// MockStore is an in-memory blob.Store with injectable failures.
type MockStore struct {
	mu      sync.RWMutex
	objects map[string][]byte

	// Error injection
	GetError    error
	PutError    error
	DeleteError error
	ListError   error
}

// NewMockStore creates an empty mock store.
func NewMockStore() *MockStore {
	return &MockStore{objects: make(map[string][]byte)}
}

// Seed stores an object directly, bypassing error injection.
func (m *MockStore) Seed(key string, data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = data
}

// Has reports whether an object exists, bypassing error injection.
func (m *MockStore) Has(key string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.objects[key]
	return ok
}

// Get retrieves an object by key.
func (m *MockStore) Get(ctx context.Context, key string) ([]byte, error) {
	if m.GetError != nil {
		return nil, m.GetError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, ok := m.objects[key]
	if !ok {
		return nil, blob.ErrNotFound
	}
	return data, nil
}

// Put stores an object.
func (m *MockStore) Put(ctx context.Context, key string, data []byte) error {
	if m.PutError != nil {
		return m.PutError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = data
	return nil
}

// Delete removes an object.
func (m *MockStore) Delete(ctx context.Context, key string) error {
	if m.DeleteError != nil {
		return m.DeleteError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	return nil
}

// List returns all keys with the given prefix, sorted.
func (m *MockStore) List(ctx context.Context, prefix string) ([]string, error) {
	if m.ListError != nil {
		return nil, m.ListError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	var keys []string
	for key := range m.objects {
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

// Close is a no-op.
func (m *MockStore) Close() error {
	return nil
}
