// Package mock provides an extractor.Extractor test double.
package mock

import (
	"context"
	"sync"

	"github.com/kozaktomas/face-gallery/internal/extractor"
)

// MockExtractor maps image payloads to canned embeddings. Images without
// a canned embedding report no face, matching the real service's behavior
// for non-face images.
type MockExtractor struct {
	mu         sync.Mutex
	embeddings map[string][]float32
	calls      int

	// Err, when set, is returned for every call (service outage).
	Err error
}

// NewMockExtractor creates an empty mock extractor.
func NewMockExtractor() *MockExtractor {
	return &MockExtractor{embeddings: make(map[string][]float32)}
}

// AddFace registers an embedding for an exact image payload.
func (m *MockExtractor) AddFace(image []byte, embedding []float32) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.embeddings[string(image)] = embedding
}

// Calls returns how many times Extract ran.
func (m *MockExtractor) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Extract returns the canned embedding for the payload or ErrNoFace.
func (m *MockExtractor) Extract(ctx context.Context, image []byte) ([]float32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++

	if m.Err != nil {
		return nil, m.Err
	}

	embedding, ok := m.embeddings[string(image)]
	if !ok {
		return nil, extractor.ErrNoFace
	}
	cp := make([]float32, len(embedding))
	copy(cp, embedding)
	return cp, nil
}
