package testutil

import (
	"context"
	"fmt"
	"sync"
)

// MockFetcher is a mock implementation of the archive fetcher interface.
type MockFetcher struct {
	mu        sync.Mutex
	documents map[string][]byte
	errors    map[string]error
	fetched   []string

	// Configurable return values
	DefaultErr error
}

// NewMockFetcher creates a new mock fetcher.
func NewMockFetcher() *MockFetcher {
	return &MockFetcher{
		documents: make(map[string][]byte),
		errors:    make(map[string]error),
	}
}

// Fetch records the accession and returns the configured document.
func (m *MockFetcher) Fetch(ctx context.Context, accession string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fetched = append(m.fetched, accession)

	if err, ok := m.errors[accession]; ok {
		return nil, err
	}
	if doc, ok := m.documents[accession]; ok {
		return doc, nil
	}
	if m.DefaultErr != nil {
		return nil, m.DefaultErr
	}
	return nil, fmt.Errorf("no document configured for %s", accession)
}

// SetDocument sets the document returned for an accession.
func (m *MockFetcher) SetDocument(accession string, doc []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.documents[accession] = doc
}

// SetError sets an error for a specific accession.
func (m *MockFetcher) SetError(accession string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors[accession] = err
}

// Fetched returns all recorded accessions in request order.
func (m *MockFetcher) Fetched() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]string, len(m.fetched))
	copy(result, m.fetched)
	return result
}

// Reset clears all recorded fetches.
func (m *MockFetcher) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fetched = nil
}
