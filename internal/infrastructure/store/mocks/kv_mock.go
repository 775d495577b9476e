package mocks

import (
	"context"
	"sync"

	"github.com/example/storefront-cart/internal/infrastructure/store"
)

// MockKV is a mock implementation of store.KV for testing
type MockKV struct {
	mu   sync.RWMutex
	data map[string][]byte

	// For tracking calls in tests
	SaveCalls   []SaveCall
	LoadCalls   []string
	DeleteCalls []string

	SaveErr   error
	LoadErr   error
	DeleteErr error
}

// SaveCall records parameters passed to Save
type SaveCall struct {
	Key  string
	Data []byte
}

// NewMockKV creates a new MockKV
func NewMockKV() *MockKV {
	return &MockKV{
		data:      make(map[string][]byte),
		SaveCalls: make([]SaveCall, 0),
	}
}

// Save stores data in memory unless SaveErr is set
func (m *MockKV) Save(_ context.Context, key string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.SaveCalls = append(m.SaveCalls, SaveCall{Key: key, Data: append([]byte(nil), data...)})
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.data[key] = append([]byte(nil), data...)
	return nil
}

// Load returns stored data, LoadErr, or store.ErrNotFound
func (m *MockKV) Load(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.LoadCalls = append(m.LoadCalls, key)
	if m.LoadErr != nil {
		return nil, m.LoadErr
	}
	data, ok := m.data[key]
	if !ok {
		return nil, store.ErrNotFound
	}
	return append([]byte(nil), data...), nil
}

// Delete removes data unless DeleteErr is set
func (m *MockKV) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.DeleteCalls = append(m.DeleteCalls, key)
	if m.DeleteErr != nil {
		return m.DeleteErr
	}
	delete(m.data, key)
	return nil
}

// Set puts raw data directly for testing
func (m *MockKV) Set(key string, data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = data
}

// Get returns raw data directly for testing
func (m *MockKV) Get(key string) ([]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.data[key]
	return data, ok
}

// Reset clears all data, recorded calls and injected errors
func (m *MockKV) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = make(map[string][]byte)
	m.SaveCalls = make([]SaveCall, 0)
	m.LoadCalls = nil
	m.DeleteCalls = nil
	m.SaveErr = nil
	m.LoadErr = nil
	m.DeleteErr = nil
}
