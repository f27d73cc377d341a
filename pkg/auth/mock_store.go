package auth

import "sync"

// MockStore implements Store in memory for tests
type MockStore struct {
	entries map[string]*HostHeaders
	mu      sync.RWMutex

	// Error injection for testing
	StoreError    error
	RetrieveError error
	ListError     error
	DeleteError   error
}

// NewMockStore creates an empty MockStore
func NewMockStore() *MockStore {
	return &MockStore{entries: make(map[string]*HostHeaders)}
}

func copyEntry(e *HostHeaders) *HostHeaders {
	c := *e
	c.Headers = make(map[string]string, len(e.Headers))
	for k, v := range e.Headers {
		c.Headers[k] = v
	}
	return &c
}

func (m *MockStore) Store(entry *HostHeaders) error {
	if m.StoreError != nil {
		return m.StoreError
	}
	if entry == nil || entry.Host == "" {
		return ErrInvalidHeaders
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[entry.Host] = copyEntry(entry)
	return nil
}

func (m *MockStore) Retrieve(host string) (*HostHeaders, error) {
	if m.RetrieveError != nil {
		return nil, m.RetrieveError
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	entry, ok := m.entries[host]
	if !ok {
		return nil, ErrHeadersNotFound
	}
	return copyEntry(entry), nil
}

func (m *MockStore) List() ([]*HostHeaders, error) {
	if m.ListError != nil {
		return nil, m.ListError
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	var entries []*HostHeaders
	for _, entry := range m.entries {
		entries = append(entries, copyEntry(entry))
	}
	return entries, nil
}

func (m *MockStore) Delete(host string) error {
	if m.DeleteError != nil {
		return m.DeleteError
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.entries[host]; !ok {
		return ErrHeadersNotFound
	}
	delete(m.entries, host)
	return nil
}

func (m *MockStore) Exists(host string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.entries[host]
	return ok
}

// Count returns the number of stored hosts
func (m *MockStore) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

// NewMockManager creates a Manager over a single MockStore
func NewMockManager() (*Manager, *MockStore) {
	store := NewMockStore()
	return NewManagerWithStores(store), store
}
