package auth

import "sync"

// MockStore is an in-memory Store for tests.
type MockStore struct {
	mu      sync.Mutex
	secrets map[string]string
}

func NewMockStore() *MockStore {
	return &MockStore{secrets: make(map[string]string)}
}

func (m *MockStore) SetToken(name string, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.secrets[NormalizeName(name)] = token
	return nil
}

func (m *MockStore) GetToken(name string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	token, ok := m.secrets[NormalizeName(name)]
	if !ok {
		return "", ErrTokenNotFound
	}
	return token, nil
}

func (m *MockStore) DeleteToken(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := NormalizeName(name)
	if _, ok := m.secrets[key]; !ok {
		return ErrTokenNotFound
	}
	delete(m.secrets, key)
	return nil
}
