// Package session holds the bearer credential of the signed-in user.
//
// A Store is read before every API request and written only by login,
// registration, logout and the client's 401 handler.
package session

import "sync"

// Store defines the credential storage operations used by the API client.
// Token returns an empty string and a nil error when no credential is stored.
type Store interface {
	Token() (string, error)
	Save(token string) error
	Clear() error
}

// MemoryStore keeps the credential in process memory. Used by tests and by
// the --no-keyring flag on machines without a keychain.
type MemoryStore struct {
	mu    sync.RWMutex
	token string
}

// NewMemoryStore returns a store preloaded with token (which may be empty)
func NewMemoryStore(token string) *MemoryStore {
	return &MemoryStore{token: token}
}

func (m *MemoryStore) Token() (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token, nil
}

func (m *MemoryStore) Save(token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = token
	return nil
}

func (m *MemoryStore) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = ""
	return nil
}
