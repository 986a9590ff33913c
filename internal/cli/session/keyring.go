package session

import (
	"errors"
	"fmt"
	"net/url"

	"github.com/zalando/go-keyring"
)

const (
	service = "foodctl"
)

// KeyringStore persists the token in the OS keychain/credential manager,
// one entry per API host.
type KeyringStore struct {
	key string
}

// NewKeyringStore creates a store for the API served at baseURL
func NewKeyringStore(baseURL string) *KeyringStore {
	return &KeyringStore{key: keyringKey(baseURL)}
}

// keyringKey returns a unique key for storing tokens per API host
func keyringKey(baseURL string) string {
	host := baseURL
	if u, err := url.Parse(baseURL); err == nil && u.Host != "" {
		host = u.Host
	}
	return fmt.Sprintf("token-%s", host)
}

// Token retrieves the token from the keychain
func (k *KeyringStore) Token() (string, error) {
	token, err := keyring.Get(service, k.key)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", nil
		}
		return "", fmt.Errorf("failed to load token: %w", err)
	}
	return token, nil
}

// Save persists the token in the keychain
func (k *KeyringStore) Save(token string) error {
	if err := keyring.Set(service, k.key, token); err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}
	return nil
}

// Clear removes the token from the keychain
func (k *KeyringStore) Clear() error {
	if err := keyring.Delete(service, k.key); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return nil // Already deleted
		}
		return fmt.Errorf("failed to delete token: %w", err)
	}
	return nil
}
