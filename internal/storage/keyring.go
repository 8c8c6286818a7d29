package storage

import (
	"errors"
	"fmt"

	"github.com/99designs/keyring"
)

const serviceName = "icom"

// KeyringStore persists credentials in the system keyring.
type KeyringStore struct {
	ring keyring.Keyring
}

// NewKeyringStore opens the system keyring for this application.
func NewKeyringStore() (*KeyringStore, error) {
	ring, err := keyring.Open(keyring.Config{
		ServiceName: serviceName,
		AllowedBackends: []keyring.BackendType{
			keyring.KeychainBackend,
			keyring.SecretServiceBackend,
			keyring.WinCredBackend,
			keyring.PassBackend,
			keyring.FileBackend,
		},
		FileDir:                  "~/.config/icom/credentials",
		FilePasswordFunc:         keyring.FixedStringPrompt("icom-file-key"),
		KeychainTrustApplication: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening keyring: %w", err)
	}
	return &KeyringStore{ring: ring}, nil
}

// Get retrieves a value by key. A missing key reports ok=false.
func (s *KeyringStore) Get(key string) (string, bool, error) {
	item, err := s.ring.Get(key)
	if err != nil {
		if errors.Is(err, keyring.ErrKeyNotFound) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("getting credential %q: %w", key, err)
	}
	return string(item.Data), true, nil
}

// Set stores a value by key, overwriting any previous value.
func (s *KeyringStore) Set(key, value string) error {
	err := s.ring.Set(keyring.Item{
		Key:  key,
		Data: []byte(value),
	})
	if err != nil {
		return fmt.Errorf("setting credential %q: %w", key, err)
	}
	return nil
}

// Remove deletes a key. Removing an absent key succeeds.
func (s *KeyringStore) Remove(key string) error {
	err := s.ring.Remove(key)
	if err != nil && !errors.Is(err, keyring.ErrKeyNotFound) {
		return fmt.Errorf("removing credential %q: %w", key, err)
	}
	return nil
}
