// Package keybackend provides emulator.KeyStore implementations.
package keybackend

import (
	"fmt"

	"github.com/sagarc03/b2files/emulator"
)

// MapKeyStore looks keys up in an in-memory map.
type MapKeyStore struct {
	keys map[string]emulator.AccountKey
}

// NewMapKeyStore creates a key store from a key id to key mapping.
func NewMapKeyStore(keys map[string]emulator.AccountKey) *MapKeyStore {
	return &MapKeyStore{keys: keys}
}

// Lookup returns the key registered under keyID.
func (s *MapKeyStore) Lookup(keyID string) (emulator.AccountKey, error) {
	ak, found := s.keys[keyID]
	if !found {
		return emulator.AccountKey{}, fmt.Errorf("lookup %s: %w: %w", keyID, ErrKeyNotFound, emulator.ErrBadCredentials)
	}
	return ak, nil
}
