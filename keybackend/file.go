package keybackend

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/sagarc03/b2files/emulator"
)

// KeyPair is an application key id, its secret and an optional bucket restriction.
type KeyPair struct {
	KeyID    string `json:"key_id" mapstructure:"key_id"`
	Key      string `json:"key" mapstructure:"key"`
	BucketID string `json:"bucket_id,omitempty" mapstructure:"bucket_id"`
}

func (p KeyPair) valid() bool {
	return p.KeyID != "" && p.Key != ""
}

func (p KeyPair) accountKey() emulator.AccountKey {
	return emulator.AccountKey{KeyID: p.KeyID, Key: p.Key, BucketID: p.BucketID}
}

// LoadKeysFromFile loads application keys from a JSON file holding an array
// of key pairs:
//
//	[
//	  {"key_id": "0012ab", "key": "K001secret"},
//	  {"key_id": "0034cd", "key": "K001other", "bucket_id": "photos"}
//	]
//
// Entries without a key id or key are skipped.
func LoadKeysFromFile(path string) (map[string]emulator.AccountKey, error) {
	data, err := os.ReadFile(path) //nolint:gosec // Path is from trusted config file
	if err != nil {
		return nil, fmt.Errorf("read keys file: %w", err)
	}

	var pairs []KeyPair
	if err := json.Unmarshal(data, &pairs); err != nil {
		return nil, fmt.Errorf("parse keys file: %w", err)
	}

	keys := make(map[string]emulator.AccountKey, len(pairs))
	for _, p := range pairs {
		if p.valid() {
			keys[p.KeyID] = p.accountKey()
		}
	}

	return keys, nil
}
