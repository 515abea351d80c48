package keybackend

import (
	"maps"

	"github.com/sagarc03/b2files/emulator"
)

// KeysConfig holds configuration for loading application keys.
type KeysConfig struct {
	Inline []KeyPair `mapstructure:"inline"` // Inline key pairs from config
	File   string    `mapstructure:"file"`   // Path to JSON file containing key pairs
}

// NewKeyStore builds a KeyStore from inline keys and the optional keys file.
// File keys take precedence over inline keys with the same id.
func NewKeyStore(cfg KeysConfig) (emulator.KeyStore, error) {
	keys := make(map[string]emulator.AccountKey)

	for _, p := range cfg.Inline {
		if p.valid() {
			keys[p.KeyID] = p.accountKey()
		}
	}

	if cfg.File != "" {
		fileKeys, err := LoadKeysFromFile(cfg.File)
		if err != nil {
			return nil, err
		}
		maps.Copy(keys, fileKeys)
	}

	return NewMapKeyStore(keys), nil
}
