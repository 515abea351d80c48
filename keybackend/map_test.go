package keybackend_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sagarc03/b2files/emulator"
	"github.com/sagarc03/b2files/keybackend"
)

func TestMapKeyStore_Lookup(t *testing.T) {
	stored := map[string]emulator.AccountKey{
		"id1": {KeyID: "id1", Key: "secret1"},
		"id2": {KeyID: "id2", Key: "secret2", BucketID: "B1"},
	}

	tests := []struct {
		name    string
		keys    map[string]emulator.AccountKey
		keyID   string
		want    emulator.AccountKey
		wantErr bool
	}{
		{name: "unrestricted key", keys: stored, keyID: "id1", want: stored["id1"]},
		{name: "bucket restricted key", keys: stored, keyID: "id2", want: stored["id2"]},
		{name: "unknown id", keys: stored, keyID: "nope", wantErr: true},
		{name: "empty store", keys: map[string]emulator.AccountKey{}, keyID: "id1", wantErr: true},
		{name: "nil store", keys: nil, keyID: "id1", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := keybackend.NewMapKeyStore(tt.keys)
			got, err := store.Lookup(tt.keyID)

			if tt.wantErr {
				require.ErrorIs(t, err, keybackend.ErrKeyNotFound)
				assert.ErrorIs(t, err, emulator.ErrBadCredentials)
				assert.Empty(t, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
