package emulator

import (
	"context"
	"io"

	"github.com/sagarc03/b2files"
)

// FileRepo persists the current version of every file record.
// Implementations must be safe for concurrent use.
type FileRepo interface {
	// Upsert stores rec as the current version of (rec.BucketID, rec.FileName).
	// It returns the file id of the version it replaced, or "" for a new name.
	Upsert(ctx context.Context, rec b2files.FileRecord) (string, error)

	// List returns up to limit records of bucketID whose names sort at or
	// after startFileName, ordered by file name.
	List(ctx context.Context, bucketID, startFileName string, limit int) ([]b2files.FileRecord, error)
}

// SaveResult describes bytes written to blob storage.
type SaveResult struct {
	BytesWritten int64
	SHA1         string
}

// BlobStorage stores file contents by key.
type BlobStorage interface {
	// Write stores content under key, overwriting any existing blob, and
	// returns the byte count and hex SHA1 of what was written.
	Write(ctx context.Context, key string, content io.Reader) (SaveResult, error)

	// Delete removes the blob at key. Returns ErrNotFound if it does not exist.
	Delete(ctx context.Context, key string) error
}

// AccountKey is an application key the emulator accepts.
// A non-empty BucketID restricts the key to that bucket.
type AccountKey struct {
	KeyID    string
	Key      string
	BucketID string
}

// KeyStore looks up application keys by id.
type KeyStore interface {
	Lookup(keyID string) (AccountKey, error)
}
