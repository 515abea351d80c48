package sqlite_test

import (
	"context"
	"crypto/rand"
	"fmt"
	"math"
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sagarc03/b2files"
	"github.com/sagarc03/b2files/database/internal"
	"github.com/sagarc03/b2files/database/sqlite"
	"github.com/sagarc03/b2files/emulator"
)

func getRandomString(t *testing.T) string {
	t.Helper()
	n, err := rand.Int(rand.Reader, big.NewInt(math.MaxInt64))
	require.NoError(t, err, "random string")
	return fmt.Sprintf("test%x", n.Int64())
}

// setupTestDB connects to an in-memory database with a unique table name.
func setupTestDB(t *testing.T) (*sqlite.DB, internal.Tables) {
	t.Helper()

	tables := internal.Tables{Files: "files_" + getRandomString(t)}

	db, err := sqlite.Connect(context.Background(), ":memory:", tables)
	require.NoError(t, err, "failed to connect")
	t.Cleanup(func() { _ = db.Close() })

	return db, tables
}

// setupTestRepo returns a repo over a freshly migrated table.
func setupTestRepo(t *testing.T) emulator.FileRepo {
	t.Helper()

	db, _ := setupTestDB(t)
	require.NoError(t, db.Migrate(context.Background()), "failed to migrate")

	return db.GetRepo()
}

func record(bucketID, fileName, fileID string) b2files.FileRecord {
	return b2files.FileRecord{
		AccountID:       "acct",
		Action:          "upload",
		BucketID:        bucketID,
		ContentLength:   10,
		ContentSHA1:     "6adfb183a4a2c94a2f92dab5ade762a47889a5a1",
		ContentType:     "text/plain",
		FileID:          fileID,
		FileName:        fileName,
		UploadTimestamp: 1700000000000,
	}
}
