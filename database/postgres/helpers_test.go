package postgres_test

import (
	"context"
	"crypto/rand"
	"fmt"
	"math"
	"math/big"
	"sync"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	pgcontainer "github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/sagarc03/b2files"
	"github.com/sagarc03/b2files/database/internal"
	"github.com/sagarc03/b2files/database/postgres"
	"github.com/sagarc03/b2files/emulator"
)

var (
	testPool     *pgxpool.Pool
	testPoolOnce sync.Once
	testPoolErr  error
)

// getSharedTestDatabase returns a pool on a postgres container shared by all tests.
func getSharedTestDatabase(t *testing.T) *pgxpool.Pool {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping postgres container test in short mode")
	}

	testPoolOnce.Do(func() {
		ctx := context.Background()

		pgContainer, err := pgcontainer.Run(ctx,
			"postgres:18-alpine",
			pgcontainer.WithDatabase("testdb"),
			pgcontainer.WithUsername("testuser"),
			pgcontainer.WithPassword("testpass"),
			pgcontainer.BasicWaitStrategies(),
		)
		if err != nil {
			testPoolErr = fmt.Errorf("start postgres container: %w", err)
			return
		}

		connectionStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
		if err != nil {
			_ = testcontainers.TerminateContainer(pgContainer)
			testPoolErr = fmt.Errorf("connection string: %w", err)
			return
		}

		testPool, testPoolErr = pgxpool.New(ctx, connectionStr)
	})

	require.NoError(t, testPoolErr)
	return testPool
}

func getRandomString(t *testing.T) string {
	t.Helper()
	n, err := rand.Int(rand.Reader, big.NewInt(math.MaxInt64))
	require.NoError(t, err, "random string")
	return fmt.Sprintf("test%x", n.Int64())
}

func dropTable(ctx context.Context, pool *pgxpool.Pool, tableName string) error {
	_, err := pool.Exec(ctx, fmt.Sprintf("DROP TABLE IF EXISTS %s CASCADE", pgx.Identifier{tableName}.Sanitize()))
	return err
}

// setupTestDB connects to the shared container with a unique table name.
func setupTestDB(t *testing.T) (*postgres.DB, internal.Tables) {
	t.Helper()

	pool := getSharedTestDatabase(t)
	ctx := context.Background()
	tables := internal.Tables{Files: "files_" + getRandomString(t)}

	db, err := postgres.Connect(ctx, pool.Config().ConnString(), tables)
	require.NoError(t, err, "failed to connect")

	t.Cleanup(func() {
		_ = db.Close()
		_ = dropTable(ctx, pool, tables.Files)
	})

	return db, tables
}

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
