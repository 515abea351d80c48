package sqlite_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sagarc03/b2files"
)

func names(records []b2files.FileRecord) []string {
	out := make([]string, 0, len(records))
	for _, r := range records {
		out = append(out, r.FileName)
	}
	return out
}

func TestRepo_Upsert(t *testing.T) {
	t.Run("new name reports nothing replaced", func(t *testing.T) {
		repo := setupTestRepo(t)
		ctx := context.Background()

		replaced, err := repo.Upsert(ctx, record("B1", "a.txt", "f1"))
		require.NoError(t, err)
		assert.Empty(t, replaced)
	})

	t.Run("same name replaces previous version", func(t *testing.T) {
		repo := setupTestRepo(t)
		ctx := context.Background()

		_, err := repo.Upsert(ctx, record("B1", "a.txt", "f1"))
		require.NoError(t, err)

		newer := record("B1", "a.txt", "f2")
		newer.ContentLength = 20
		newer.FileInfo = map[string]string{"author": "me"}

		replaced, err := repo.Upsert(ctx, newer)
		require.NoError(t, err)
		assert.Equal(t, "f1", replaced)

		got, err := repo.List(ctx, "B1", "", 10)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, newer, got[0])
	})

	t.Run("same name in another bucket is independent", func(t *testing.T) {
		repo := setupTestRepo(t)
		ctx := context.Background()

		_, err := repo.Upsert(ctx, record("B1", "a.txt", "f1"))
		require.NoError(t, err)

		replaced, err := repo.Upsert(ctx, record("B2", "a.txt", "f2"))
		require.NoError(t, err)
		assert.Empty(t, replaced)
	})

	t.Run("duplicate file id rejected", func(t *testing.T) {
		repo := setupTestRepo(t)
		ctx := context.Background()

		_, err := repo.Upsert(ctx, record("B1", "a.txt", "f1"))
		require.NoError(t, err)

		_, err = repo.Upsert(ctx, record("B1", "b.txt", "f1"))
		assert.Error(t, err)
	})
}

func TestRepo_List(t *testing.T) {
	t.Run("empty bucket", func(t *testing.T) {
		repo := setupTestRepo(t)

		got, err := repo.List(context.Background(), "B1", "", 10)
		require.NoError(t, err)
		assert.Empty(t, got)
		assert.NotNil(t, got)
	})

	t.Run("orders by name bytes and respects start and limit", func(t *testing.T) {
		repo := setupTestRepo(t)
		ctx := context.Background()

		for i, name := range []string{"b", "a/2", "B", "a/1", "é", "c"} {
			_, err := repo.Upsert(ctx, record("B1", name, "f"+string(rune('0'+i))))
			require.NoError(t, err)
		}
		_, err := repo.Upsert(ctx, record("B2", "a/0", "other"))
		require.NoError(t, err)

		got, err := repo.List(ctx, "B1", "", 10)
		require.NoError(t, err)
		assert.Equal(t, []string{"B", "a/1", "a/2", "b", "c", "é"}, names(got))

		got, err = repo.List(ctx, "B1", "a/2", 2)
		require.NoError(t, err)
		assert.Equal(t, []string{"a/2", "b"}, names(got))

		got, err = repo.List(ctx, "B1", "zzz", 2)
		require.NoError(t, err)
		assert.Equal(t, []string{"é"}, names(got))
	})

	t.Run("file info round trip", func(t *testing.T) {
		repo := setupTestRepo(t)
		ctx := context.Background()

		rec := record("B1", "x", "fx")
		rec.FileInfo = map[string]string{"src_last_modified_millis": "1"}
		_, err := repo.Upsert(ctx, rec)
		require.NoError(t, err)

		got, err := repo.List(ctx, "B1", "", 1)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, rec.FileInfo, got[0].FileInfo)
	})

	t.Run("cancelled context", func(t *testing.T) {
		repo := setupTestRepo(t)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := repo.List(ctx, "B1", "", 1)
		assert.Error(t, err)
	})
}
