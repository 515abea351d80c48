package filesystem_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sagarc03/b2files/emulator"
	"github.com/sagarc03/b2files/filesystem"
)

func newStore(t *testing.T) (*filesystem.Store, string) {
	t.Helper()

	dir := t.TempDir()
	root, err := os.OpenRoot(dir)
	require.NoError(t, err)
	t.Cleanup(func() { _ = root.Close() })

	return filesystem.NewFileStorage(root), dir
}

func listDir(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func TestStore_Write(t *testing.T) {
	t.Run("writes content and reports sha1", func(t *testing.T) {
		store, dir := newStore(t)

		res, err := store.Write(context.Background(), "B1/4_zB1_fabc", strings.NewReader("hello"))
		require.NoError(t, err)
		assert.Equal(t, int64(5), res.BytesWritten)
		assert.Equal(t, "aaf4c61ddcc5e8a2dabede0f3b482cd9aea9434d", res.SHA1)

		got, err := os.ReadFile(filepath.Join(dir, "B1", "4_zB1_fabc"))
		require.NoError(t, err)
		assert.Equal(t, "hello", string(got))
		assert.Equal(t, []string{"B1"}, listDir(t, dir), "no temp files left behind")
	})

	t.Run("empty content", func(t *testing.T) {
		store, _ := newStore(t)

		res, err := store.Write(context.Background(), "empty", bytes.NewReader(nil))
		require.NoError(t, err)
		assert.Zero(t, res.BytesWritten)
		assert.Equal(t, "da39a3ee5e6b4b0d3255bfef95601890afd80709", res.SHA1)
	})

	t.Run("overwrites existing blob", func(t *testing.T) {
		store, dir := newStore(t)
		ctx := context.Background()

		_, err := store.Write(ctx, "k", strings.NewReader("first"))
		require.NoError(t, err)
		_, err = store.Write(ctx, "k", strings.NewReader("second"))
		require.NoError(t, err)

		got, err := os.ReadFile(filepath.Join(dir, "k"))
		require.NoError(t, err)
		assert.Equal(t, "second", string(got))
	})

	t.Run("cancelled context", func(t *testing.T) {
		store, dir := newStore(t)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := store.Write(ctx, "k", strings.NewReader("data"))
		assert.ErrorIs(t, err, context.Canceled)
		assert.Empty(t, listDir(t, dir))
	})

	t.Run("reader failure removes temp file", func(t *testing.T) {
		store, dir := newStore(t)
		readErr := errors.New("connection reset")

		_, err := store.Write(context.Background(), "k", &failingReader{err: readErr})
		assert.ErrorIs(t, err, readErr)
		assert.Empty(t, listDir(t, dir))
	})

	t.Run("key cannot escape root", func(t *testing.T) {
		store, _ := newStore(t)

		_, err := store.Write(context.Background(), "../escape", strings.NewReader("x"))
		assert.Error(t, err)
	})
}

func TestStore_Delete(t *testing.T) {
	t.Run("removes blob", func(t *testing.T) {
		store, dir := newStore(t)
		ctx := context.Background()

		_, err := store.Write(ctx, "B1/f1", strings.NewReader("x"))
		require.NoError(t, err)

		require.NoError(t, store.Delete(ctx, "B1/f1"))
		_, err = os.Stat(filepath.Join(dir, "B1", "f1"))
		assert.True(t, os.IsNotExist(err))
	})

	t.Run("missing blob", func(t *testing.T) {
		store, _ := newStore(t)

		err := store.Delete(context.Background(), "nope")
		assert.ErrorIs(t, err, emulator.ErrNotFound)
	})

	t.Run("cancelled context", func(t *testing.T) {
		store, _ := newStore(t)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		assert.ErrorIs(t, store.Delete(ctx, "k"), context.Canceled)
	})
}

type failingReader struct {
	err  error
	sent bool
}

func (r *failingReader) Read(p []byte) (int, error) {
	if !r.sent {
		r.sent = true
		return copy(p, "partial"), nil
	}
	return 0, r.err
}
