// Package filesystem stores emulator blobs under a local directory.
// Writes go to a temp file that is renamed into place once complete.
package filesystem

import (
	"context"
	"crypto/sha1" //nolint:gosec // B2 content checksums are SHA1
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/sagarc03/b2files/emulator"
)

// Store provides file system blob storage.
type Store struct {
	root *os.Root
}

// NewFileStorage creates a Store on root. The root confines every key to
// the directory, so keys cannot escape it.
func NewFileStorage(root *os.Root) *Store {
	return &Store{root: root}
}

// cancelableReader stops a copy once its context is done.
type cancelableReader struct {
	ctx context.Context
	io.Reader
}

func (r cancelableReader) Read(p []byte) (int, error) {
	if err := r.ctx.Err(); err != nil {
		return 0, err
	}
	return r.Reader.Read(p)
}

// Write atomically stores content at key, creating intermediate directories.
// It returns the byte count and hex SHA1 of the content.
func (s *Store) Write(ctx context.Context, key string, content io.Reader) (emulator.SaveResult, error) {
	if err := ctx.Err(); err != nil {
		return emulator.SaveResult{}, err
	}

	staging := ".t" + uuid.NewString()
	res, err := s.stage(ctx, staging, content)
	if err == nil {
		err = s.publish(staging, key)
	}
	if err != nil {
		if rmErr := s.root.Remove(staging); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
			slog.Warn("remove staging blob", "file", staging, "err", rmErr)
		}
		return emulator.SaveResult{}, err
	}
	return res, nil
}

// stage copies content into name, hashing it on the way, and syncs it to disk.
func (s *Store) stage(ctx context.Context, name string, content io.Reader) (emulator.SaveResult, error) {
	f, err := s.root.Create(name)
	if err != nil {
		return emulator.SaveResult{}, fmt.Errorf("create staging blob: %w", err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && !errors.Is(closeErr, os.ErrClosed) {
			slog.Warn("close staging blob", "file", name, "err", closeErr)
		}
	}()

	sum := sha1.New() //nolint:gosec // B2 content checksums are SHA1
	n, err := io.Copy(io.MultiWriter(sum, f), cancelableReader{ctx: ctx, Reader: content})
	if err != nil {
		return emulator.SaveResult{}, fmt.Errorf("copy blob: %w", err)
	}
	if err = f.Sync(); err != nil {
		return emulator.SaveResult{}, fmt.Errorf("sync blob: %w", err)
	}

	return emulator.SaveResult{BytesWritten: n, SHA1: hex.EncodeToString(sum.Sum(nil))}, nil
}

// publish moves a staged blob to key.
func (s *Store) publish(staging, key string) error {
	if dir := filepath.Dir(key); dir != "." {
		if err := s.root.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create blob directory: %w", err)
		}
	}
	if err := s.root.Rename(staging, key); err != nil {
		return fmt.Errorf("publish blob: %w", err)
	}
	return nil
}

// Delete removes the blob at key. Returns emulator.ErrNotFound if it does not exist.
func (s *Store) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	err := s.root.Remove(key)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, os.ErrNotExist):
		return emulator.ErrNotFound
	default:
		return fmt.Errorf("delete blob: %w", err)
	}
}
