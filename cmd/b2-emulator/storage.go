package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/sagarc03/b2files/config"
	"github.com/sagarc03/b2files/emulator"
	"github.com/sagarc03/b2files/filesystem"
	"github.com/sagarc03/b2files/storage/minio"
)

// openStorage returns the configured blob backend and a function releasing it.
func openStorage(ctx context.Context, cfg config.StorageConfig) (emulator.BlobStorage, func(), error) {
	switch cfg.Type {
	case config.StorageMinio:
		store, err := minio.NewStore(ctx, cfg.Minio, slog.Default())
		if err != nil {
			return nil, nil, fmt.Errorf("open minio storage: %w", err)
		}
		slog.Info("using minio storage", "endpoint", cfg.Minio.Endpoint, "bucket", cfg.Minio.Bucket)
		return store, func() {}, nil
	default:
		if err := os.MkdirAll(cfg.Path, 0o750); err != nil {
			return nil, nil, fmt.Errorf("create storage directory: %w", err)
		}
		root, err := os.OpenRoot(cfg.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("open storage root: %w", err)
		}
		slog.Info("using filesystem storage", "path", cfg.Path)
		return filesystem.NewFileStorage(root), func() { _ = root.Close() }, nil
	}
}
