// Package minio stores emulator blobs in an S3-compatible bucket.
package minio

import (
	"context"
	"crypto/sha1" //nolint:gosec // B2 content checksums are SHA1
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/sagarc03/b2files/emulator"
)

// Config describes the S3 endpoint and bucket holding blobs.
type Config struct {
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Bucket    string `mapstructure:"bucket"`
	Prefix    string `mapstructure:"prefix"`
	UseSSL    bool   `mapstructure:"use_ssl"`
}

// Store implements emulator.BlobStorage on an S3 bucket.
type Store struct {
	client *minio.Client
	bucket string
	prefix string
	logger *slog.Logger
}

// NewStore connects to cfg.Endpoint and creates the bucket if it is missing.
func NewStore(ctx context.Context, cfg Config, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("new minio store: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("new minio store: check bucket: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("new minio store: create bucket: %w", err)
		}
		logger.Info("created blob bucket", "bucket", cfg.Bucket)
	}

	return &Store{
		client: client,
		bucket: cfg.Bucket,
		prefix: strings.Trim(cfg.Prefix, "/"),
		logger: logger,
	}, nil
}

func (s *Store) objectKey(key string) string {
	if s.prefix == "" {
		return key
	}
	return s.prefix + "/" + key
}

// Write uploads content to key and returns its size and hex SHA1.
func (s *Store) Write(ctx context.Context, key string, content io.Reader) (emulator.SaveResult, error) {
	if err := ctx.Err(); err != nil {
		return emulator.SaveResult{}, err
	}

	h := sha1.New() //nolint:gosec // B2 content checksums are SHA1
	info, err := s.client.PutObject(ctx, s.bucket, s.objectKey(key), io.TeeReader(content, h), -1,
		minio.PutObjectOptions{ContentType: "application/octet-stream"})
	if err != nil {
		return emulator.SaveResult{}, fmt.Errorf("put object %s: %w", key, err)
	}

	s.logger.Debug("blob stored", "bucket", s.bucket, "key", key, "size", info.Size)

	return emulator.SaveResult{BytesWritten: info.Size, SHA1: hex.EncodeToString(h.Sum(nil))}, nil
}

// Delete removes the object at key. Returns emulator.ErrNotFound if it does not exist.
func (s *Store) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	objectKey := s.objectKey(key)

	// RemoveObject succeeds for missing keys, so check first.
	if _, err := s.client.StatObject(ctx, s.bucket, objectKey, minio.StatObjectOptions{}); err != nil {
		if isNotFound(err) {
			return emulator.ErrNotFound
		}
		return fmt.Errorf("stat object %s: %w", key, err)
	}

	if err := s.client.RemoveObject(ctx, s.bucket, objectKey, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("remove object %s: %w", key, err)
	}
	return nil
}

func isNotFound(err error) bool {
	var resp minio.ErrorResponse
	if errors.As(err, &resp) {
		return resp.Code == "NoSuchKey" || resp.StatusCode == 404
	}
	return minio.ToErrorResponse(err).Code == "NoSuchKey"
}
