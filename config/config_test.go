package config_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sagarc03/b2files/config"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load(nil, nil)
	require.NoError(t, err)

	assert.Equal(t, 5709, cfg.Server.Port)
	assert.Equal(t, "http://localhost:5709", cfg.Server.BaseURL())
	assert.Equal(t, "emulator", cfg.Service.AccountID)
	assert.Equal(t, 24*time.Hour, cfg.Service.TokenTTL)
	assert.Equal(t, 30, cfg.Service.CleanupTimeout)
	assert.Equal(t, "sqlite", cfg.Database.Type)
	assert.Equal(t, "b2emu.db", cfg.Database.DSN)
	assert.Equal(t, "b2_files", cfg.Database.Tables.Files)
	assert.True(t, cfg.Database.AutoMigrate)
	assert.Equal(t, config.StorageFilesystem, cfg.Storage.Type)
	assert.Equal(t, "./data", cfg.Storage.Path)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
}

func TestLoad_ConfigFile(t *testing.T) {
	path := writeConfig(t, "b2emu.yaml", `
server:
  port: 8080
  api_url: https://b2.local/
service:
  account_id: acct-1
  token_ttl: 90m
  cleanup_timeout: 5
  buckets:
    - id: B1
      name: photos
    - id: B2
      name: docs
database:
  type: postgres
  dsn: postgres://localhost/test
  tables:
    files: custom_files
storage:
  path: /tmp/blobs
log:
  level: debug
  format: json
`)

	cfg, err := config.Load([]string{path}, nil)
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "https://b2.local", cfg.Server.BaseURL())
	assert.Equal(t, "acct-1", cfg.Service.AccountID)
	assert.Equal(t, 90*time.Minute, cfg.Service.TokenTTL)
	require.Len(t, cfg.Service.Buckets, 2)
	assert.Equal(t, "B1", cfg.Service.Buckets[0].ID)
	assert.Equal(t, "docs", cfg.Service.Buckets[1].Name)
	assert.Equal(t, "postgres", cfg.Database.Type)
	assert.Equal(t, "postgres://localhost/test", cfg.Database.DSN)
	assert.Equal(t, "custom_files", cfg.Database.Tables.Files)
	assert.Equal(t, "/tmp/blobs", cfg.Storage.Path)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)

	svc := cfg.EmulatorConfig()
	assert.Equal(t, "https://b2.local", svc.APIURL)
	assert.Equal(t, "acct-1", svc.AccountID)
	assert.Equal(t, 5*time.Second, svc.CleanupTimeout)
	assert.Len(t, svc.Buckets, 2)
}

func TestLoad_ConfigFileMerge(t *testing.T) {
	base := writeConfig(t, "base.yaml", `
server:
  port: 5709
database:
  type: sqlite
  dsn: base.db
log:
  level: info
`)
	override := writeConfig(t, "override.yaml", `
server:
  port: 9000
log:
  level: warn
`)

	cfg, err := config.Load([]string{base, override}, nil)
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, "base.db", cfg.Database.DSN)
}

func TestLoad_ValidationErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"invalid port", "server:\n  port: 99999\n"},
		{"invalid database type", "database:\n  type: mysql\n"},
		{"invalid storage type", "storage:\n  type: tape\n"},
		{"invalid log level", "log:\n  level: verbose\n"},
		{"invalid table name", "database:\n  tables:\n    files: \"files; drop\"\n"},
		{"bucket without id", "service:\n  buckets:\n    - name: photos\n"},
		{"minio without endpoint", "storage:\n  type: minio\n  minio:\n    access_key: a\n    secret_key: b\n"},
		{"filesystem without path", "storage:\n  type: filesystem\n  path: \"\"\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, "b2emu.yaml", tt.content)

			_, err := config.Load([]string{path}, nil)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "validate config")
		})
	}
}

func TestLoad_MinioStorage(t *testing.T) {
	path := writeConfig(t, "b2emu.yaml", `
storage:
  type: minio
  minio:
    endpoint: localhost:9000
    access_key: minioadmin
    secret_key: minioadmin
    prefix: blobs
`)

	cfg, err := config.Load([]string{path}, nil)
	require.NoError(t, err)

	assert.Equal(t, config.StorageMinio, cfg.Storage.Type)
	assert.Equal(t, "localhost:9000", cfg.Storage.Minio.Endpoint)
	assert.Equal(t, "b2emu", cfg.Storage.Minio.Bucket)
	assert.Equal(t, "blobs", cfg.Storage.Minio.Prefix)
}

func TestLoad_WithInlineKeys(t *testing.T) {
	path := writeConfig(t, "b2emu.yaml", `
keys:
  inline:
    - key_id: key-1
      key: secret-1
    - key_id: key-2
      key: secret-2
      bucket_id: B1
`)

	cfg, err := config.Load([]string{path}, nil)
	require.NoError(t, err)

	require.Len(t, cfg.Keys.Inline, 2)
	assert.Equal(t, "key-1", cfg.Keys.Inline[0].KeyID)
	assert.Equal(t, "secret-1", cfg.Keys.Inline[0].Key)
	assert.Empty(t, cfg.Keys.Inline[0].BucketID)
	assert.Equal(t, "B1", cfg.Keys.Inline[1].BucketID)
}

func TestLoad_WithCORS(t *testing.T) {
	path := writeConfig(t, "b2emu.yaml", `
cors:
  enabled: true
  allowed_origins:
    - https://example.com
  allowed_headers:
    - Authorization
    - X-Bz-File-Name
  max_age: 600
`)

	cfg, err := config.Load([]string{path}, nil)
	require.NoError(t, err)

	assert.True(t, cfg.CORS.Enabled)
	assert.Equal(t, []string{"https://example.com"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, []string{"Authorization", "X-Bz-File-Name"}, cfg.CORS.AllowedHeaders)
	assert.Equal(t, 600, cfg.CORS.MaxAge)
}

func TestLoad_EnvironmentVariables(t *testing.T) {
	t.Setenv("B2EMU_SERVER_PORT", "9090")
	t.Setenv("B2EMU_DATABASE_TYPE", "postgres")
	t.Setenv("B2EMU_SERVICE_TOKEN_TTL", "1h")
	t.Setenv("B2EMU_STORAGE_MINIO_ENDPOINT", "minio:9000")

	cfg, err := config.Load(nil, nil)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "postgres", cfg.Database.Type)
	assert.Equal(t, time.Hour, cfg.Service.TokenTTL)
	assert.Equal(t, "minio:9000", cfg.Storage.Minio.Endpoint)
}

func TestLoad_FlagsOverrideEnv(t *testing.T) {
	t.Setenv("B2EMU_SERVER_PORT", "9090")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.Int("port", 5709, "")
	flags.String("db-dsn", "", "")
	flags.String("log-level", "info", "")
	require.NoError(t, flags.Parse([]string{"--port", "7000", "--db-dsn", "flag.db"}))

	cfg, err := config.Load(nil, flags)
	require.NoError(t, err)

	assert.Equal(t, 7000, cfg.Server.Port)
	assert.Equal(t, "flag.db", cfg.Database.DSN)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestFromContext(t *testing.T) {
	_, err := config.FromContext(context.Background())
	require.Error(t, err)

	cfg := &config.Config{}
	got, err := config.FromContext(config.WithContext(context.Background(), cfg))
	require.NoError(t, err)
	assert.Same(t, cfg, got)
}
