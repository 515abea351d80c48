package e2e_test

import (
	"fmt"
	"net"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var (
	binaries      = map[string]string{}
	binaryErrs    = map[string]error{}
	binaryMu      sync.Mutex
	sharedTempDir string
)

func TestMain(m *testing.M) {
	var err error
	sharedTempDir, err = os.MkdirTemp("", "b2files-e2e-*")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create temp dir: %v\n", err)
		os.Exit(1)
	}

	code := m.Run()

	terminatePostgres()
	_ = os.RemoveAll(sharedTempDir)

	os.Exit(code)
}

// AppKey is an application key the emulator accepts.
type AppKey struct {
	KeyID    string
	Key      string
	BucketID string // empty = all buckets
}

// Bucket is a bucket the emulator serves.
type Bucket struct {
	ID   string
	Name string
}

// ServerConfig holds configuration for starting the emulator.
type ServerConfig struct {
	Port        int
	DBType      string // sqlite, postgres
	DBDSN       string
	Table       string
	StoragePath string
	Buckets     []Bucket
	Keys        []AppKey
}

var (
	keyAll = AppKey{KeyID: "key-all", Key: "secret-all"}
	keyB1  = AppKey{KeyID: "key-b1", Key: "secret-b1", BucketID: "B1"}
)

func defaultServerConfig(t *testing.T, dbType, dsn string) ServerConfig {
	t.Helper()
	return ServerConfig{
		Port:        getOpenPort(t),
		DBType:      dbType,
		DBDSN:       dsn,
		Table:       "b2_files",
		StoragePath: t.TempDir(),
		Buckets:     []Bucket{{ID: "B1", Name: "photos"}, {ID: "B2", Name: "docs"}},
		Keys:        []AppKey{keyAll, keyB1},
	}
}

// buildBinary compiles ./cmd/<name> once per test run.
func buildBinary(t *testing.T, name string) string {
	t.Helper()

	binaryMu.Lock()
	defer binaryMu.Unlock()

	if path, ok := binaries[name]; ok {
		return path
	}
	if err, ok := binaryErrs[name]; ok {
		t.Fatalf("failed to build %s: %v", name, err)
	}

	path := filepath.Join(sharedTempDir, name)
	cmd := exec.Command("go", "build", "-o", path, "./cmd/"+name)
	cmd.Dir = getProjectRoot(t)
	if output, err := cmd.CombinedOutput(); err != nil {
		binaryErrs[name] = fmt.Errorf("build binary: %w\nOutput: %s", err, output)
		t.Fatalf("failed to build %s: %v", name, binaryErrs[name])
	}

	binaries[name] = path
	return path
}

// getProjectRoot returns the directory holding go.mod.
func getProjectRoot(t *testing.T) string {
	t.Helper()

	dir, err := os.Getwd()
	require.NoError(t, err, "get working directory")

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			t.Fatal("could not find project root (go.mod)")
		}
		dir = parent
	}
}

// createConfigFile writes an emulator config file and returns its path.
func createConfigFile(t *testing.T, cfg ServerConfig) string {
	t.Helper()

	var sb strings.Builder
	fmt.Fprintf(&sb, `server:
  port: %d
  api_url: http://localhost:%d

database:
  type: %s
  dsn: "%s"
  auto_migrate: false
  tables:
    files: %s

storage:
  type: filesystem
  path: "%s"

service:
  buckets:
`, cfg.Port, cfg.Port, cfg.DBType, cfg.DBDSN, cfg.Table, cfg.StoragePath)

	for _, b := range cfg.Buckets {
		fmt.Fprintf(&sb, "    - id: %s\n      name: %s\n", b.ID, b.Name)
	}

	if len(cfg.Keys) > 0 {
		sb.WriteString("\nkeys:\n  inline:\n")
		for _, k := range cfg.Keys {
			fmt.Fprintf(&sb, "    - key_id: %s\n      key: %s\n", k.KeyID, k.Key)
			if k.BucketID != "" {
				fmt.Fprintf(&sb, "      bucket_id: %s\n", k.BucketID)
			}
		}
	}

	sb.WriteString("\nlog:\n  level: error\n")

	configPath := filepath.Join(t.TempDir(), "b2emu.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte(sb.String()), 0o600), "write config file")

	return configPath
}

// initDatabase runs the init command to create the file record table.
func initDatabase(t *testing.T, configPath string) {
	t.Helper()

	cmd := exec.Command(buildBinary(t, "b2-emulator"), "init", "--drop", "--config", configPath)
	output, err := cmd.CombinedOutput()
	require.NoError(t, err, "init database: %s", output)
}

// startServer starts the emulator and returns its base URL. The server is
// stopped when the test ends.
func startServer(t *testing.T, cfg ServerConfig) string {
	t.Helper()

	configPath := createConfigFile(t, cfg)
	initDatabase(t, configPath)

	cmd := exec.Command(buildBinary(t, "b2-emulator"), "serve", "--config", configPath)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	require.NoError(t, cmd.Start(), "start server")

	t.Cleanup(func() {
		if cmd.Process != nil {
			_ = cmd.Process.Signal(syscall.SIGTERM)
			_ = cmd.Wait()
		}
	})

	baseURL := fmt.Sprintf("http://localhost:%d", cfg.Port)
	waitForServer(t, baseURL, 10*time.Second)

	return baseURL
}

// waitForServer polls the server until it responds or times out.
func waitForServer(t *testing.T, baseURL string, timeout time.Duration) {
	t.Helper()

	deadline := time.Now().Add(timeout)
	client := &http.Client{Timeout: 1 * time.Second}

	for time.Now().Before(deadline) {
		resp, err := client.Get(baseURL + "/")
		if err == nil {
			_ = resp.Body.Close()
			return
		}
		time.Sleep(100 * time.Millisecond)
	}

	t.Fatalf("server failed to start within %v", timeout)
}

// getOpenPort finds an available TCP port.
func getOpenPort(t *testing.T) int {
	t.Helper()

	l, err := net.Listen("tcp", ":0")
	require.NoError(t, err, "find open port")

	port := l.Addr().(*net.TCPAddr).Port
	require.NoError(t, l.Close(), "close port")

	return port
}
