package clientcli

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/sagarc03/b2files"
)

// DefaultTimeout is the default HTTP client timeout.
const DefaultTimeout = 5 * time.Minute

// Client runs CLI operations against a B2 compatible service. It authorizes
// lazily on the first call and reuses the account token afterwards.
type Client struct {
	config     *Config
	httpClient *http.Client
	logger     *slog.Logger

	mu    sync.Mutex
	files *b2files.Files
	auth  b2files.Authorization
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithLogger sets the logger passed to the underlying file client.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		c.logger = l
	}
}

// New creates a new Client with the given config and options.
func New(cfg *Config, opts ...Option) (*Client, error) {
	if cfg == nil {
		return nil, ErrConfigRequired
	}

	cfg = cfg.WithDefaults()
	cfg.Endpoint = strings.TrimSuffix(cfg.Endpoint, "/")

	c := &Client{
		config:     cfg,
		httpClient: &http.Client{Timeout: DefaultTimeout},
		logger:     slog.Default(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// Authorize exchanges the configured application key for an account token.
// Later calls return the cached authorization.
func (c *Client) Authorize(ctx context.Context) (b2files.Authorization, error) {
	if _, err := c.session(ctx); err != nil {
		return b2files.Authorization{}, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.auth, nil
}

func (c *Client) session(ctx context.Context) (*b2files.Files, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.files != nil {
		return c.files, nil
	}

	if err := c.config.ValidateWithAuth(); err != nil {
		return nil, err
	}

	auth, err := b2files.Authorize(ctx, c.httpClient, c.config.Endpoint, c.config.KeyID, c.config.Key)
	if err != nil {
		return nil, err
	}

	files, err := b2files.NewFiles(b2files.SessionFromAuthorization(auth),
		b2files.WithDoer(c.httpClient),
		b2files.WithLogger(c.logger),
	)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("authorized", "account_id", auth.AccountID, "api_url", auth.APIURL, "bucket_id", auth.Allowed.BucketID)

	c.auth = auth
	c.files = files
	return files, nil
}

func (c *Client) bucket(bucketID string) string {
	if bucketID != "" {
		return bucketID
	}
	return c.config.BucketID
}

// List lists file names in a bucket. If opts.All is true, every page is fetched.
func (c *Client) List(ctx context.Context, opts ListOptions) (*ListResult, error) {
	files, err := c.session(ctx)
	if err != nil {
		return nil, err
	}

	q := b2files.ListQuery{
		BucketID:      c.bucket(opts.BucketID),
		StartFileName: opts.StartFileName,
		MaxFileCount:  opts.MaxFileCount,
	}

	result := &ListResult{Files: []FileInfo{}}

	if !opts.All {
		page, err := files.List(ctx, q)
		if err != nil {
			return nil, err
		}
		appendPage(result, page)
		return result, nil
	}

	for page, err := range files.Pages(ctx, q) {
		if err != nil {
			return nil, err
		}
		appendPage(result, page)
	}
	result.NextFileName = ""

	return result, nil
}

func appendPage(result *ListResult, page b2files.FileListPage) {
	for _, rec := range page.Files {
		result.Files = append(result.Files, fileInfoFromRecord(rec))
	}
	result.NextFileName = ""
	if page.HasMore() {
		result.NextFileName = *page.NextFileName
	}
}

// Upload uploads file(s) to the bucket.
// For recursive uploads, walks the directory and preserves relative paths.
func (c *Client) Upload(ctx context.Context, opts UploadOptions) ([]UploadResult, error) {
	if opts.LocalPath == "" {
		return nil, fmt.Errorf("upload: %w", ErrEmptyPath)
	}

	files, err := c.session(ctx)
	if err != nil {
		return nil, err
	}

	if opts.Recursive {
		return c.uploadRecursive(ctx, files, opts)
	}

	remote := opts.RemotePath
	if remote == "" {
		remote = NormalizeLocalToRemotePath(opts.LocalPath)
	}

	result, err := c.uploadSingle(ctx, files, opts.LocalPath, remote, opts.BucketID, opts.ContentType)
	if err != nil {
		return nil, err
	}
	return []UploadResult{result}, nil
}

func (c *Client) uploadRecursive(ctx context.Context, files *b2files.Files, opts UploadOptions) ([]UploadResult, error) {
	info, err := os.Stat(opts.LocalPath)
	if err != nil {
		return nil, fmt.Errorf("stat local path: %w", err)
	}

	if !info.IsDir() {
		remote := opts.RemotePath
		if remote == "" {
			remote = NormalizeLocalToRemotePath(opts.LocalPath)
		}
		result, uploadErr := c.uploadSingle(ctx, files, opts.LocalPath, remote, opts.BucketID, opts.ContentType)
		if uploadErr != nil {
			return nil, uploadErr
		}
		return []UploadResult{result}, nil
	}

	var results []UploadResult
	baseDir := opts.LocalPath
	remotePrefix := strings.Trim(opts.RemotePath, "/")

	walkErr := filepath.WalkDir(baseDir, func(path string, d fs.DirEntry, fileErr error) error {
		if fileErr != nil {
			return fileErr
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if d.IsDir() {
			return nil
		}

		relPath, relErr := filepath.Rel(baseDir, path)
		if relErr != nil {
			results = append(results, UploadResult{
				LocalPath: path,
				Err:       fmt.Errorf("calculate relative path: %w", relErr),
			})
			return nil
		}

		remote := filepath.ToSlash(relPath)
		if remotePrefix != "" {
			remote = remotePrefix + "/" + remote
		}

		result, uploadErr := c.uploadSingle(ctx, files, path, remote, opts.BucketID, "")
		if uploadErr != nil {
			result = UploadResult{
				LocalPath: path,
				FileName:  remote,
				Err:       uploadErr,
			}
		}
		results = append(results, result)
		return nil
	})

	if walkErr != nil {
		return results, fmt.Errorf("walk directory: %w", walkErr)
	}

	return results, nil
}

func (c *Client) uploadSingle(ctx context.Context, files *b2files.Files, localPath, fileName, bucketID, contentType string) (UploadResult, error) {
	data, err := os.ReadFile(localPath) //#nosec G304 -- localPath is user-provided input
	if err != nil {
		return UploadResult{}, fmt.Errorf("read file: %w", err)
	}

	rec, err := files.Upload(ctx, b2files.UploadObject{
		Data:        data,
		FileName:    fileName,
		BucketID:    c.bucket(bucketID),
		ContentType: contentType,
	})
	if err != nil {
		return UploadResult{}, err
	}

	return UploadResult{
		LocalPath:   localPath,
		FileName:    rec.FileName,
		FileID:      rec.FileID,
		BucketID:    rec.BucketID,
		ContentType: rec.ContentType,
		ContentSHA1: rec.ContentSHA1,
		Size:        rec.ContentLength,
		UploadedAt:  time.UnixMilli(rec.UploadTimestamp).UTC(),
	}, nil
}

// HasUploadErrors returns true if any upload failed.
func HasUploadErrors(results []UploadResult) bool {
	for _, r := range results {
		if r.Err != nil {
			return true
		}
	}
	return false
}

// NormalizeLocalToRemotePath converts a local path to a clean file name.
// It handles:
//   - Leading "./" is stripped (./foo/bar.txt -> foo/bar.txt)
//   - Leading "/" is stripped (/abs/path/file.txt -> abs/path/file.txt)
//   - Parent traversal is resolved (../sibling/file.txt -> sibling/file.txt)
//   - Backslashes are converted to forward slashes (Windows)
func NormalizeLocalToRemotePath(localPath string) string {
	path := filepath.ToSlash(filepath.Clean(filepath.ToSlash(localPath)))

	path = strings.TrimPrefix(path, "./")
	path = strings.TrimPrefix(path, "/")

	for strings.HasPrefix(path, "../") {
		path = strings.TrimPrefix(path, "../")
	}

	if path == ".." || path == "." {
		return ""
	}

	return path
}
