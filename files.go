package b2files

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"net/http"
	"time"
)

// Doer sends a fully-formed request. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// DefaultTimeout is the timeout of the HTTP client used when no Doer is supplied.
const DefaultTimeout = 5 * time.Minute

// Files lists and uploads files through one SessionConfig.
// It is safe for concurrent use: each upload keeps its credential local.
type Files struct {
	session *SessionConfig
	doer    Doer
	logger  *slog.Logger
}

// Option configures Files.
type Option func(*Files)

// WithDoer sets the transport used to send requests.
func WithDoer(d Doer) Option {
	return func(f *Files) {
		f.doer = d
	}
}

// WithLogger sets the logger. Requests are logged at debug level.
func WithLogger(l *slog.Logger) Option {
	return func(f *Files) {
		f.logger = l
	}
}

// NewFiles creates Files bound to session.
func NewFiles(session *SessionConfig, opts ...Option) (*Files, error) {
	if session == nil {
		return nil, ErrSessionRequired
	}

	f := &Files{
		session: session,
		doer:    &http.Client{Timeout: DefaultTimeout},
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(f)
	}

	return f, nil
}

// Session returns the SessionConfig this Files was created with.
func (f *Files) Session() *SessionConfig {
	return f.session
}

// List fetches exactly one page of file names. Follow NextFileName with
// further calls, or use Pages, to walk the whole bucket.
func (f *Files) List(ctx context.Context, q ListQuery) (FileListPage, error) {
	s := f.session.Snapshot()

	bucketID, err := s.ResolveBucket(q.BucketID)
	if err != nil {
		return FileListPage{}, fmt.Errorf("list files: %w", err)
	}

	req, err := BuildListFilesRequest(ctx, s, bucketID, q.StartFileName, q.MaxFileCount)
	if err != nil {
		return FileListPage{}, fmt.Errorf("list files: %w", err)
	}

	var body listFileNamesResponse
	if err := f.send(req, &body); err != nil {
		return FileListPage{}, fmt.Errorf("list files: %w", err)
	}
	if body.Files == nil {
		return FileListPage{}, fmt.Errorf("list files: %w", &MalformedResponseError{
			StatusCode: http.StatusOK,
			Err:        errors.New("files missing"),
		})
	}

	return FileListPage{Files: *body.Files, NextFileName: body.NextFileName}, nil
}

// listFileNamesResponse tells an absent or null files key apart from an empty list.
type listFileNamesResponse struct {
	Files        *[]FileRecord `json:"files"`
	NextFileName *string       `json:"nextFileName"`
}

// Pages walks the listing lazily starting at q.StartFileName. Each step is
// one List call; iteration ends when a page has no NextFileName or after
// the first error, which is yielded with an empty page.
func (f *Files) Pages(ctx context.Context, q ListQuery) iter.Seq2[FileListPage, error] {
	return func(yield func(FileListPage, error) bool) {
		cursor := q.StartFileName
		for {
			if err := ctx.Err(); err != nil {
				yield(FileListPage{}, fmt.Errorf("list files: %w", err))
				return
			}

			page, err := f.List(ctx, ListQuery{
				BucketID:      q.BucketID,
				StartFileName: cursor,
				MaxFileCount:  q.MaxFileCount,
			})
			if err != nil {
				yield(FileListPage{}, err)
				return
			}

			if !yield(page, nil) || !page.HasMore() {
				return
			}
			cursor = *page.NextFileName
		}
	}
}

// GetUploadURL requests a fresh upload credential for bucketID.
// Errors match ErrUploadCredential.
func (f *Files) GetUploadURL(ctx context.Context, bucketID string) (UploadCredential, error) {
	req, err := BuildGetUploadURLRequest(ctx, f.session.Snapshot(), bucketID)
	if err != nil {
		return UploadCredential{}, fmt.Errorf("%w: %w", ErrUploadCredential, err)
	}

	var cred UploadCredential
	if err := f.send(req, &cred); err != nil {
		return UploadCredential{}, fmt.Errorf("%w: %w", ErrUploadCredential, err)
	}
	if cred.UploadURL == "" || cred.AuthorizationToken == "" {
		return UploadCredential{}, fmt.Errorf("%w: %w", ErrUploadCredential, &MalformedResponseError{
			StatusCode: http.StatusOK,
			Err:        errors.New("upload url or authorization token missing"),
		})
	}

	return cred, nil
}

// Upload stores obj.Data as obj.FileName. Every call fetches its own upload
// credential and then sends the payload: two round trips, never retried.
// A cancellation that arrives after the service stored the file does not
// undo the upload.
func (f *Files) Upload(ctx context.Context, obj UploadObject) (FileRecord, error) {
	if !IsValidFileName(obj.FileName) {
		return FileRecord{}, fmt.Errorf("upload %q: %w", obj.FileName, ErrInvalidFileName)
	}

	bucketID, err := f.session.ResolveBucket(obj.BucketID)
	if err != nil {
		return FileRecord{}, fmt.Errorf("upload %s: %w", obj.FileName, err)
	}

	cred, err := f.GetUploadURL(ctx, bucketID)
	if err != nil {
		return FileRecord{}, fmt.Errorf("upload %s: %w", obj.FileName, err)
	}

	req, err := BuildUploadRequest(ctx, cred, obj.Data, obj.FileName, obj.ContentType)
	if err != nil {
		return FileRecord{}, fmt.Errorf("upload %s: %w", obj.FileName, err)
	}

	var record FileRecord
	if err := f.send(req, &record); err != nil {
		return FileRecord{}, fmt.Errorf("upload %s: %w", obj.FileName, err)
	}
	if record.FileID == "" {
		return FileRecord{}, fmt.Errorf("upload %s: %w", obj.FileName, &MalformedResponseError{
			StatusCode: http.StatusOK,
			Err:        errors.New("file id missing"),
		})
	}

	f.logger.Debug("uploaded file", "bucket_id", bucketID, "file_name", record.FileName, "file_id", record.FileID, "bytes", record.ContentLength)

	return record, nil
}

// send dispatches req, validates the response and decodes a success body into v.
func (f *Files) send(req *http.Request, v any) error {
	start := time.Now()

	resp, err := f.doer.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	f.logger.Debug("b2 request", "method", req.Method, "url", req.URL.Redacted(), "status", resp.StatusCode, "duration", time.Since(start))

	if err := CheckResponse(resp); err != nil {
		return err
	}

	return DecodeJSON(resp, v)
}

// Authorize exchanges an application key for an account token.
func Authorize(ctx context.Context, doer Doer, authURL, keyID, key string) (Authorization, error) {
	req, err := BuildAuthorizeRequest(ctx, authURL, keyID, key)
	if err != nil {
		return Authorization{}, fmt.Errorf("authorize: %w", err)
	}

	resp, err := doer.Do(req)
	if err != nil {
		return Authorization{}, fmt.Errorf("authorize: do request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if err := CheckResponse(resp); err != nil {
		return Authorization{}, fmt.Errorf("authorize: %w", err)
	}

	var auth Authorization
	if err := DecodeJSON(resp, &auth); err != nil {
		return Authorization{}, fmt.Errorf("authorize: %w", err)
	}

	return auth, nil
}

// SessionFromAuthorization seeds a SessionConfig from auth. When the key is
// restricted to one bucket that bucket becomes the persisted bucket.
func SessionFromAuthorization(auth Authorization) *SessionConfig {
	return NewSessionConfig(Session{
		APIURL:        auth.APIURL,
		AccountToken:  auth.AuthorizationToken,
		PersistBucket: auth.Allowed.BucketID != "",
		BucketID:      auth.Allowed.BucketID,
	})
}
