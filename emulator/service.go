package emulator

import (
	"context"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/sagarc03/b2files"
)

const (
	// MaxFileCountCeiling is the largest page a single list call returns.
	MaxFileCountCeiling = 10000

	// DoNotVerify is the X-Bz-Content-Sha1 value that skips checksum verification.
	DoNotVerify = "do_not_verify"

	defaultTokenTTL       = 24 * time.Hour
	defaultCleanupTimeout = 30 * time.Second
	defaultAccountID      = "emulator"
)

// Bucket is a bucket the emulator serves.
type Bucket struct {
	ID   string `mapstructure:"id" validate:"required"`
	Name string `mapstructure:"name"`
}

// ServiceConfig holds configuration options for Service.
type ServiceConfig struct {
	APIURL         string
	DownloadURL    string // defaults to APIURL
	AccountID      string
	Buckets        []Bucket      // empty accepts any bucket id
	TokenTTL       time.Duration // default: 24h
	CleanupTimeout time.Duration // default: 30s
	Logger         *slog.Logger  // default: slog.Default()
}

// UploadInput is one upload as received on the wire.
type UploadInput struct {
	BucketID      string
	FileName      string
	ContentType   string
	ContentLength int64
	ContentSHA1   string
	FileInfo      map[string]string
	Body          io.Reader
}

// Service implements the file name listing and upload endpoints.
type Service struct {
	repo           FileRepo
	storage        BlobStorage
	keys           KeyStore
	tokens         *TokenRegistry
	apiURL         string
	downloadURL    string
	accountID      string
	buckets        map[string]Bucket
	cleanupTimeout time.Duration
	logger         *slog.Logger
	now            func() time.Time
}

// NewService creates a Service backed by repo, storage and keys.
func NewService(repo FileRepo, storage BlobStorage, keys KeyStore, cfg ServiceConfig) (*Service, error) {
	if repo == nil || storage == nil || keys == nil {
		return nil, errors.New("new service: repo, storage and key store are required")
	}

	apiURL := strings.TrimRight(cfg.APIURL, "/")
	if apiURL == "" {
		return nil, fmt.Errorf("new service: %w: api url cannot be empty", ErrInvalidInput)
	}

	downloadURL := strings.TrimRight(cfg.DownloadURL, "/")
	if downloadURL == "" {
		downloadURL = apiURL
	}

	accountID := cfg.AccountID
	if accountID == "" {
		accountID = defaultAccountID
	}

	ttl := cfg.TokenTTL
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}

	cleanupTimeout := cfg.CleanupTimeout
	if cleanupTimeout <= 0 {
		cleanupTimeout = defaultCleanupTimeout
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	buckets := make(map[string]Bucket, len(cfg.Buckets))
	for _, b := range cfg.Buckets {
		if b.ID == "" {
			return nil, fmt.Errorf("new service: %w: bucket id cannot be empty", ErrInvalidInput)
		}
		buckets[b.ID] = b
	}

	return &Service{
		repo:           repo,
		storage:        storage,
		keys:           keys,
		tokens:         NewTokenRegistry(ttl),
		apiURL:         apiURL,
		downloadURL:    downloadURL,
		accountID:      accountID,
		buckets:        buckets,
		cleanupTimeout: cleanupTimeout,
		logger:         logger,
		now:            time.Now,
	}, nil
}

// Tokens exposes the token registry, mainly so tests can control its clock.
func (s *Service) Tokens() *TokenRegistry {
	return s.tokens
}

// Authorize exchanges an application key for an account token.
func (s *Service) Authorize(ctx context.Context, keyID, key string) (b2files.Authorization, error) {
	if err := ctx.Err(); err != nil {
		return b2files.Authorization{}, fmt.Errorf("authorize: %w", err)
	}

	if keyID == "" || key == "" {
		return b2files.Authorization{}, fmt.Errorf("authorize: %w", ErrBadCredentials)
	}

	ak, err := s.keys.Lookup(keyID)
	if err != nil {
		return b2files.Authorization{}, fmt.Errorf("authorize: %w", err)
	}

	if subtle.ConstantTimeCompare([]byte(ak.Key), []byte(key)) != 1 {
		return b2files.Authorization{}, fmt.Errorf("authorize: %w", ErrBadCredentials)
	}

	token := s.tokens.IssueAccount(AccountGrant{
		AccountID: s.accountID,
		KeyID:     ak.KeyID,
		BucketID:  ak.BucketID,
	})

	auth := b2files.Authorization{
		AccountID:          s.accountID,
		AuthorizationToken: token,
		APIURL:             s.apiURL,
		DownloadURL:        s.downloadURL,
	}
	auth.Allowed.Capability = []string{"listFiles", "writeFiles"}
	if ak.BucketID != "" {
		auth.Allowed.BucketID = ak.BucketID
		auth.Allowed.BucketName = s.buckets[ak.BucketID].Name
	}

	return auth, nil
}

// ListFileNames returns one page of bucket file names in name order.
// A zero MaxFileCount means b2files.DefaultMaxFileCount; values above
// MaxFileCountCeiling are capped.
func (s *Service) ListFileNames(ctx context.Context, accountToken string, q b2files.ListQuery) (b2files.FileListPage, error) {
	if err := ctx.Err(); err != nil {
		return b2files.FileListPage{}, fmt.Errorf("list file names: %w", err)
	}

	grant, err := s.tokens.Account(accountToken)
	if err != nil {
		return b2files.FileListPage{}, fmt.Errorf("list file names: %w", err)
	}

	if err := s.checkBucket(grant.BucketID, q.BucketID); err != nil {
		return b2files.FileListPage{}, fmt.Errorf("list file names: %w", err)
	}

	limit := q.MaxFileCount
	switch {
	case limit < 0:
		return b2files.FileListPage{}, fmt.Errorf("list file names: %w: maxFileCount must not be negative", ErrInvalidInput)
	case limit == 0:
		limit = b2files.DefaultMaxFileCount
	case limit > MaxFileCountCeiling:
		limit = MaxFileCountCeiling
	}

	// One extra row tells us where the next page starts.
	records, err := s.repo.List(ctx, q.BucketID, q.StartFileName, limit+1)
	if err != nil {
		return b2files.FileListPage{}, fmt.Errorf("list file names: %w", err)
	}

	page := b2files.FileListPage{Files: records}
	if len(records) > limit {
		next := records[limit].FileName
		page.Files = records[:limit]
		page.NextFileName = &next
	}
	if page.Files == nil {
		page.Files = []b2files.FileRecord{}
	}

	return page, nil
}

// GetUploadURL issues an upload credential for bucketID.
func (s *Service) GetUploadURL(ctx context.Context, accountToken, bucketID string) (b2files.UploadCredential, error) {
	if err := ctx.Err(); err != nil {
		return b2files.UploadCredential{}, fmt.Errorf("get upload url: %w", err)
	}

	grant, err := s.tokens.Account(accountToken)
	if err != nil {
		return b2files.UploadCredential{}, fmt.Errorf("get upload url: %w", err)
	}

	if err := s.checkBucket(grant.BucketID, bucketID); err != nil {
		return b2files.UploadCredential{}, fmt.Errorf("get upload url: %w", err)
	}

	token := s.tokens.IssueUpload(UploadGrant{AccountID: grant.AccountID, BucketID: bucketID})

	return b2files.UploadCredential{
		BucketID:           bucketID,
		UploadURL:          s.apiURL + b2files.APIPath + "/b2_upload_file/" + bucketID,
		AuthorizationToken: token,
	}, nil
}

// UploadFile stores in.Body as the newest version of in.FileName.
//
// The declared length and SHA1 are checked against what was written; on a
// mismatch the blob is removed and ErrChecksumMismatch is returned. The
// blob of the replaced version, if any, is deleted best-effort.
func (s *Service) UploadFile(ctx context.Context, uploadToken string, in UploadInput) (b2files.FileRecord, error) {
	if err := ctx.Err(); err != nil {
		return b2files.FileRecord{}, fmt.Errorf("upload file: %w", err)
	}

	grant, err := s.tokens.Upload(uploadToken)
	if err != nil {
		return b2files.FileRecord{}, fmt.Errorf("upload file: %w", err)
	}

	if in.BucketID != grant.BucketID {
		return b2files.FileRecord{}, fmt.Errorf("upload file: %w: token issued for another bucket", ErrBadAuthToken)
	}

	if !b2files.IsValidFileName(in.FileName) {
		return b2files.FileRecord{}, fmt.Errorf("upload file: %w: invalid file name", ErrInvalidInput)
	}

	if in.ContentLength < 0 {
		return b2files.FileRecord{}, fmt.Errorf("upload file: %w: content length required", ErrInvalidInput)
	}

	wantSHA1 := strings.ToLower(in.ContentSHA1)
	if wantSHA1 != DoNotVerify && !isHexSHA1(wantSHA1) {
		return b2files.FileRecord{}, fmt.Errorf("upload file: %w: invalid content sha1", ErrInvalidInput)
	}

	fileID := newFileID(in.BucketID)
	key := in.BucketID + "/" + fileID

	saved, err := s.storage.Write(ctx, key, io.LimitReader(in.Body, in.ContentLength+1))
	if err != nil {
		return b2files.FileRecord{}, fmt.Errorf("upload file %s: write failed: %w", in.FileName, err)
	}

	if saved.BytesWritten != in.ContentLength {
		return b2files.FileRecord{}, s.discard(key, fmt.Errorf("upload file %s: %w: got %d bytes, want %d",
			in.FileName, ErrChecksumMismatch, saved.BytesWritten, in.ContentLength))
	}

	if wantSHA1 != DoNotVerify && saved.SHA1 != wantSHA1 {
		return b2files.FileRecord{}, s.discard(key, fmt.Errorf("upload file %s: %w: sha1 %s", in.FileName, ErrChecksumMismatch, saved.SHA1))
	}

	rec := b2files.FileRecord{
		AccountID:       grant.AccountID,
		Action:          "upload",
		BucketID:        in.BucketID,
		ContentLength:   saved.BytesWritten,
		ContentSHA1:     saved.SHA1,
		ContentType:     detectContentType(in.FileName, in.ContentType),
		FileID:          fileID,
		FileInfo:        in.FileInfo,
		FileName:        in.FileName,
		UploadTimestamp: s.now().UnixMilli(),
	}

	replaced, err := s.repo.Upsert(ctx, rec)
	if err != nil {
		return b2files.FileRecord{}, s.discard(key, fmt.Errorf("upload file %s: record upsert failed: %w", in.FileName, err))
	}

	if replaced != "" && replaced != fileID {
		cleanupCtx, cancel := context.WithTimeout(context.Background(), s.cleanupTimeout)
		defer cancel()

		delErr := s.storage.Delete(cleanupCtx, in.BucketID+"/"+replaced)
		if delErr != nil && !errors.Is(delErr, ErrNotFound) {
			s.logger.WarnContext(ctx, "failed to delete replaced blob", "bucket", in.BucketID, "file_id", replaced, "error", delErr)
		}
	}

	return rec, nil
}

// discard removes a blob that will never be referenced and returns cause,
// annotated if the removal failed too.
func (s *Service) discard(key string, cause error) error {
	cleanupCtx, cancel := context.WithTimeout(context.Background(), s.cleanupTimeout)
	defer cancel()

	if delErr := s.storage.Delete(cleanupCtx, key); delErr != nil && !errors.Is(delErr, ErrNotFound) {
		return fmt.Errorf("%w (cleanup failed: %w)", cause, delErr)
	}
	return cause
}

func (s *Service) checkBucket(allowed, bucketID string) error {
	if bucketID == "" {
		return fmt.Errorf("%w: bucketId cannot be empty", ErrInvalidInput)
	}

	if allowed != "" && allowed != bucketID {
		return fmt.Errorf("%w: key is restricted to bucket %s", ErrBadAuthToken, allowed)
	}

	if len(s.buckets) > 0 {
		if _, ok := s.buckets[bucketID]; !ok {
			return fmt.Errorf("%w: bucket %s", ErrInvalidInput, bucketID)
		}
	}

	return nil
}

func newFileID(bucketID string) string {
	id := uuid.New()
	return "4_z" + bucketID + "_f" + hex.EncodeToString(id[:])
}

func isHexSHA1(s string) bool {
	if len(s) != 40 {
		return false
	}
	_, err := hex.DecodeString(s)
	return err == nil
}

func detectContentType(fileName, declared string) string {
	if declared != "" && declared != b2files.DefaultContentType {
		return declared
	}

	if t := mime.TypeByExtension(path.Ext(fileName)); t != "" {
		return t
	}
	return "application/octet-stream"
}
