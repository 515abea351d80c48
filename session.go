package b2files

import (
	"fmt"
	"strings"
	"sync"
)

// Session is an immutable snapshot of a SessionConfig. Request builders
// only ever see a Session, so a concurrent Set cannot change a request
// half-way through construction.
type Session struct {
	APIURL        string
	AccountToken  string
	PersistBucket bool
	BucketID      string
}

// SessionConfig holds the account-wide values shared by every call made
// through one client: the API base URL, the account token and the optional
// persisted bucket. Upload credentials are deliberately not stored here;
// they are passed from GetUploadURL to the upload request as values.
type SessionConfig struct {
	mu      sync.RWMutex
	session Session
}

// NewSessionConfig creates a SessionConfig seeded with s.
func NewSessionConfig(s Session) *SessionConfig {
	s.APIURL = strings.TrimSuffix(s.APIURL, "/")
	return &SessionConfig{session: s}
}

// Snapshot returns a copy of the current values.
func (c *SessionConfig) Snapshot() Session {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.session
}

// SetAuthorization replaces the API URL and account token, e.g. after re-authorizing.
func (c *SessionConfig) SetAuthorization(apiURL, accountToken string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.session.APIURL = strings.TrimSuffix(apiURL, "/")
	c.session.AccountToken = accountToken
}

// SetPersistedBucket pins every call to bucketID. An empty id turns persistence off.
func (c *SessionConfig) SetPersistedBucket(bucketID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.session.BucketID = bucketID
	c.session.PersistBucket = bucketID != ""
}

// ResolveBucket returns the bucket a call should target. The persisted
// bucket wins when persistence is on; otherwise bucketID is required.
func (c *SessionConfig) ResolveBucket(bucketID string) (string, error) {
	return c.Snapshot().ResolveBucket(bucketID)
}

// ResolveBucket applies the bucket resolution rule to this snapshot.
func (s Session) ResolveBucket(bucketID string) (string, error) {
	resolved := bucketID
	if s.PersistBucket {
		resolved = s.BucketID
	}
	if resolved == "" {
		return "", fmt.Errorf("resolve bucket: %w", ErrBucketRequired)
	}
	return resolved, nil
}

// validate checks the account-scoped values every API request needs.
func (s Session) validate() error {
	if s.APIURL == "" {
		return ErrAPIURLRequired
	}
	if s.AccountToken == "" {
		return ErrAccountTokenRequired
	}
	return nil
}
