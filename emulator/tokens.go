package emulator

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// AccountGrant is what an account token authorizes.
type AccountGrant struct {
	AccountID string
	KeyID     string
	BucketID  string // empty means every bucket
	ExpiresAt time.Time
}

// UploadGrant is what an upload token authorizes.
type UploadGrant struct {
	AccountID string
	BucketID  string
	ExpiresAt time.Time
}

// TokenRegistry issues and verifies account and upload tokens in memory.
// Tokens do not survive a restart.
type TokenRegistry struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	account map[string]AccountGrant
	upload  map[string]UploadGrant
}

// NewTokenRegistry creates a registry whose tokens live for ttl.
func NewTokenRegistry(ttl time.Duration) *TokenRegistry {
	return &TokenRegistry{
		ttl:     ttl,
		now:     time.Now,
		account: make(map[string]AccountGrant),
		upload:  make(map[string]UploadGrant),
	}
}

// WithClock replaces the registry's time source.
func (r *TokenRegistry) WithClock(now func() time.Time) *TokenRegistry {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.now = now
	return r
}

// IssueAccount returns a new account token for g.
func (r *TokenRegistry) IssueAccount(g AccountGrant) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	token := "4_" + uuid.NewString()
	g.ExpiresAt = r.now().Add(r.ttl)
	r.account[token] = g
	return token
}

// IssueUpload returns a new upload token for g.
func (r *TokenRegistry) IssueUpload(g UploadGrant) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	token := "4_up_" + uuid.NewString()
	g.ExpiresAt = r.now().Add(r.ttl)
	r.upload[token] = g
	return token
}

// Account verifies an account token.
func (r *TokenRegistry) Account(token string) (AccountGrant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	g, ok := r.account[token]
	if !ok {
		return AccountGrant{}, fmt.Errorf("account token: %w", ErrBadAuthToken)
	}
	if !r.now().Before(g.ExpiresAt) {
		delete(r.account, token)
		return AccountGrant{}, fmt.Errorf("account token: %w", ErrExpiredToken)
	}
	return g, nil
}

// Upload verifies an upload token.
func (r *TokenRegistry) Upload(token string) (UploadGrant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	g, ok := r.upload[token]
	if !ok {
		return UploadGrant{}, fmt.Errorf("upload token: %w", ErrBadAuthToken)
	}
	if !r.now().Before(g.ExpiresAt) {
		delete(r.upload, token)
		return UploadGrant{}, fmt.Errorf("upload token: %w", ErrExpiredToken)
	}
	return g, nil
}
