package clientcli

import "errors"

// Errors for profile operations.
var (
	ErrProfileNotFound = errors.New("profile not found")
	ErrNoProfiles      = errors.New("no profiles configured")
	ErrProfileExists   = errors.New("profile already exists")
)

// Errors for configuration validation.
var (
	ErrKeyIDRequired  = errors.New("application key id is required")
	ErrKeyRequired    = errors.New("application key is required")
	ErrConfigRequired = errors.New("config is required")
)

// ErrEmptyPath is returned when an upload has no local path.
var ErrEmptyPath = errors.New("path is required")
