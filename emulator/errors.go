package emulator

import "errors"

var (
	// ErrNotFound is returned when a record or blob does not exist.
	ErrNotFound = errors.New("not found")
	// ErrInvalidInput is returned when request parameters fail validation.
	ErrInvalidInput = errors.New("invalid input")
	// ErrBadCredentials is returned when an application key id/key pair is rejected.
	ErrBadCredentials = errors.New("invalid application key")
	// ErrBadAuthToken is returned when an account or upload token is unknown or out of scope.
	ErrBadAuthToken = errors.New("invalid authorization token")
	// ErrExpiredToken is returned when a token was valid but has expired.
	ErrExpiredToken = errors.New("authorization token expired")
	// ErrChecksumMismatch is returned when uploaded bytes do not match the declared length or SHA1.
	ErrChecksumMismatch = errors.New("checksum mismatch")
)
