package b2files

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
)

// ErrPrecondition is wrapped by every error raised before a request is sent.
var ErrPrecondition = errors.New("precondition failed")

// Precondition errors. All of them match ErrPrecondition with errors.Is.
var (
	ErrBucketRequired       = fmt.Errorf("%w: bucket id is required", ErrPrecondition)
	ErrInvalidFileName      = fmt.Errorf("%w: invalid file name", ErrPrecondition)
	ErrInvalidMaxFileCount  = fmt.Errorf("%w: max file count must be positive", ErrPrecondition)
	ErrAccountTokenRequired = fmt.Errorf("%w: account authorization token is required", ErrPrecondition)
	ErrAPIURLRequired       = fmt.Errorf("%w: api url is required", ErrPrecondition)
	ErrSessionRequired      = fmt.Errorf("%w: session config is required", ErrPrecondition)
)

var (
	// ErrUploadCredential marks a failure to obtain an upload credential.
	ErrUploadCredential = errors.New("get upload url")

	// ErrMalformedResponse marks a success response whose body does not decode.
	ErrMalformedResponse = errors.New("malformed response")
)

// ServiceError is the structured error the service returns with a non-2xx status.
type ServiceError struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *ServiceError) Error() string {
	return "service error: " + strconv.Itoa(e.Status) + " " + e.Code + ": " + e.Message
}

// Is reports whether target matches this error.
// A target with an empty Code matches on Status alone.
func (e *ServiceError) Is(target error) bool {
	var t *ServiceError
	if !errors.As(target, &t) {
		return false
	}
	if t.Status != e.Status {
		return false
	}
	return t.Code == "" || t.Code == e.Code
}

// Sentinel service errors. Use errors.Is() to check for these conditions.
var (
	ErrBadRequest   = &ServiceError{Status: http.StatusBadRequest}
	ErrUnauthorized = &ServiceError{Status: http.StatusUnauthorized}
	ErrForbidden    = &ServiceError{Status: http.StatusForbidden}
	ErrNotFound     = &ServiceError{Status: http.StatusNotFound}

	// ErrExpiredToken is returned when an account or upload token is no longer valid.
	ErrExpiredToken = &ServiceError{Status: http.StatusUnauthorized, Code: "expired_auth_token"}
)

// MalformedResponseError is returned when a success body cannot be decoded.
type MalformedResponseError struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("malformed response (status %d): %v", e.StatusCode, e.Err)
}

func (e *MalformedResponseError) Unwrap() []error {
	return []error{ErrMalformedResponse, e.Err}
}
