package http

import "errors"

// ErrMissingToken is returned when a request carries no Authorization header.
var ErrMissingToken = errors.New("missing authorization token")
