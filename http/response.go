package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/sagarc03/b2files/emulator"
)

// ErrorResponse is the B2 error body.
type ErrorResponse struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// WriteError writes a JSON error response.
func WriteError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(ErrorResponse{
		Status:  status,
		Code:    code,
		Message: message,
	}); err != nil {
		slog.Error("failed to encode error response", "error", err)
	}
}

// HandleError maps service errors to B2 status codes and error codes.
func HandleError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, emulator.ErrExpiredToken):
		WriteError(w, http.StatusUnauthorized, "expired_auth_token", "Authorization token has expired")
	case errors.Is(err, emulator.ErrBadAuthToken), errors.Is(err, ErrMissingToken):
		WriteError(w, http.StatusUnauthorized, "bad_auth_token", err.Error())
	case errors.Is(err, emulator.ErrBadCredentials):
		WriteError(w, http.StatusUnauthorized, "unauthorized", "Invalid application key")
	case errors.Is(err, emulator.ErrInvalidInput), errors.Is(err, emulator.ErrChecksumMismatch):
		WriteError(w, http.StatusBadRequest, "bad_request", err.Error())
	case errors.Is(err, emulator.ErrNotFound):
		WriteError(w, http.StatusNotFound, "not_found", "Not found")
	default:
		slog.Error("request error", "error", err)
		WriteError(w, http.StatusInternalServerError, "internal_error", "Internal server error")
	}
}

// WriteJSON writes a JSON response.
func WriteJSON(w http.ResponseWriter, code int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	return json.NewEncoder(w).Encode(data)
}
