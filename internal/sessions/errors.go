package sessions

import (
	"errors"
	"net/http"
)

// Domain errors for session operations.
var (
	ErrNotFound   = errors.New("session not found")
	ErrDuplicate  = errors.New("session already exists")
	ErrInvalidID  = errors.New("invalid session id")
	ErrNoArchive  = errors.New("missing document archive")
	ErrTooLarge   = errors.New("archive exceeds maximum upload size")
	ErrNoSummary  = errors.New("summary not yet generated")
	ErrProcessing = errors.New("session is already being processed")
)

// MapHTTPStatus maps session domain errors to appropriate HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, ErrDuplicate) {
		return http.StatusConflict
	}
	if errors.Is(err, ErrInvalidID) || errors.Is(err, ErrNoArchive) {
		return http.StatusBadRequest
	}
	if errors.Is(err, ErrTooLarge) {
		return http.StatusRequestEntityTooLarge
	}
	if errors.Is(err, ErrNoSummary) || errors.Is(err, ErrProcessing) {
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}
