package pipeline

import (
	"errors"
	"net/http"
)

var (
	// ErrUnknownStage indicates a stage name outside the canonical set.
	ErrUnknownStage = errors.New("unknown pipeline stage")
	// ErrSessionNotFound indicates no live state exists for the session.
	ErrSessionNotFound = errors.New("session not found")
)

// MapHTTPStatus maps pipeline errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrUnknownStage):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
