package agents

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrNoCredentials indicates the capability client has no API key configured.
	ErrNoCredentials = errors.New("model provider credentials not configured")
	// ErrEmptyResponse indicates the model returned no usable content.
	ErrEmptyResponse = errors.New("model returned empty response")
	// ErrPlanIncomplete indicates a tool-calling plan ended without a final answer.
	ErrPlanIncomplete = errors.New("plan ended without final response")
)

// CallError wraps a capability invocation failure with its classification.
type CallError struct {
	Kind Kind
	Err  error
}

func (e *CallError) Error() string {
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *CallError) Unwrap() error {
	return e.Err
}

// NewCallError classifies err and wraps it as a CallError.
func NewCallError(err error) *CallError {
	return &CallError{Kind: Classify(err), Err: err}
}

// KindOf returns the classification of err, classifying unwrapped errors
// on the fly.
func KindOf(err error) Kind {
	var ce *CallError
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return Classify(err)
}

// MapHTTPStatus maps capability errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrNoCredentials) {
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}
