package agents

import (
	"errors"
	"strings"

	"github.com/openai/openai-go"
)

// Kind classifies capability call failures for retry handling.
type Kind int

const (
	// KindTransient covers failures where another attempt may succeed.
	KindTransient Kind = iota
	// KindThrottled indicates provider rate limiting; retries should back
	// off with increasing delay.
	KindThrottled
	// KindCredential indicates missing, invalid, or expired credentials;
	// retries cannot succeed.
	KindCredential
	// KindNotFound indicates a model or resource identifier the provider
	// does not recognize; retries cannot succeed.
	KindNotFound
)

func (k Kind) String() string {
	switch k {
	case KindThrottled:
		return "throttled"
	case KindCredential:
		return "credential"
	case KindNotFound:
		return "not_found"
	default:
		return "transient"
	}
}

// Retryable reports whether another attempt may succeed.
func (k Kind) Retryable() bool {
	return k == KindTransient || k == KindThrottled
}

var (
	credentialMarkers = []string{"credential", "unauthorized", "token", "expired", "api key", "authentication"}
	throttleMarkers   = []string{"throttl", "rate limit", "too many requests", "quota"}
	notFoundMarkers   = []string{"not found", "does not exist", "no such model"}
)

// Classify inspects an error and assigns its failure kind. Provider API
// errors are classified by status code; everything else falls back to
// message keyword matching.
func Classify(err error) Kind {
	if err == nil {
		return KindTransient
	}

	if errors.Is(err, ErrNoCredentials) {
		return KindCredential
	}

	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		switch apiErr.StatusCode {
		case 401, 403:
			return KindCredential
		case 404:
			return KindNotFound
		case 429:
			return KindThrottled
		}
	}

	msg := strings.ToLower(err.Error())
	for _, marker := range credentialMarkers {
		if strings.Contains(msg, marker) {
			return KindCredential
		}
	}
	for _, marker := range throttleMarkers {
		if strings.Contains(msg, marker) {
			return KindThrottled
		}
	}
	for _, marker := range notFoundMarkers {
		if strings.Contains(msg, marker) {
			return KindNotFound
		}
	}

	return KindTransient
}
