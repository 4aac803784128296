package agents_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/coverline/coverline/internal/agents"
	"github.com/coverline/coverline/internal/config"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want agents.Kind
	}{
		{"nil", nil, agents.KindTransient},
		{"no credentials sentinel", agents.ErrNoCredentials, agents.KindCredential},
		{"unauthorized message", errors.New("401 unauthorized"), agents.KindCredential},
		{"expired token message", errors.New("token has expired"), agents.KindCredential},
		{"api key message", errors.New("invalid api key provided"), agents.KindCredential},
		{"rate limit message", errors.New("rate limit exceeded, slow down"), agents.KindThrottled},
		{"throttled message", errors.New("request throttled by provider"), agents.KindThrottled},
		{"quota message", errors.New("quota exhausted for period"), agents.KindThrottled},
		{"model not found", errors.New("no such model: gpt-nonexistent"), agents.KindNotFound},
		{"resource missing", errors.New("deployment does not exist"), agents.KindNotFound},
		{"connection reset", errors.New("connection reset by peer"), agents.KindTransient},
		{"timeout", errors.New("context deadline exceeded"), agents.KindTransient},
		{"wrapped credential", fmt.Errorf("stage failed: %w", agents.ErrNoCredentials), agents.KindCredential},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := agents.Classify(tt.err); got != tt.want {
				t.Errorf("Classify(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestKindRetryable(t *testing.T) {
	tests := []struct {
		kind agents.Kind
		want bool
	}{
		{agents.KindTransient, true},
		{agents.KindThrottled, true},
		{agents.KindCredential, false},
		{agents.KindNotFound, false},
	}

	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			if got := tt.kind.Retryable(); got != tt.want {
				t.Errorf("%v.Retryable() = %v, want %v", tt.kind, got, tt.want)
			}
		})
	}
}

func TestKindString(t *testing.T) {
	tests := []struct {
		kind agents.Kind
		want string
	}{
		{agents.KindTransient, "transient"},
		{agents.KindThrottled, "throttled"},
		{agents.KindCredential, "credential"},
		{agents.KindNotFound, "not_found"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.kind.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCallError(t *testing.T) {
	base := errors.New("rate limit exceeded")
	ce := agents.NewCallError(base)

	if ce.Kind != agents.KindThrottled {
		t.Errorf("Kind = %v, want KindThrottled", ce.Kind)
	}
	if !errors.Is(ce, base) {
		t.Error("CallError should unwrap to the original error")
	}
	if ce.Error() != "throttled: rate limit exceeded" {
		t.Errorf("Error() = %q", ce.Error())
	}
}

func TestKindOf(t *testing.T) {
	t.Run("call error carries its kind", func(t *testing.T) {
		ce := &agents.CallError{Kind: agents.KindNotFound, Err: errors.New("gone")}
		if got := agents.KindOf(ce); got != agents.KindNotFound {
			t.Errorf("KindOf = %v, want KindNotFound", got)
		}
	})

	t.Run("wrapped call error", func(t *testing.T) {
		ce := &agents.CallError{Kind: agents.KindCredential, Err: errors.New("denied")}
		wrapped := fmt.Errorf("stage: %w", ce)
		if got := agents.KindOf(wrapped); got != agents.KindCredential {
			t.Errorf("KindOf = %v, want KindCredential", got)
		}
	})

	t.Run("plain error classified on the fly", func(t *testing.T) {
		if got := agents.KindOf(errors.New("too many requests")); got != agents.KindThrottled {
			t.Errorf("KindOf = %v, want KindThrottled", got)
		}
	})
}

func TestMapHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"no credentials maps to 503", agents.ErrNoCredentials, http.StatusServiceUnavailable},
		{"wrapped no credentials", fmt.Errorf("verify: %w", agents.ErrNoCredentials), http.StatusServiceUnavailable},
		{"other errors map to 500", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := agents.MapHTTPStatus(tt.err); got != tt.want {
				t.Errorf("MapHTTPStatus() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestVerifyWithoutCredentials(t *testing.T) {
	cfg := &config.AgentConfig{Model: "gpt-4o", MaxTokens: 1024, Timeout: "1m"}
	sys := agents.New(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))

	err := sys.Verify(context.Background())
	if !errors.Is(err, agents.ErrNoCredentials) {
		t.Errorf("Verify() error = %v, want ErrNoCredentials", err)
	}
}

func TestVerifyWithCredentials(t *testing.T) {
	cfg := &config.AgentConfig{APIKey: "test-key", Model: "gpt-4o", MaxTokens: 1024, Timeout: "1m"}
	sys := agents.New(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))

	if err := sys.Verify(context.Background()); err != nil {
		t.Errorf("Verify() error = %v, want nil", err)
	}
}
