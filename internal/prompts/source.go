package prompts

import (
	"context"
	"errors"
	"log/slog"
)

// Source adapts the prompt domain to the pipeline's override lookup.
// Lookup failures are logged and treated as no-override so a database
// outage never blocks a run.
type Source struct {
	sys    System
	logger *slog.Logger
}

// NewSource creates a pipeline prompt source backed by the prompt domain.
func NewSource(sys System, logger *slog.Logger) *Source {
	return &Source{
		sys:    sys,
		logger: logger.With("system", "prompt-source"),
	}
}

// Instructions returns the active override for a stage, reporting false
// when the stage should run on its built-in instructions.
func (s *Source) Instructions(ctx context.Context, stage string) (string, bool) {
	parsed, err := ParseStage(stage)
	if err != nil {
		return "", false
	}

	p, err := s.sys.ActiveOverride(ctx, parsed)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			s.logger.Warn("override lookup failed", "stage", stage, "error", err)
		}
		return "", false
	}

	return p.Instructions, true
}
