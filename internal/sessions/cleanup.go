package sessions

import (
	"context"
	"log/slog"
	"time"

	"github.com/coverline/coverline/internal/config"
	"github.com/coverline/coverline/internal/ingest"
	"github.com/coverline/coverline/internal/pipeline"
)

// Sweeper periodically evicts idle in-memory session state and removes
// stale extraction workspaces. Catalog rows and status documents are
// durable and never swept.
type Sweeper struct {
	store    *pipeline.Store
	ingest   ingest.System
	interval time.Duration
	maxAge   time.Duration
	logger   *slog.Logger
}

// NewSweeper creates a Sweeper from pipeline configuration.
func NewSweeper(
	cfg *config.PipelineConfig,
	store *pipeline.Store,
	ing ingest.System,
	logger *slog.Logger,
) *Sweeper {
	return &Sweeper{
		store:    store,
		ingest:   ing,
		interval: cfg.CleanupIntervalDuration(),
		maxAge:   cfg.CleanupMaxAgeDuration(),
		logger:   logger.With("system", "sweeper"),
	}
}

// Run sweeps on the configured interval until ctx is cancelled.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep()
		}
	}
}

// Sweep performs a single cleanup pass and returns the number of sessions
// evicted from memory.
func (s *Sweeper) Sweep() int {
	evicted := 0

	for _, id := range s.store.Stale(s.maxAge) {
		s.store.Remove(id)
		evicted++
	}

	stale, err := s.ingest.StaleSessions(s.maxAge)
	if err != nil {
		s.logger.Warn("failed to scan stale workspaces", "error", err)
	}

	for _, id := range stale {
		if err := s.ingest.RemoveSession(id); err != nil {
			s.logger.Warn("failed to remove stale workspace", "id", id, "error", err)
		}
	}

	if evicted > 0 || len(stale) > 0 {
		s.logger.Info("cleanup sweep complete", "evicted", evicted, "workspaces", len(stale))
	}

	return evicted
}
