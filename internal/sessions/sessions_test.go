package sessions_test

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"testing"

	"github.com/coverline/coverline/internal/config"
	"github.com/coverline/coverline/internal/ingest"
	"github.com/coverline/coverline/internal/pipeline"
	"github.com/coverline/coverline/internal/sessions"
	"github.com/coverline/coverline/pkg/query"
)

func ptr[T any](v T) *T { return &v }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestMapHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", sessions.ErrNotFound, http.StatusNotFound},
		{"duplicate", sessions.ErrDuplicate, http.StatusConflict},
		{"invalid id", sessions.ErrInvalidID, http.StatusBadRequest},
		{"no archive", sessions.ErrNoArchive, http.StatusBadRequest},
		{"too large", sessions.ErrTooLarge, http.StatusRequestEntityTooLarge},
		{"no summary", sessions.ErrNoSummary, http.StatusConflict},
		{"processing", sessions.ErrProcessing, http.StatusConflict},
		{"unknown", errors.New("connection refused"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sessions.MapHTTPStatus(tt.err); got != tt.want {
				t.Errorf("MapHTTPStatus(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

func TestFiltersFromQuery(t *testing.T) {
	tests := []struct {
		name   string
		query  string
		want   sessions.Filters
	}{
		{"empty", "", sessions.Filters{}},
		{"status", "status=completed", sessions.Filters{Status: ptr("completed")}},
		{"mode", "pipeline_mode=sequential", sessions.Filters{PipelineMode: ptr("sequential")}},
		{
			"both",
			"status=processing&pipeline_mode=planned",
			sessions.Filters{Status: ptr("processing"), PipelineMode: ptr("planned")},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			values, err := url.ParseQuery(tt.query)
			if err != nil {
				t.Fatalf("parse query: %v", err)
			}

			got := sessions.FiltersFromQuery(values)

			if (got.Status == nil) != (tt.want.Status == nil) ||
				(got.Status != nil && *got.Status != *tt.want.Status) {
				t.Errorf("Status = %v, want %v", got.Status, tt.want.Status)
			}
			if (got.PipelineMode == nil) != (tt.want.PipelineMode == nil) ||
				(got.PipelineMode != nil && *got.PipelineMode != *tt.want.PipelineMode) {
				t.Errorf("PipelineMode = %v, want %v", got.PipelineMode, tt.want.PipelineMode)
			}
		})
	}
}

func TestFiltersApply(t *testing.T) {
	projection := query.
		NewProjectionMap("public", "sessions", "s").
		Project("status", "Status").
		Project("pipeline_mode", "PipelineMode")

	t.Run("no filters produces no WHERE clause", func(t *testing.T) {
		b := query.NewBuilder(projection)
		sessions.Filters{}.Apply(b)
		sql, args := b.Build()

		wantSQL := "SELECT s.status, s.pipeline_mode FROM public.sessions s"
		if sql != wantSQL {
			t.Errorf("sql = %q, want %q", sql, wantSQL)
		}
		if len(args) != 0 {
			t.Errorf("args = %v, want empty", args)
		}
	})

	t.Run("filters bind exact-match arguments", func(t *testing.T) {
		b := query.NewBuilder(projection)
		sessions.Filters{
			Status:       ptr("completed"),
			PipelineMode: ptr("planned"),
		}.Apply(b)
		_, args := b.Build()

		if len(args) != 2 {
			t.Errorf("args length = %d, want 2", len(args))
		}
	})
}

func TestSweeperSweep(t *testing.T) {
	workspace := t.TempDir()
	cfg := &config.PipelineConfig{
		Workspace:          workspace,
		ExtractConcurrency: 2,
		CleanupMaxAge:      "-1s",
		CleanupInterval:    "1h",
	}

	store := pipeline.NewStore(discardLogger())
	ing := ingest.New(cfg, discardLogger())
	sweeper := sessions.NewSweeper(cfg, store, ing, discardLogger())

	store.Get("live-session")
	if err := os.MkdirAll(filepath.Join(workspace, "stale-session"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	evicted := sweeper.Sweep()
	if evicted != 1 {
		t.Errorf("evicted = %d, want 1", evicted)
	}
	if store.Count() != 0 {
		t.Errorf("store count = %d, want 0", store.Count())
	}
	if _, err := os.Stat(filepath.Join(workspace, "stale-session")); !os.IsNotExist(err) {
		t.Error("stale workspace not removed")
	}
}

func TestSweeperKeepsFreshSessions(t *testing.T) {
	workspace := t.TempDir()
	cfg := &config.PipelineConfig{
		Workspace:          workspace,
		ExtractConcurrency: 2,
		CleanupMaxAge:      "24h",
		CleanupInterval:    "1h",
	}

	store := pipeline.NewStore(discardLogger())
	ing := ingest.New(cfg, discardLogger())
	sweeper := sessions.NewSweeper(cfg, store, ing, discardLogger())

	store.Get("fresh-session")
	if err := os.MkdirAll(filepath.Join(workspace, "fresh-folder"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	if evicted := sweeper.Sweep(); evicted != 0 {
		t.Errorf("evicted = %d, want 0", evicted)
	}
	if store.Count() != 1 {
		t.Errorf("store count = %d, want 1", store.Count())
	}
	if _, err := os.Stat(filepath.Join(workspace, "fresh-folder")); err != nil {
		t.Errorf("fresh workspace removed: %v", err)
	}
}
