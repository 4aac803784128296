// Package sessions implements the underwriting session domain for
// Coverline. It provides the durable session catalog, document submission
// and processing endpoints, and the cleanup sweeper that reclaims stale
// session workspaces.
package sessions

import (
	"time"
)

// Session is a catalog row describing one underwriting submission and the
// outcome of its most recent pipeline run.
type Session struct {
	ID              string    `json:"id"`
	Status          string    `json:"status"`
	DocumentCount   int       `json:"document_count"`
	ContentLength   int       `json:"content_length"`
	CompletedStages int       `json:"completed_stages"`
	PipelineMode    *string   `json:"pipeline_mode"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// RecordCommand carries the run outcome persisted to the catalog after a
// pipeline pass over a session's documents.
type RecordCommand struct {
	SessionID       string
	Status          string
	DocumentCount   int
	ContentLength   int
	CompletedStages int
	PipelineMode    string
}
