package sessions

import (
	"net/url"

	"github.com/coverline/coverline/pkg/query"
	"github.com/coverline/coverline/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "sessions", "s").
	Project("id", "ID").
	Project("status", "Status").
	Project("document_count", "DocumentCount").
	Project("content_length", "ContentLength").
	Project("completed_stages", "CompletedStages").
	Project("pipeline_mode", "PipelineMode").
	Project("created_at", "CreatedAt").
	Project("updated_at", "UpdatedAt")

var defaultSort = query.SortField{
	Field:      "CreatedAt",
	Descending: true,
}

// Filters contains optional filtering criteria for session queries.
// Nil fields are ignored. Status and PipelineMode use exact matching.
type Filters struct {
	Status       *string `json:"status,omitempty"`
	PipelineMode *string `json:"pipeline_mode,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	return b.
		WhereEquals("Status", f.Status).
		WhereEquals("PipelineMode", f.PipelineMode)
}

// FiltersFromQuery extracts filter values from URL query parameters.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters

	if s := values.Get("status"); s != "" {
		f.Status = &s
	}

	if m := values.Get("pipeline_mode"); m != "" {
		f.PipelineMode = &m
	}

	return f
}

func scanSession(s repository.Scanner) (Session, error) {
	var sess Session
	err := s.Scan(
		&sess.ID,
		&sess.Status,
		&sess.DocumentCount,
		&sess.ContentLength,
		&sess.CompletedStages,
		&sess.PipelineMode,
		&sess.CreatedAt,
		&sess.UpdatedAt,
	)
	return sess, err
}
