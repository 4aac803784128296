package sessions

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/coverline/coverline/internal/pipeline"
	"github.com/coverline/coverline/pkg/pagination"
	"github.com/coverline/coverline/pkg/query"
	"github.com/coverline/coverline/pkg/repository"
	"github.com/coverline/coverline/pkg/sessionid"
)

type repo struct {
	db         *sql.DB
	logger     *slog.Logger
	pagination pagination.Config
}

// New creates a session catalog repository implementing the System interface.
func New(db *sql.DB, logger *slog.Logger, pagination pagination.Config) System {
	return &repo{
		db:         db,
		logger:     logger.With("system", "sessions"),
		pagination: pagination,
	}
}

func (r *repo) Handler(deps HandlerDeps) *Handler {
	return NewHandler(r, deps, r.logger, r.pagination)
}

func (r *repo) List(
	ctx context.Context,
	page pagination.PageRequest,
	filters Filters,
) (*pagination.PageResult[Session], error) {
	page.Normalize(r.pagination)

	qb := query.
		NewBuilder(projection, defaultSort).
		WhereSearch(page.Search, "ID", "Status")

	filters.Apply(qb)

	if len(page.Sort) > 0 {
		qb.OrderByFields(page.Sort)
	}

	countSQL, countArgs := qb.BuildCount()
	var total int
	if err := r.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count sessions: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	rows, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanSession)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}

	result := pagination.NewPageResult(rows, total, page.Page, page.PageSize)
	return &result, nil
}

func (r *repo) Find(ctx context.Context, id string) (*Session, error) {
	q, args := query.NewBuilder(projection).BuildSingle("ID", id)

	s, err := repository.QueryOne(ctx, r.db, q, args, scanSession)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &s, nil
}

func (r *repo) Create(ctx context.Context) (*Session, error) {
	id := sessionid.New(time.Now().UTC())

	q := `
		INSERT INTO sessions(id)
		VALUES ($1)
		RETURNING id, status, document_count, content_length, completed_stages, pipeline_mode, created_at, updated_at`

	s, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Session, error) {
		return repository.QueryOne(ctx, tx, q, []any{id}, scanSession)
	})

	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("session created", "id", s.ID)
	return &s, nil
}

func (r *repo) MarkProcessing(ctx context.Context, id string) error {
	_, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (struct{}, error) {
		err := repository.ExecExpectOne(
			ctx, tx,
			"UPDATE sessions SET status = $2, updated_at = now() WHERE id = $1",
			id, pipeline.StatusProcessing,
		)
		return struct{}{}, err
	})

	if err != nil {
		return repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return nil
}

func (r *repo) Record(ctx context.Context, cmd RecordCommand) (*Session, error) {
	q := `
		UPDATE sessions
		SET status = $2,
			document_count = $3,
			content_length = $4,
			completed_stages = $5,
			pipeline_mode = $6,
			updated_at = now()
		WHERE id = $1
		RETURNING id, status, document_count, content_length, completed_stages, pipeline_mode, created_at, updated_at`

	args := []any{
		cmd.SessionID,
		cmd.Status,
		cmd.DocumentCount,
		cmd.ContentLength,
		cmd.CompletedStages,
		cmd.PipelineMode,
	}

	s, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Session, error) {
		return repository.QueryOne(ctx, tx, q, args, scanSession)
	})

	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info(
		"session run recorded",
		"id", s.ID,
		"status", s.Status,
		"completed_stages", s.CompletedStages,
	)
	return &s, nil
}

func (r *repo) Delete(ctx context.Context, id string) error {
	_, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (struct{}, error) {
		err := repository.ExecExpectOne(
			ctx, tx,
			"DELETE FROM sessions WHERE id = $1",
			id,
		)
		return struct{}{}, err
	})

	if err != nil {
		return repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("session deleted", "id", id)
	return nil
}
