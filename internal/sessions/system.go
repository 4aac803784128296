package sessions

import (
	"context"

	"github.com/coverline/coverline/pkg/pagination"
)

// System defines the public contract for the session catalog.
type System interface {
	Handler(deps HandlerDeps) *Handler

	List(
		ctx context.Context,
		page pagination.PageRequest,
		filters Filters,
	) (*pagination.PageResult[Session], error)

	Find(ctx context.Context, id string) (*Session, error)
	Create(ctx context.Context) (*Session, error)
	MarkProcessing(ctx context.Context, id string) error
	Record(ctx context.Context, cmd RecordCommand) (*Session, error)
	Delete(ctx context.Context, id string) error
}
