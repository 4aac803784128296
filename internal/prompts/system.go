package prompts

import (
	"context"

	"github.com/google/uuid"

	"github.com/coverline/coverline/pkg/pagination"
)

// System defines the public contract for prompt domain operations.
type System interface {
	Handler() *Handler

	List(
		ctx context.Context,
		page pagination.PageRequest,
		filters Filters,
	) (*pagination.PageResult[Prompt], error)

	Find(ctx context.Context, id uuid.UUID) (*Prompt, error)
	Create(ctx context.Context, cmd CreateCommand) (*Prompt, error)
	Update(ctx context.Context, id uuid.UUID, cmd UpdateCommand) (*Prompt, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Activate(ctx context.Context, id uuid.UUID) (*Prompt, error)
	Deactivate(ctx context.Context, id uuid.UUID) (*Prompt, error)

	// ActiveOverride returns the active prompt for a stage, or ErrNotFound
	// when the stage runs on its built-in instructions.
	ActiveOverride(ctx context.Context, stage Stage) (*Prompt, error)
	// Instructions returns the effective instructions for a stage: the
	// active override if one exists, otherwise the built-in default.
	Instructions(ctx context.Context, stage Stage) (string, error)
}
