package api

import (
	"github.com/coverline/coverline/internal/config"
	"github.com/coverline/coverline/internal/ingest"
	"github.com/coverline/coverline/internal/pipeline"
	"github.com/coverline/coverline/internal/policy"
	"github.com/coverline/coverline/internal/prompts"
	"github.com/coverline/coverline/internal/sessions"
	"github.com/coverline/coverline/internal/status"
)

// Domain holds all domain systems that comprise the API.
type Domain struct {
	Sessions     sessions.System
	Prompts      prompts.System
	Ingest       ingest.System
	Statuses     status.System
	Policies     policy.System
	Orchestrator *pipeline.Orchestrator
	Sweeper      *sessions.Sweeper
}

// NewDomain creates all domain systems from the API runtime.
func NewDomain(cfg *config.Config, runtime *Runtime) *Domain {
	ingestSystem := ingest.New(&cfg.Pipeline, runtime.Logger)
	statusSystem := status.New(runtime.Storage, runtime.Logger)
	policySystem := policy.New(runtime.Agents, statusSystem, runtime.Storage, runtime.Logger)

	promptsSystem := prompts.New(
		runtime.Database.Connection(),
		runtime.Logger,
		runtime.Pagination,
	)

	store := pipeline.NewStore(runtime.Logger)
	runner := pipeline.NewRunner(&cfg.Pipeline, runtime.Agents, statusSystem, runtime.Logger)
	runner.UsePrompts(prompts.NewSource(promptsSystem, runtime.Logger))
	orchestrator := pipeline.NewOrchestrator(store, runner, runtime.Agents, policySystem, runtime.Logger)

	sessionsSystem := sessions.New(
		runtime.Database.Connection(),
		runtime.Logger,
		runtime.Pagination,
	)

	sweeper := sessions.NewSweeper(&cfg.Pipeline, store, ingestSystem, runtime.Logger)

	return &Domain{
		Sessions:     sessionsSystem,
		Prompts:      promptsSystem,
		Ingest:       ingestSystem,
		Statuses:     statusSystem,
		Policies:     policySystem,
		Orchestrator: orchestrator,
		Sweeper:      sweeper,
	}
}
