package api

import (
	"net/http"

	"github.com/coverline/coverline/internal/config"
	"github.com/coverline/coverline/internal/sessions"
	"github.com/coverline/coverline/pkg/routes"
)

func registerRoutes(
	mux *http.ServeMux,
	domain *Domain,
	cfg *config.Config,
	runtime *Runtime,
) {
	routes.Register(
		mux,
		domain.Sessions.Handler(sessions.HandlerDeps{
			Ingest:        domain.Ingest,
			Orchestrator:  domain.Orchestrator,
			Statuses:      domain.Statuses,
			MaxUploadSize: cfg.API.MaxUploadSizeBytes(),
		}).Routes(),
	)

	routes.Register(
		mux,
		domain.Prompts.Handler().Routes(),
	)

	routes.Register(
		mux,
		newStorageHandler(
			runtime.Storage,
			runtime.Logger,
			cfg.Storage.MaxListSize,
		).routes(),
	)
}
