// Package api assembles the API module with all domain systems and route registration.
package api

import (
	"net/http"

	"github.com/coverline/coverline/internal/config"
	"github.com/coverline/coverline/internal/infrastructure"
	"github.com/coverline/coverline/pkg/middleware"
	"github.com/coverline/coverline/pkg/module"
)

// NewModule creates the API module with all domain handlers and middleware.
// The cleanup sweeper starts on the lifecycle context and stops on shutdown.
func NewModule(cfg *config.Config, infra *infrastructure.Infrastructure) (*module.Module, error) {
	runtime := NewRuntime(cfg, infra)
	domain := NewDomain(cfg, runtime)

	go domain.Sweeper.Run(runtime.Lifecycle.Context())

	mux := http.NewServeMux()
	registerRoutes(mux, domain, cfg, runtime)

	m := module.New(cfg.API.BasePath, mux)
	m.Use(middleware.CORS(&cfg.API.CORS))
	m.Use(middleware.Logger(runtime.Logger))

	return m, nil
}
