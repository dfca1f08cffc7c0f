package server

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/avatarly/avatarly/internal/handler"
	"github.com/avatarly/avatarly/internal/middleware"
)

// Deps holds everything the router dispatches to.
type Deps struct {
	Logger        *slog.Logger
	IsDevelopment bool
	MaxBodySize   int64

	Pages    *handler.PageHandler
	Accounts *handler.AccountHandler
	Uploads  http.Handler
	Health   *handler.HealthHandler
	Metrics  *handler.MetricsHandler
}

// NewRouter configures the chi router with all routes and middleware.
func NewRouter(d Deps) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(d.Logger, "/healthz", "/readyz", "/metrics"))
	r.Use(middleware.Recoverer(d.Logger))
	r.Use(middleware.Security(middleware.SecurityConfig{IsDevelopment: d.IsDevelopment}))
	r.Use(chimiddleware.GetHead)

	// Operational endpoints
	r.Get("/healthz", d.Health.Healthz)
	r.Get("/readyz", d.Health.Readyz)
	r.Get("/metrics", d.Metrics.Metrics)

	// Fixed pages
	for route, file := range handler.Pages {
		r.Get(route, d.Pages.Page(file))
	}

	// Account forms
	r.Group(func(r chi.Router) {
		r.Use(middleware.MaxBodySize(d.MaxBodySize))
		r.Post("/register", d.Accounts.Register)
		r.Post("/login", d.Accounts.Login)
	})

	// Static trees
	r.Get("/assets/*", d.Pages.Assets().ServeHTTP)
	r.Get("/uploads/*", d.Uploads.ServeHTTP)
	r.Get("/*", d.Pages.Public().ServeHTTP)

	r.NotFound(handler.NotFound)
	r.MethodNotAllowed(handler.MethodNotAllowed)

	return r
}
