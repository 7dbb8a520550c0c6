// Package ui exposes the profiling, validation and cleaning engine over an
// HTTP API with in-memory upload sessions.
package ui

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"csvdoctor/internal"
	"csvdoctor/internal/config"
	"csvdoctor/internal/session"
)

// App is the HTTP application: router, configuration and session state.
type App struct {
	router   *chi.Mux
	cfg      *config.Config
	sessions *session.Store
	log      *internal.Logger
}

// NewApp wires the application together.
func NewApp(cfg *config.Config) *App {
	app := &App{
		router:   chi.NewRouter(),
		cfg:      cfg,
		sessions: session.NewStore(),
		log:      internal.DefaultLogger,
	}

	app.setupMiddleware()
	app.setupRoutes()
	return app
}

func (a *App) setupMiddleware() {
	a.router.Use(middleware.Logger)
	a.router.Use(middleware.Recoverer)
	a.router.Use(middleware.Compress(5))
}

func (a *App) setupRoutes() {
	a.router.Get("/api/features", a.handleFeatures)
	a.router.Post("/api/upload", a.handleUpload)

	a.router.Route("/api/sessions/{id}", func(r chi.Router) {
		r.Get("/", a.handleSessionInfo)
		r.Post("/analyze", a.handleAnalyze)
		r.Post("/validate", a.handleValidate)
		r.Post("/clean", a.handleClean)
		r.Post("/reset", a.handleReset)
		r.Get("/export/data", a.handleExportData)
		r.Get("/export/report", a.handleExportReport)
	})
}

// Handler returns the root handler for mounting in an http.Server.
func (a *App) Handler() http.Handler {
	return a.router
}
