package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"docuchunk/internal/config"
	"docuchunk/internal/handlers"
	"docuchunk/internal/service"
)

// Deps holds dependencies for the HTTP router.
type Deps struct {
	DataService service.DataService
	Config      *config.Config
}

// NewRouter creates a new HTTP router with the provided dependencies.
func NewRouter(deps *Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(LoggerMiddleware)
	r.Use(RequestLogger)
	r.Use(middleware.Recoverer)
	r.Use(CORS)

	welcomeHandler := handlers.NewWelcomeHandler(deps.Config.AppName, deps.Config.AppVersion)
	healthHandler := handlers.NewHealthHandler(deps.DataService)
	uploadHandler := handlers.NewUploadHandler(deps.DataService, deps.Config.MaxUploadBytes())
	processHandler := handlers.NewProcessHandler(deps.DataService)
	chunksHandler := handlers.NewChunksHandler(deps.DataService)

	r.Route("/api/v1", func(r chi.Router) {
		r.Method(http.MethodGet, "/", welcomeHandler)
		r.Method(http.MethodGet, "/health", healthHandler)

		r.Route("/data", func(r chi.Router) {
			r.Method(http.MethodPost, "/upload/{project_id}", uploadHandler)
			r.Method(http.MethodPost, "/process/{project_id}", processHandler)
			r.Method(http.MethodGet, "/chunks/{project_id}", chunksHandler)
		})
	})

	return r
}
