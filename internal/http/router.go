package httpapi

import (
	stdhttp "net/http"

	"server/internal/http/handlers"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func NewRouter(app *handlers.App) stdhttp.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Recoverer, middleware.Logger)

	// Health
	r.Get("/v1/healthz", app.Health)

	r.Route("/v1/images/story", func(r chi.Router) {
		r.Post("/", app.StoryImages)
		r.Post("/async", app.StoryImagesAsync)
		r.Get("/async/{job_id}", app.StoryImagesJob)
	})

	// Persisted illustrations, when the file store is configured.
	r.Get("/generated/*", app.Generated)

	return r
}
