package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(d Deps, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(d)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Modules CRUD. Slugs may contain slashes.
	r.Get("/modules", h.ListModules)
	r.Post("/modules", h.CreateModule)
	r.Get("/modules/*", h.GetModule)
	r.Post("/modules/*", h.SaveModule)
	r.Delete("/modules/*", h.DeleteModule)

	r.Get("/stats", h.Stats)
	r.Get("/matrix", h.Matrix)
	r.Get("/chapters/{chapter}/download", h.DownloadChapter)

	r.Get("/sources", h.ListSources)
	r.Post("/sources", h.SaveSource)
	r.Delete("/sources", h.DeleteSource)

	r.Get("/settings/formats", h.GetFormats)
	r.Post("/settings/formats", h.SaveFormats)

	r.Route("/ai", func(r chi.Router) {
		r.Post("/tags", contentPipeline(h, "ai tags", d.Pipeline.Tags))
		r.Post("/style", contentPipeline(h, "ai style", d.Pipeline.Style))
		r.Post("/feedback", contentPipeline(h, "ai feedback", d.Pipeline.Feedback))
		r.Post("/titles", contentPipeline(h, "ai titles", d.Pipeline.Titles))
		r.Post("/metadata", contentPipeline(h, "ai metadata", d.Pipeline.Metadata))
		r.Post("/references", h.References)
		r.Post("/quotes", h.Quotes)
		r.Post("/title-availability", h.TitleAvailability)
		r.Post("/dialectic", h.Dialectic)
		r.Post("/persona-feedback", h.PersonaFeedback)
		r.Get("/personas", h.Personas)
	})

	r.Route("/research", func(r chi.Router) {
		r.Post("/optimize", h.Optimize)
		r.Post("/search", h.ResearchSearch)
		r.Post("/perplexity", h.ResearchSearch)
		r.Post("/query", h.Query)
		r.Post("/extract", h.Extract)
		r.Post("/summarize", h.Summarize)
		r.Post("/import", h.Import)
	})

	r.Get("/search", h.Search)
	r.Get("/graph", h.Graph)
	r.Post("/backup", h.Backup)

	// SSE endpoint (protected by same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
