package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/motioneffector/wiki/internal/wikiservice"
)

// NewRouter creates a chi router with all API routes mounted.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(svc *wikiservice.Service, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Pages CRUD.
	r.Get("/pages", h.ListPages)
	r.Post("/pages", h.CreatePage)
	r.Get("/pages/{id}", h.GetPage)
	r.Put("/pages/{id}", h.UpdatePage)
	r.Delete("/pages/{id}", h.DeletePage)
	r.Post("/pages/{id}/rename", h.RenamePage)

	// Per-page link queries.
	r.Get("/pages/{id}/links", h.Links)
	r.Get("/pages/{id}/backlinks", h.Backlinks)
	r.Get("/pages/{id}/connected", h.Connected)

	// Graph queries.
	r.Get("/graph", h.Graph)
	r.Get("/graph/dead-links", h.DeadLinks)
	r.Get("/graph/orphans", h.Orphans)

	// Search.
	r.Get("/search", h.Search)

	// Bulk transfer.
	r.Get("/export", h.Export)
	r.Post("/import", h.Import)

	// SSE endpoint (protected by the same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
