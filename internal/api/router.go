package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/coursekit/coursekit/internal/siteservice"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(svc *siteservice.Service, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Materials.
	r.Get("/posts", h.ListPosts)
	r.Get("/posts/status/*", h.PostStatus)
	r.Get("/tags", h.ListTags)

	// Calendar.
	r.Get("/holidays", h.Holidays)
	r.Get("/calendar", h.Calendar)

	// Search.
	r.Get("/search", h.Search)

	// SSE endpoint (protected by same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
