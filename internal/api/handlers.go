package api

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/coursekit/coursekit/internal/apperr"
	"github.com/coursekit/coursekit/internal/siteservice"
)

// Handler holds API route handlers.
type Handler struct {
	svc *siteservice.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *siteservice.Service) *Handler {
	return &Handler{svc: svc}
}

// slugParam extracts the slug from the URL (everything after the route
// prefix). Encoded slashes are decoded.
func slugParam(r *http.Request) string {
	raw := strings.TrimPrefix(chi.URLParam(r, "*"), "/")
	if raw == "" {
		return ""
	}
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		return raw
	}
	return decoded
}

// writeError maps service errors to HTTP status codes.
func writeError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody(codeNotFound, "not found"))
	case errors.Is(err, apperr.ErrInvalidInput):
		writeJSON(w, http.StatusBadRequest, errorBody(codeInvalidInput, err.Error()))
	case errors.Is(err, apperr.ErrNotReady):
		writeJSON(w, http.StatusServiceUnavailable, errorBody(codeNotReady, "site not built yet"))
	default:
		slog.Error(op+" failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody(codeInternal, "internal error"))
	}
}

// ListPosts handles GET /api/posts.
//
//	@Summary		List visible materials, newest first
//	@Tags			posts
//	@Produce		json
//	@Param			tag	query		string	false	"Filter by tag (case-insensitive)"
//	@Success		200	{object}	PostListResponse
//	@Router			/posts [get]
func (h *Handler) ListPosts(w http.ResponseWriter, r *http.Request) {
	posts, err := h.svc.Posts(r.Context(), r.URL.Query().Get("tag"))
	if err != nil {
		writeError(w, "list posts", err)
		return
	}
	writeJSON(w, http.StatusOK, PostListResponse{Posts: posts, Total: len(posts)})
}

// ListTags handles GET /api/tags.
//
//	@Summary		List tags of the visible materials
//	@Tags			posts
//	@Produce		json
//	@Success		200	{object}	TagListResponse
//	@Router			/tags [get]
func (h *Handler) ListTags(w http.ResponseWriter, r *http.Request) {
	tags, err := h.svc.Tags(r.Context())
	if err != nil {
		writeError(w, "list tags", err)
		return
	}
	writeJSON(w, http.StatusOK, TagListResponse{Tags: tags})
}

// PostStatus handles GET /api/posts/status/*.
//
//	@Summary		Deadline status of one visible material
//	@Tags			posts
//	@Produce		json
//	@Param			slug	path		string	true	"Material slug"
//	@Success		200		{object}	PostView
//	@Failure		404		{object}	errResponse
//	@Router			/posts/status/{slug} [get]
func (h *Handler) PostStatus(w http.ResponseWriter, r *http.Request) {
	slug := slugParam(r)
	if slug == "" {
		writeJSON(w, http.StatusBadRequest, errorBody(codeInvalidInput, "slug is required"))
		return
	}
	view, err := h.svc.PostStatus(r.Context(), slug)
	if err != nil {
		writeError(w, "post status", err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// Holidays handles GET /api/holidays.
//
//	@Summary		Holidays within a date range
//	@Tags			calendar
//	@Produce		json
//	@Param			start	query		string	false	"Start date (YYYY-MM-DD), defaults to term start"
//	@Param			end		query		string	false	"End date (YYYY-MM-DD), defaults to term end"
//	@Success		200		{object}	HolidayListResponse
//	@Failure		400		{object}	errResponse
//	@Router			/holidays [get]
func (h *Handler) Holidays(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	hs, err := h.svc.Holidays(r.Context(), q.Get("start"), q.Get("end"))
	if err != nil {
		writeError(w, "holidays", err)
		return
	}
	writeJSON(w, http.StatusOK, HolidayListResponse{Holidays: hs})
}

// Calendar handles GET /api/calendar.
//
//	@Summary		Projected calendar events within a date range
//	@Tags			calendar
//	@Produce		json
//	@Param			start	query		string	false	"Start date (YYYY-MM-DD), defaults to term start"
//	@Param			end		query		string	false	"End date (YYYY-MM-DD), defaults to term end"
//	@Success		200		{object}	CalendarResponse
//	@Failure		400		{object}	errResponse
//	@Router			/calendar [get]
func (h *Handler) Calendar(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	events, months, err := h.svc.Calendar(r.Context(), q.Get("start"), q.Get("end"))
	if err != nil {
		writeError(w, "calendar", err)
		return
	}
	writeJSON(w, http.StatusOK, CalendarResponse{Events: events, Months: months})
}

// Search handles GET /api/search.
//
//	@Summary		Full-text search across visible materials and projects
//	@Tags			search
//	@Produce		json
//	@Param			q		query		string	true	"Search query"
//	@Param			limit	query		int		false	"Max results"
//	@Success		200		{object}	SearchResponse
//	@Failure		400		{object}	errResponse
//	@Router			/search [get]
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeJSON(w, http.StatusBadRequest, errorBody(codeInvalidInput, "query parameter 'q' is required"))
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	results, err := h.svc.Search(r.Context(), q, limit)
	if err != nil {
		writeError(w, "search", err)
		return
	}
	writeJSON(w, http.StatusOK, SearchResponse{Results: results})
}
