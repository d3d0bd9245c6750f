package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/starford/notebook/internal/notestore"
	"github.com/starford/notebook/internal/richtext"
)

// RouterConfig carries everything the routes need besides the store.
type RouterConfig struct {
	// AuthEnabled controls whether Bearer token auth is enforced.
	AuthEnabled bool
	Token       string
	// Events, if non-nil, is mounted at GET /events inside the auth group.
	Events http.Handler
	// Limiter, if non-nil, limits requests per client address.
	Limiter   *RateLimiter
	Theme     richtext.Theme
	Location  *time.Location
	DayLayout string
	Logger    *slog.Logger
}

// NewRouter creates a chi router with all API routes mounted.
func NewRouter(store notestore.NoteStore, cfg RouterConfig) chi.Router {
	h := NewHandler(store, cfg)

	r := chi.NewRouter()
	if cfg.Limiter != nil {
		r.Use(RateLimitMiddleware(cfg.Limiter))
	}
	r.Use(AuthMiddleware(cfg.AuthEnabled, cfg.Token))

	// Notes CRUD.
	r.Get("/notes", h.ListNotes)
	r.Post("/notes", h.CreateNote)
	r.Get("/notes/{id}", h.GetNote)
	r.Put("/notes/{id}", h.UpdateNote)
	r.Delete("/notes/{id}", h.DeleteNote)

	// Editor actions.
	r.Post("/notes/{id}/edits", h.ApplyEdit)

	// Search.
	r.Get("/search", h.Search)

	// SSE endpoint (protected by same auth middleware).
	if cfg.Events != nil {
		r.Get("/events", cfg.Events.ServeHTTP)
	}

	return r
}
