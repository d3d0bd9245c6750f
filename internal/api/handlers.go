package api

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/starford/notebook/internal/apperr"
	"github.com/starford/notebook/internal/notelist"
	"github.com/starford/notebook/internal/notestore"
	"github.com/starford/notebook/internal/richtext"
)

// Handler holds API route handlers.
type Handler struct {
	store notestore.NoteStore
	cfg   RouterConfig
	log   *slog.Logger
}

// NewHandler creates a new Handler.
func NewHandler(store notestore.NoteStore, cfg RouterConfig) *Handler {
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Handler{store: store, cfg: cfg, log: log}
}

func invalid(err error) error {
	return fmt.Errorf("%w: %w", apperr.ErrInvalidInput, err)
}

// ListNotes handles GET /api/notes.
//
//	@Summary		List notes grouped by creation day, optionally filtered
//	@Tags			notes
//	@Produce		json
//	@Param			q	query		string	false	"Case-insensitive substring of title or description"
//	@Success		200	{object}	NoteListResponse
//	@Security		BearerAuth
//	@Router			/notes [get]
func (h *Handler) ListNotes(w http.ResponseWriter, r *http.Request) {
	notes, err := h.store.FetchAll(r.Context())
	if err != nil {
		writeError(w, h.log, "list notes", err)
		return
	}
	models := notelist.Filter(notelist.DecodeAll(notes, h.log), r.URL.Query().Get("q"))
	groups := notelist.GroupByDay(models, h.cfg.Location, h.cfg.DayLayout)
	if groups == nil {
		groups = []notelist.DayGroup{}
	}
	writeJSON(w, http.StatusOK, NoteListResponse{Groups: groups, Total: len(models)})
}

// GetNote handles GET /api/notes/{id}.
//
//	@Summary		Get a single note by id
//	@Tags			notes
//	@Produce		json
//	@Param			id	path		string	true	"Note id"
//	@Success		200	{object}	NoteDetail
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notes/{id} [get]
func (h *Handler) GetNote(w http.ResponseWriter, r *http.Request) {
	m, err := h.load(r, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.log, "get note", err)
		return
	}
	writeJSON(w, http.StatusOK, newNoteDetail(m))
}

// CreateNote handles POST /api/notes.
//
//	@Summary		Create a new note
//	@Tags			notes
//	@Accept			json
//	@Produce		json
//	@Param			body	body		NoteRequest	true	"Note to create"
//	@Success		201		{object}	NoteDetail
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notes [post]
func (h *Handler) CreateNote(w http.ResponseWriter, r *http.Request) {
	var req NoteRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, h.log, "create note", invalid(err))
		return
	}
	id, err := h.store.Create(r.Context(), req.Build(h.cfg.Theme))
	if err != nil {
		writeError(w, h.log, "create note", err)
		return
	}
	m, err := h.load(r, id)
	if err != nil {
		writeError(w, h.log, "create note", err)
		return
	}
	writeJSON(w, http.StatusCreated, newNoteDetail(m))
}

// UpdateNote handles PUT /api/notes/{id}.
//
//	@Summary		Replace a note body
//	@Tags			notes
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string		true	"Note id"
//	@Param			body	body		NoteRequest	true	"Updated content"
//	@Success		200		{object}	NoteDetail
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notes/{id} [put]
func (h *Handler) UpdateNote(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req NoteRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, h.log, "update note", invalid(err))
		return
	}
	if err := h.store.Update(r.Context(), id, req.Build(h.cfg.Theme)); err != nil {
		writeError(w, h.log, "update note", err)
		return
	}
	m, err := h.load(r, id)
	if err != nil {
		writeError(w, h.log, "update note", err)
		return
	}
	writeJSON(w, http.StatusOK, newNoteDetail(m))
}

// DeleteNote handles DELETE /api/notes/{id}.
//
//	@Summary		Delete a note
//	@Tags			notes
//	@Param			id	path	string	true	"Note id"
//	@Success		204	"Note deleted"
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notes/{id} [delete]
func (h *Handler) DeleteNote(w http.ResponseWriter, r *http.Request) {
	if err := h.store.DeleteByID(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, h.log, "delete note", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ApplyEdit handles POST /api/notes/{id}/edits.
//
//	@Summary		Apply an editor action to a note and save it
//	@Tags			notes
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string		true	"Note id"
//	@Param			body	body		EditRequest	true	"Edit to apply"
//	@Success		200		{object}	EditResponse
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notes/{id}/edits [post]
func (h *Handler) ApplyEdit(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req EditRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, h.log, "apply edit", invalid(err))
		return
	}
	edit, err := richtext.ParseEdit(req.Kind, req.Text, req.Trait)
	if err != nil {
		writeError(w, h.log, "apply edit", err)
		return
	}
	m, err := h.load(r, id)
	if err != nil {
		writeError(w, h.log, "apply edit", err)
		return
	}
	doc, sel := richtext.Apply(m.Document, req.Selection, edit, h.cfg.Theme)
	if err := h.store.Update(r.Context(), id, doc); err != nil {
		writeError(w, h.log, "apply edit", err)
		return
	}
	if m, err = h.load(r, id); err != nil {
		writeError(w, h.log, "apply edit", err)
		return
	}
	writeJSON(w, http.StatusOK, EditResponse{Note: newNoteDetail(m), Selection: sel})
}

// Search handles GET /api/search.
//
//	@Summary		Search notes by title and description
//	@Tags			search
//	@Produce		json
//	@Param			q		query		string	true	"Search query"
//	@Param			limit	query		int		false	"Max results"
//	@Success		200		{object}	SearchResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/search [get]
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'q' is required"))
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	notes, err := h.store.Search(r.Context(), q, limit)
	if err != nil {
		writeError(w, h.log, "search", err)
		return
	}
	writeJSON(w, http.StatusOK, SearchResponse{Results: notelist.DecodeAll(notes, h.log)})
}

func (h *Handler) load(r *http.Request, id string) (notelist.NoteModel, error) {
	n, err := h.store.FetchByID(r.Context(), id)
	if err != nil {
		return notelist.NoteModel{}, err
	}
	return notelist.Decode(n)
}
