// Package editor holds the state of one open note: its document, the
// selection and whether it has been saved.
package editor

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/starford/notebook/internal/models"
	"github.com/starford/notebook/internal/richtext"
)

// Store is the part of the note store an editor needs.
type Store interface {
	Create(ctx context.Context, doc *richtext.Document) (string, error)
	Update(ctx context.Context, id string, doc *richtext.Document) error
	FetchByID(ctx context.Context, id string) (models.Note, error)
}

// Session edits a single note. Mutations go through richtext.Apply; the
// session only keeps the result.
type Session struct {
	store Store
	theme richtext.Theme
	log   *slog.Logger

	mu    sync.Mutex
	id    string
	doc   *richtext.Document
	sel   richtext.Selection
	dirty bool
	next  int
	subs  map[int]func()
}

// Option configures a Session.
type Option func(*Session)

// WithTheme sets the base and title sizes.
func WithTheme(th richtext.Theme) Option {
	return func(s *Session) { s.theme = th }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Session) { s.log = l }
}

// New starts a session for a note that does not exist yet.
func New(store Store, opts ...Option) *Session {
	s := &Session{
		store: store,
		theme: richtext.DefaultTheme(),
		log:   slog.Default(),
		doc:   richtext.New(),
		subs:  make(map[int]func()),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Open loads note id into a new session with the caret at the end.
func Open(ctx context.Context, store Store, id string, opts ...Option) (*Session, error) {
	n, err := store.FetchByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("editor: open %s: %w", id, err)
	}
	doc, err := richtext.Unmarshal(n.Content)
	if err != nil {
		return nil, fmt.Errorf("editor: open %s: %w", id, err)
	}
	s := New(store, opts...)
	s.id = n.ID
	s.doc = richtext.ApplyTitleStyle(doc, s.theme)
	s.sel = richtext.Caret(s.doc.Len())
	return s, nil
}

// ID returns the note ID, or "" before the first save.
func (s *Session) ID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.id
}

// Document returns a copy of the current document.
func (s *Session) Document() *richtext.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.Clone()
}

// Selection returns the current selection.
func (s *Session) Selection() richtext.Selection {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sel
}

// Dirty reports whether there are unsaved edits.
func (s *Session) Dirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dirty
}

// Select moves the selection, clamped to the document.
func (s *Session) Select(sel richtext.Selection) {
	s.mu.Lock()
	n := s.doc.Len()
	if sel.Start > sel.End {
		sel.Start, sel.End = sel.End, sel.Start
	}
	sel.Start = min(max(sel.Start, 0), n)
	sel.End = min(max(sel.End, 0), n)
	s.sel = sel
	s.mu.Unlock()
	s.notify()
}

// Apply runs e at the current selection.
func (s *Session) Apply(e richtext.Edit) {
	s.mu.Lock()
	s.doc, s.sel = richtext.Apply(s.doc, s.sel, e, s.theme)
	s.dirty = true
	s.mu.Unlock()
	s.notify()
}

// Save creates the note on first save and updates it afterwards. A document
// with no text and no checklist items is not saved. On error the session is
// left unchanged.
func (s *Session) Save(ctx context.Context) error {
	s.mu.Lock()
	id, doc := s.id, s.doc.Clone()
	s.mu.Unlock()

	if isBlank(doc) {
		s.log.Debug("skip saving empty note")
		return nil
	}

	if id == "" {
		newID, err := s.store.Create(ctx, doc)
		if err != nil {
			s.log.Error("create note", slog.String("error", err.Error()))
			return fmt.Errorf("editor: save: %w", err)
		}
		id = newID
	} else if err := s.store.Update(ctx, id, doc); err != nil {
		s.log.Error("update note", slog.String("id", id), slog.String("error", err.Error()))
		return fmt.Errorf("editor: save %s: %w", id, err)
	}

	s.mu.Lock()
	s.id = id
	s.dirty = false
	s.mu.Unlock()
	s.notify()
	return nil
}

func isBlank(doc *richtext.Document) bool {
	for _, r := range doc.Runs {
		if r.IsMarker() {
			return false
		}
	}
	return strings.TrimSpace(doc.PlainText()) == ""
}

// Subscribe registers fn to run after every change to the session.
func (s *Session) Subscribe(fn func()) (unsubscribe func()) {
	s.mu.Lock()
	id := s.next
	s.next++
	s.subs[id] = fn
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

func (s *Session) notify() {
	s.mu.Lock()
	fns := make([]func(), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
}
