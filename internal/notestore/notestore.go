// Package notestore persists notes in SQLite.
package notestore

import (
	"context"

	"github.com/starford/notebook/internal/models"
	"github.com/starford/notebook/internal/richtext"
)

// NoteStore is the persistence contract consumed by the list view, editor,
// API and tool surfaces. Depend on it rather than on *Store so tests can
// swap in fakes.
type NoteStore interface {
	Create(ctx context.Context, doc *richtext.Document) (string, error)
	Update(ctx context.Context, id string, doc *richtext.Document) error
	FetchAll(ctx context.Context) ([]models.Note, error)
	FetchByID(ctx context.Context, id string) (models.Note, error)
	DeleteByID(ctx context.Context, id string) error
	Search(ctx context.Context, query string, limit int) ([]models.Note, error)
	Subscribe(fn func(models.Event)) (unsubscribe func())
}

// Verify *Store satisfies NoteStore at compile time.
var _ NoteStore = (*Store)(nil)
