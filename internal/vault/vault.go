// Package vault mirrors notes to a directory of Markdown files and imports
// Markdown files dropped into an inbox directory.
package vault

import (
	"context"
	"log/slog"
	"time"

	"github.com/starford/notebook/internal/models"
	"github.com/starford/notebook/internal/richtext"
	"github.com/starford/notebook/internal/storage"
)

// Notes is the part of the note store the vault reads and writes.
type Notes interface {
	CreateAt(ctx context.Context, doc *richtext.Document, created time.Time) (string, error)
	FetchAll(ctx context.Context) ([]models.Note, error)
	FetchByID(ctx context.Context, id string) (models.Note, error)
}

// rejectedDir holds inbox files that could not be imported.
const rejectedDir = ".rejected"

// Vault connects a note store to an export directory and an optional inbox.
type Vault struct {
	notes   Notes
	export  storage.Provider
	inbox   storage.Provider
	pattern string
	theme   richtext.Theme
	log     *slog.Logger
}

// Option configures a Vault.
type Option func(*Vault)

// WithInbox enables importing files under inbox that match the doublestar
// pattern.
func WithInbox(inbox storage.Provider, pattern string) Option {
	return func(v *Vault) {
		v.inbox = inbox
		v.pattern = pattern
	}
}

// WithTheme sets the theme applied to imported documents.
func WithTheme(th richtext.Theme) Option {
	return func(v *Vault) { v.theme = th }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(v *Vault) { v.log = l }
}

// New returns a Vault exporting to export. export may be nil when only the
// inbox is used.
func New(notes Notes, export storage.Provider, opts ...Option) *Vault {
	v := &Vault{
		notes:   notes,
		export:  export,
		pattern: "**/*.md",
		theme:   richtext.DefaultTheme(),
		log:     slog.Default(),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}
