package notelist

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/starford/notebook/internal/models"
	"github.com/starford/notebook/internal/richtext"
)

// NoteModel is the read-only projection of a note shown in lists.
type NoteModel struct {
	ID          string             `json:"id"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
	Title       string             `json:"title"`
	Description string             `json:"description"`
	Document    *richtext.Document `json:"-"`
}

// Decode builds a NoteModel from a stored note.
func Decode(n models.Note) (NoteModel, error) {
	doc, err := richtext.Unmarshal(n.Content)
	if err != nil {
		return NoteModel{}, fmt.Errorf("notelist: decode %s: %w", n.ID, err)
	}
	title, desc := DeriveTitleAndDescription(doc.PlainText())
	return NoteModel{
		ID:          n.ID,
		CreatedAt:   n.CreatedAt,
		UpdatedAt:   n.UpdatedAt,
		Title:       title,
		Description: desc,
		Document:    doc,
	}, nil
}

// DecodeAll decodes notes in order. Notes whose content does not decode are
// logged and left out.
func DecodeAll(notes []models.Note, log *slog.Logger) []NoteModel {
	out := make([]NoteModel, 0, len(notes))
	for _, n := range notes {
		m, err := Decode(n)
		if err != nil {
			if log != nil {
				log.Warn("skip undecodable note", slog.String("id", n.ID), slog.String("error", err.Error()))
			}
			continue
		}
		out = append(out, m)
	}
	return out
}
