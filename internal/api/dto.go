package api

import (
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/notebook/internal/notelist"
	"github.com/starford/notebook/internal/richtext"
)

// NoteRequest is the request body for creating or replacing a note. Exactly
// one of Text and Document is set: Text is converted with title styling,
// Document is stored as given after title styling is reapplied.
type NoteRequest struct {
	Text     string             `json:"text,omitempty" example:"Groceries\nMilk, eggs"`
	Document *richtext.Document `json:"document,omitempty"`
}

// Validate checks that exactly one body form is present.
func (r NoteRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Text,
			validation.Required.When(r.Document == nil).Error("text or document is required"),
			validation.Empty.When(r.Document != nil).Error("text and document are mutually exclusive"),
			validation.By(notBlank),
		),
		validation.Field(&r.Document),
	)
}

func notBlank(v any) error {
	if s, _ := v.(string); s != "" && strings.TrimSpace(s) == "" {
		return validation.NewError("validation_blank", "text must not be blank")
	}
	return nil
}

// Build returns the document described by r.
func (r NoteRequest) Build(th richtext.Theme) *richtext.Document {
	if r.Document != nil {
		return richtext.ApplyTitleStyle(r.Document, th)
	}
	return richtext.FromText(r.Text, th)
}

// Edit kinds accepted by POST /notes/{id}/edits.
var editKinds = []any{"insert", "delete_backward", "toggle_checkbox", "add_checkbox", "style"}

// EditRequest applies one editor action at a selection.
type EditRequest struct {
	Kind      string             `json:"kind" example:"toggle_checkbox"`
	Text      string             `json:"text,omitempty"`
	Trait     string             `json:"trait,omitempty" example:"bold"`
	Selection richtext.Selection `json:"selection"`
}

// Validate validates the edit request.
func (r EditRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Kind, validation.Required, validation.In(editKinds...)),
		validation.Field(&r.Trait, validation.When(r.Kind == "style",
			validation.Required, validation.In("bold", "italic", "underline"))),
		validation.Field(&r.Text, validation.When(r.Kind == "insert", validation.Required)),
		validation.Field(&r.Selection, validation.By(func(any) error {
			if r.Selection.Start < 0 || r.Selection.End < 0 {
				return validation.NewError("validation_selection", "must not be negative")
			}
			return nil
		})),
	)
}

// LineDTO is one line of a note body.
type LineDTO struct {
	Start     int    `json:"start"`
	End       int    `json:"end"`
	Text      string `json:"text"`
	Checklist bool   `json:"checklist"`
	Checked   bool   `json:"checked"`
}

// NoteDetail is the full note response type.
type NoteDetail struct {
	ID          string             `json:"id"`
	Title       string             `json:"title"`
	Description string             `json:"description"`
	Text        string             `json:"text"`
	Markdown    string             `json:"markdown"`
	Lines       []LineDTO          `json:"lines"`
	Document    *richtext.Document `json:"document"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
}

func newNoteDetail(m notelist.NoteModel) NoteDetail {
	lines := m.Document.Lines()
	out := make([]LineDTO, len(lines))
	for i, l := range lines {
		out[i] = LineDTO{Start: l.Start, End: l.End, Text: l.Text, Checklist: l.Checklist, Checked: l.Checked}
	}
	return NoteDetail{
		ID:          m.ID,
		Title:       m.Title,
		Description: m.Description,
		Text:        m.Document.PlainText(),
		Markdown:    string(richtext.ToMarkdown(m.Document)),
		Lines:       out,
		Document:    m.Document,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

// NoteListResponse wraps the day-grouped note list.
type NoteListResponse struct {
	Groups []notelist.DayGroup `json:"groups"`
	Total  int                 `json:"total" example:"42"`
}

// SearchResponse wraps search results.
type SearchResponse struct {
	Results []notelist.NoteModel `json:"results"`
}

// EditResponse is returned after an edit is applied and saved.
type EditResponse struct {
	Note      NoteDetail         `json:"note"`
	Selection richtext.Selection `json:"selection"`
}
