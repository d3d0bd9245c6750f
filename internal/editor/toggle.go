package editor

import (
	"context"
	"fmt"

	"github.com/starford/notebook/internal/apperr"
	"github.com/starford/notebook/internal/richtext"
)

// ToggleLine flips the checklist item on the given zero-based line of note
// id, saves the note and returns the updated line.
func ToggleLine(ctx context.Context, store Store, id string, line int, opts ...Option) (richtext.Line, error) {
	s, err := Open(ctx, store, id, opts...)
	if err != nil {
		return richtext.Line{}, err
	}
	lines := s.Document().Lines()
	if line < 0 || line >= len(lines) {
		return richtext.Line{}, fmt.Errorf("editor: line %d out of range (note has %d lines): %w", line, len(lines), apperr.ErrInvalidInput)
	}
	if !lines[line].Checklist {
		return richtext.Line{}, fmt.Errorf("editor: line %d is not a checklist item: %w", line, apperr.ErrInvalidInput)
	}

	s.Select(richtext.Caret(lines[line].Start))
	s.Apply(richtext.ToggleCheckbox{})
	if err := s.Save(ctx); err != nil {
		return richtext.Line{}, err
	}
	return s.Document().Lines()[line], nil
}
