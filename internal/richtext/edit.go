package richtext

import (
	"fmt"
	"strings"

	"github.com/starford/notebook/internal/apperr"
)

// Selection is a half-open position range. Start == End is a caret.
type Selection struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Caret returns an empty selection at pos.
func Caret(pos int) Selection {
	return Selection{Start: pos, End: pos}
}

// Empty reports whether s is a caret.
func (s Selection) Empty() bool { return s.Start == s.End }

func (s Selection) clamp(n int) Selection {
	if s.Start > s.End {
		s.Start, s.End = s.End, s.Start
	}
	return Selection{Start: clamp(s.Start, 0, n), End: clamp(s.End, 0, n)}
}

// Theme holds the font sizes used for title styling.
type Theme struct {
	BaseSize  float64
	TitleSize float64
}

// DefaultTheme matches a 16pt body with a 24pt bold title.
func DefaultTheme() Theme {
	return Theme{BaseSize: 16, TitleSize: 24}
}

// Edit is a single user action against a document.
type Edit interface {
	apply(cs []cell, sel Selection, th Theme) ([]cell, Selection)
}

// Apply runs e against doc with the given selection and returns the new
// document and selection. doc is not modified. Title styling is recomputed
// on the result.
func Apply(doc *Document, sel Selection, e Edit, th Theme) (*Document, Selection) {
	cs := doc.cells()
	sel = sel.clamp(len(cs))
	cs, sel = e.apply(cs, sel, th)
	out := ApplyTitleStyle(fromCells(cs), th)
	return out, sel.clamp(len(cs))
}

// InsertText replaces the selection with Text. A lone "\n" typed on a
// checklist line continues the checklist on the new line.
type InsertText struct {
	Text string `json:"text"`
}

func (e InsertText) apply(cs []cell, sel Selection, th Theme) ([]cell, Selection) {
	cs = splice(cs, sel.Start, sel.End, nil)
	pos := sel.Start
	base := Style{Size: th.BaseSize}

	var ins []cell
	if newlines.Replace(e.Text) == "\n" && isChecklistLine(cs, pos) {
		ins = []cell{{r: '\n', style: base}, markerCell(false, base), {r: ' ', style: base}}
	} else {
		text := newlines.Replace(e.Text)
		text = strings.ReplaceAll(text, string(Marker), "")
		ins = textCells(text, typingStyle(cs, pos, th))
	}
	cs = splice(cs, pos, pos, ins)
	return cs, Caret(pos + len(ins))
}

// typingStyle returns the style new text inherits at pos: the traits of the
// preceding character on the same body line, else the base style.
func typingStyle(cs []cell, pos int, th Theme) Style {
	base := Style{Size: th.BaseSize}
	if pos == 0 || lineStart(cs, pos) == 0 {
		return base
	}
	prev := cs[pos-1]
	if prev.box != nil || prev.r == '\n' {
		return base
	}
	s := prev.style
	s.Size = th.BaseSize
	return s
}

// DeleteBackward removes the selection, or the position before the caret.
type DeleteBackward struct{}

func (DeleteBackward) apply(cs []cell, sel Selection, _ Theme) ([]cell, Selection) {
	if !sel.Empty() {
		return splice(cs, sel.Start, sel.End, nil), Caret(sel.Start)
	}
	if sel.Start == 0 {
		return cs, sel
	}
	return splice(cs, sel.Start-1, sel.Start, nil), Caret(sel.Start - 1)
}

// ToggleCheckbox flips the first marker on the caret's line.
type ToggleCheckbox struct{}

func (ToggleCheckbox) apply(cs []cell, sel Selection, _ Theme) ([]cell, Selection) {
	start := lineStart(cs, sel.Start)
	end := lineEnd(cs, start)
	for i := start; i < end; i++ {
		if cs[i].box != nil {
			cs[i].box = &Checkbox{Checked: !cs[i].box.Checked}
			break
		}
	}
	return cs, sel
}

// AddCheckbox turns the caret's line into an unchecked checklist item.
// Lines that already are checklist items are left alone.
type AddCheckbox struct{}

func (AddCheckbox) apply(cs []cell, sel Selection, th Theme) ([]cell, Selection) {
	start := lineStart(cs, sel.Start)
	if start < len(cs) && cs[start].box != nil {
		return cs, sel
	}
	base := Style{Size: th.BaseSize}
	cs = splice(cs, start, start, []cell{markerCell(false, base), {r: ' ', style: base}})
	shift := func(p int) int {
		if p >= start {
			return p + 2
		}
		return p
	}
	return cs, Selection{Start: shift(sel.Start), End: shift(sel.End)}
}

// Trait is a font trait that can be applied to a selection.
type Trait int

const (
	Bold Trait = iota + 1
	Italic
	Underline
)

// ParseTrait maps "bold", "italic" and "underline" to a Trait.
func ParseTrait(s string) (Trait, bool) {
	switch strings.ToLower(s) {
	case "bold":
		return Bold, true
	case "italic":
		return Italic, true
	case "underline":
		return Underline, true
	}
	return 0, false
}

func (t Trait) String() string {
	switch t {
	case Bold:
		return "bold"
	case Italic:
		return "italic"
	case Underline:
		return "underline"
	}
	return "unknown"
}

// ApplyStyle adds Trait to every character in the selection and collapses
// the selection to its end.
type ApplyStyle struct {
	Trait Trait `json:"trait"`
}

func (e ApplyStyle) apply(cs []cell, sel Selection, _ Theme) ([]cell, Selection) {
	for i := sel.Start; i < sel.End; i++ {
		if cs[i].box != nil || cs[i].r == '\n' {
			continue
		}
		switch e.Trait {
		case Bold:
			cs[i].style.Bold = true
		case Italic:
			cs[i].style.Italic = true
		case Underline:
			cs[i].style.Underline = true
		}
	}
	return cs, Caret(sel.End)
}

// ParseEdit builds an Edit from its wire name: "insert", "delete_backward",
// "toggle_checkbox", "add_checkbox" or "style".
func ParseEdit(kind, text, trait string) (Edit, error) {
	switch kind {
	case "insert":
		return InsertText{Text: text}, nil
	case "delete_backward":
		return DeleteBackward{}, nil
	case "toggle_checkbox":
		return ToggleCheckbox{}, nil
	case "add_checkbox":
		return AddCheckbox{}, nil
	case "style":
		t, ok := ParseTrait(trait)
		if !ok {
			return nil, fmt.Errorf("richtext: unknown trait %q: %w", trait, apperr.ErrInvalidInput)
		}
		return ApplyStyle{Trait: t}, nil
	}
	return nil, fmt.Errorf("richtext: unknown edit %q: %w", kind, apperr.ErrInvalidInput)
}
