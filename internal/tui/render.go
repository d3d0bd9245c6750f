package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/starford/notebook/internal/richtext"
)

const (
	uncheckedGlyph = "☐"
	checkedGlyph   = "☑"
)

// renderDocument draws doc with its text traits, checklist glyphs, the
// selection and the caret. Title-sized text uses the title style.
func renderDocument(doc *richtext.Document, sel richtext.Selection, th richtext.Theme) string {
	var b strings.Builder
	pos := 0
	caret := func() bool { return sel.Empty() && pos == sel.Start }

	cell := func(text string, st lipgloss.Style) {
		switch {
		case caret():
			st = caretStyle
		case pos >= sel.Start && pos < sel.End:
			st = st.Inherit(selectionStyle)
		}
		b.WriteString(st.Render(text))
		pos++
	}

	for _, run := range doc.Runs {
		if run.IsMarker() {
			if run.Checkbox.Checked {
				cell(checkedGlyph, checkedStyle)
			} else {
				cell(uncheckedGlyph, lipgloss.NewStyle())
			}
			continue
		}
		st := textStyle(run.Style, th)
		for _, r := range run.Text {
			if r == '\n' {
				if caret() {
					b.WriteString(caretStyle.Render(" "))
				}
				b.WriteByte('\n')
				pos++
				continue
			}
			cell(string(r), st)
		}
	}
	if caret() {
		b.WriteString(caretStyle.Render(" "))
	}
	return b.String()
}

func textStyle(s richtext.Style, th richtext.Theme) lipgloss.Style {
	st := lipgloss.NewStyle()
	if s.Size > th.BaseSize {
		st = titleTextStyle
	}
	return st.Bold(s.Bold).Italic(s.Italic).Underline(s.Underline)
}
