package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/starford/notebook/internal/richtext"
)

func (m Model) updateEdit(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	s := m.session
	doc, sel := s.Document(), s.Selection()

	switch {
	case key.Matches(msg, keys.forceQuit):
		if err := s.Save(m.ctx); err != nil {
			return m.setStatus("save failed: "+err.Error(), true), nil
		}
		return m, tea.Quit
	case key.Matches(msg, keys.esc):
		if err := s.Save(m.ctx); err != nil {
			return m.setStatus("save failed: "+err.Error(), true), nil
		}
		m.session = nil
		m.screen = screenList
		m.clampCursor()
		return m, nil
	case key.Matches(msg, keys.save):
		if err := s.Save(m.ctx); err != nil {
			return m.setStatus("save failed: "+err.Error(), true), nil
		}
		return m.setStatus("saved", false), cmdClearStatus()
	case key.Matches(msg, keys.copyInEdit):
		return m, cmdCopyToClipboard(m.copy, string(richtext.ToMarkdown(doc)))

	case key.Matches(msg, keys.left):
		if sel.Empty() {
			s.Select(richtext.Caret(sel.Start - 1))
		} else {
			s.Select(richtext.Caret(sel.Start))
		}
	case key.Matches(msg, keys.right):
		if sel.Empty() {
			s.Select(richtext.Caret(sel.End + 1))
		} else {
			s.Select(richtext.Caret(sel.End))
		}
	case key.Matches(msg, keys.selLeft):
		s.Select(richtext.Selection{Start: sel.Start - 1, End: sel.End})
	case key.Matches(msg, keys.selRight):
		s.Select(richtext.Selection{Start: sel.Start, End: sel.End + 1})
	case key.Matches(msg, keys.home):
		s.Select(richtext.Caret(doc.LineAt(sel.Start).Start))
	case key.Matches(msg, keys.end):
		s.Select(richtext.Caret(doc.LineAt(sel.End).End))
	case msg.Type == tea.KeyUp:
		s.Select(richtext.Caret(verticalMove(doc, sel.Start, -1)))
	case msg.Type == tea.KeyDown:
		s.Select(richtext.Caret(verticalMove(doc, sel.End, 1)))

	case key.Matches(msg, keys.enter):
		s.Apply(richtext.InsertText{Text: "\n"})
	case key.Matches(msg, keys.backspace):
		s.Apply(richtext.DeleteBackward{})
	case key.Matches(msg, keys.toggleBox):
		s.Apply(richtext.ToggleCheckbox{})
	case key.Matches(msg, keys.addBox):
		s.Apply(richtext.AddCheckbox{})
	case key.Matches(msg, keys.bold):
		m.styleSelection(richtext.Bold)
	case key.Matches(msg, keys.italic):
		m.styleSelection(richtext.Italic)
	case key.Matches(msg, keys.underline):
		m.styleSelection(richtext.Underline)

	case msg.Type == tea.KeySpace:
		s.Apply(richtext.InsertText{Text: " "})
	case msg.Type == tea.KeyRunes && !msg.Alt:
		s.Apply(richtext.InsertText{Text: string(msg.Runes)})
	}
	return m, nil
}

// styleSelection applies t to the selection, or to the caret's whole line
// when nothing is selected.
func (m Model) styleSelection(t richtext.Trait) {
	s := m.session
	if sel := s.Selection(); sel.Empty() {
		line := s.Document().LineAt(sel.Start)
		s.Select(richtext.Selection{Start: line.Start, End: line.End})
	}
	s.Apply(richtext.ApplyStyle{Trait: t})
}

// verticalMove returns the position dir lines away from pos, keeping the
// column where the target line is long enough.
func verticalMove(doc *richtext.Document, pos, dir int) int {
	lines := doc.Lines()
	cur := 0
	for i, l := range lines {
		if pos >= l.Start && pos <= l.End {
			cur = i
			break
		}
	}
	target := cur + dir
	if target < 0 || target >= len(lines) {
		return pos
	}
	col := pos - lines[cur].Start
	return min(lines[target].Start+col, lines[target].End)
}

func (m Model) editView() string {
	var b strings.Builder
	s := m.session
	doc := s.Document()

	header := "New note"
	if title := doc.Title(); title != "" {
		header = oneLine(title)
	}
	if s.Dirty() {
		header += " *"
	}
	b.WriteString(headerStyle.Render(header))
	b.WriteString("\n\n")
	b.WriteString(renderDocument(doc, s.Selection(), m.theme))
	b.WriteString("\n\n")
	b.WriteString(helpStyle.Render("esc:save & back  ctrl+s:save  ctrl+n:add checkbox  ctrl+t:toggle checkbox"))
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("alt+b/alt+i/alt+u:bold/italic/underline  shift+arrows:select  ctrl+y:copy"))
	b.WriteString(m.statusLine())
	return b.String()
}
