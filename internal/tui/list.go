package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/starford/notebook/internal/editor"
	"github.com/starford/notebook/internal/notelist"
	"github.com/starford/notebook/internal/richtext"
)

func (m *Model) clampCursor() {
	n := len(m.view.Notes())
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

// selected returns the note under the cursor in list order, which is the
// flattened order of the day groups.
func (m Model) selected() (notelist.NoteModel, bool) {
	var flat []notelist.NoteModel
	for _, g := range m.view.Groups() {
		flat = append(flat, g.Notes...)
	}
	if m.cursor < 0 || m.cursor >= len(flat) {
		return notelist.NoteModel{}, false
	}
	return flat[m.cursor], true
}

func (m Model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.quit):
		return m, tea.Quit
	case key.Matches(msg, keys.up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, keys.down):
		m.cursor++
		m.clampCursor()
	case key.Matches(msg, keys.search):
		m.screen = screenSearch
		return m, m.search.Focus()
	case key.Matches(msg, keys.esc):
		m.search.SetValue("")
		m.view.Search("")
		m.cursor = 0
	case key.Matches(msg, keys.newNote):
		m.session = editor.New(m.store, editor.WithTheme(m.theme), editor.WithLogger(m.log))
		m.screen = screenEdit
		m.status = ""
	case key.Matches(msg, keys.enter):
		n, ok := m.selected()
		if !ok {
			return m, nil
		}
		s, err := editor.Open(m.ctx, m.store, n.ID, editor.WithTheme(m.theme), editor.WithLogger(m.log))
		if err != nil {
			return m.setStatus("open failed: "+err.Error(), true), nil
		}
		m.session = s
		m.screen = screenEdit
		m.status = ""
	case key.Matches(msg, keys.delete):
		if _, ok := m.selected(); ok {
			m.screen = screenConfirm
		}
	case key.Matches(msg, keys.copy):
		if n, ok := m.selected(); ok {
			return m, cmdCopyToClipboard(m.copy, string(richtext.ToMarkdown(n.Document)))
		}
	}
	return m, nil
}

func (m Model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.enter), key.Matches(msg, keys.esc):
		m.search.Blur()
		m.screen = screenList
		m.cursor = 0
		return m, nil
	}
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	m.view.Search(m.search.Value())
	m.cursor = 0
	return m, cmd
}

func (m Model) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.yes):
		m.screen = screenList
		n, ok := m.selected()
		if !ok {
			return m, nil
		}
		if err := m.view.Delete(m.ctx, n.ID); err != nil {
			return m.setStatus("delete failed: "+err.Error(), true), nil
		}
		m.clampCursor()
		return m.setStatus("deleted "+oneLine(n.Title), false), cmdClearStatus()
	case key.Matches(msg, keys.no):
		m.screen = screenList
	}
	return m, nil
}

func (m Model) listView() string {
	var s strings.Builder
	s.WriteString(headerStyle.Render("Notes"))
	s.WriteString("\n")
	if m.screen == screenSearch || m.search.Value() != "" {
		s.WriteString(m.search.View())
		s.WriteString("\n")
	}
	s.WriteString("\n")

	groups := m.view.Groups()
	if len(groups) == 0 {
		if m.view.Query() != "" {
			s.WriteString(descStyle.Render("No matching notes."))
		} else {
			s.WriteString(descStyle.Render("No notes yet. Press n to write one."))
		}
		s.WriteString("\n")
	}

	i := 0
	total := 0
	for _, g := range groups {
		s.WriteString(groupStyle.Render(g.Label))
		s.WriteString("\n")
		for _, n := range g.Notes {
			title := oneLine(n.Title)
			if title == "" {
				title = "New Note"
			}
			line := "  " + title
			if i == m.cursor {
				line = selectedStyle.Render("> " + title)
			}
			s.WriteString(line)
			if n.Description != "" {
				s.WriteString("  ")
				s.WriteString(descStyle.Render(oneLine(n.Description)))
			}
			s.WriteString("\n")
			i++
		}
		total += len(g.Notes)
	}

	s.WriteString("\n")
	s.WriteString(helpStyle.Render(plural(total, "note")))

	switch m.screen {
	case screenConfirm:
		if n, ok := m.selected(); ok {
			s.WriteString("\n")
			s.WriteString(warningStyle.Render("Delete " + oneLine(n.Title) + "? (y/n)"))
		}
	case screenSearch:
		s.WriteString("\n")
		s.WriteString(helpStyle.Render("enter/esc: done"))
	default:
		s.WriteString("\n")
		s.WriteString(helpStyle.Render("enter:open  n:new  d:delete  c:copy  /:search  esc:clear search  q:quit"))
	}
	s.WriteString(m.statusLine())
	return s.String()
}
