// Package tui is the terminal front end: a day-grouped note list with
// search and a rich-text editor for one note.
package tui

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/starford/notebook/internal/notelist"
	"github.com/starford/notebook/internal/notestore"
)

// TUI runs the terminal UI over a note store.
type TUI struct {
	store notestore.NoteStore
	opts  []Option
}

// New creates a TUI over store.
func New(store notestore.NoteStore, opts ...Option) *TUI {
	return &TUI{store: store, opts: opts}
}

// Run blocks until the user quits or ctx is cancelled.
func (t *TUI) Run(ctx context.Context) error {
	cfg := newOptions(t.opts)
	view := notelist.NewViewState(t.store, append([]notelist.ViewOption{notelist.WithLogger(cfg.log)}, cfg.list...)...)
	defer view.Close()

	view.Reload(ctx)
	stop := view.Follow(ctx)
	defer stop()

	p := tea.NewProgram(NewModel(ctx, t.store, view, t.opts...), tea.WithAltScreen(), tea.WithContext(ctx))
	// Notifications arrive from Update itself (saves) and from timers
	// (debounced search); Send must not block the event loop.
	unsub := view.Subscribe(func() { go p.Send(refreshMsg{}) })
	defer unsub()

	if _, err := p.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return err
	}
	return nil
}
