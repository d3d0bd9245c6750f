package tui

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/starford/notebook/internal/editor"
	"github.com/starford/notebook/internal/notelist"
	"github.com/starford/notebook/internal/notestore"
	"github.com/starford/notebook/internal/richtext"
)

type screen int

const (
	screenList screen = iota
	screenSearch
	screenConfirm
	screenEdit
)

// Model is the root bubbletea model: the note list and, when a note is
// open, its editor.
type Model struct {
	ctx   context.Context
	store notestore.NoteStore
	view  *notelist.ViewState
	theme richtext.Theme
	log   *slog.Logger
	copy  func(string) error

	screen  screen
	cursor  int
	search  textinput.Model
	session *editor.Session

	status    string
	statusErr bool
	width     int
	height    int
}

// NewModel builds the root model over an already loaded view.
func NewModel(ctx context.Context, store notestore.NoteStore, view *notelist.ViewState, opts ...Option) Model {
	cfg := newOptions(opts)

	si := textinput.New()
	si.Placeholder = "search notes..."
	si.CharLimit = 100
	si.Width = 40
	si.Prompt = "/ "

	return Model{
		ctx:    ctx,
		store:  store,
		view:   view,
		theme:  cfg.theme,
		log:    cfg.log,
		copy:   cfg.copy,
		search: si,
	}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil
	case refreshMsg:
		m.clampCursor()
		return m, nil
	case copiedMsg:
		return m.setStatus("copied to clipboard", false), cmdClearStatus()
	case errMsg:
		return m.setStatus(msg.err.Error(), true), nil
	case clearStatusMsg:
		m.status, m.statusErr = "", false
		return m, nil
	case tea.KeyMsg:
		switch m.screen {
		case screenSearch:
			return m.updateSearch(msg)
		case screenConfirm:
			return m.updateConfirm(msg)
		case screenEdit:
			return m.updateEdit(msg)
		default:
			return m.updateList(msg)
		}
	}
	return m, nil
}

func (m Model) View() string {
	switch m.screen {
	case screenEdit:
		return appStyle.Render(m.editView())
	default:
		return appStyle.Render(m.listView())
	}
}

func (m Model) setStatus(s string, isErr bool) Model {
	m.status, m.statusErr = s, isErr
	return m
}

func (m Model) statusLine() string {
	if m.status == "" {
		return ""
	}
	if m.statusErr {
		return "\n" + errorStyle.Render(m.status)
	}
	return "\n" + successStyle.Render(m.status)
}

func cmdCopyToClipboard(copyFn func(string) error, text string) tea.Cmd {
	return func() tea.Msg {
		if err := copyFn(text); err != nil {
			return errMsg{err: fmt.Errorf("copy to clipboard: %w", err)}
		}
		return copiedMsg{}
	}
}

func cmdClearStatus() tea.Cmd {
	return tea.Tick(2*time.Second, func(time.Time) tea.Msg {
		return clearStatusMsg{}
	})
}

type options struct {
	theme richtext.Theme
	log   *slog.Logger
	copy  func(string) error
	list  []notelist.ViewOption
}

// Option configures the terminal UI.
type Option func(*options)

// WithTheme sets the base and title sizes.
func WithTheme(th richtext.Theme) Option {
	return func(o *options) { o.theme = th }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.log = l }
}

// WithClipboard replaces the system clipboard writer.
func WithClipboard(fn func(string) error) Option {
	return func(o *options) { o.copy = fn }
}

// WithListOptions configures grouping and search of the note list.
func WithListOptions(opts ...notelist.ViewOption) Option {
	return func(o *options) { o.list = append(o.list, opts...) }
}

func newOptions(opts []Option) options {
	o := options{
		theme: richtext.DefaultTheme(),
		log:   slog.Default(),
		copy:  clipboard.WriteAll,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func plural(n int, word string) string {
	if n == 1 {
		return "1 " + word
	}
	return fmt.Sprintf("%d %ss", n, word)
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
