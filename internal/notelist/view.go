package notelist

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/starford/notebook/internal/models"
)

// Source is the part of the note store the list view reads from.
type Source interface {
	FetchAll(ctx context.Context) ([]models.Note, error)
	DeleteByID(ctx context.Context, id string) error
	Subscribe(fn func(models.Event)) (unsubscribe func())
}

// ViewState holds the list screen: every decoded note, the applied search
// query and the observers to notify when either changes.
type ViewState struct {
	src      Source
	log      *slog.Logger
	loc      *time.Location
	layout   string
	debounce *Debouncer

	mu      sync.Mutex
	notes   []NoteModel
	query   string
	pending string
	next    int
	subs    map[int]func()
}

// ViewOption configures a ViewState.
type ViewOption func(*ViewState)

// WithLocation sets the time zone used for day grouping.
func WithLocation(loc *time.Location) ViewOption {
	return func(v *ViewState) { v.loc = loc }
}

// WithDayLayout sets the time layout of group labels.
func WithDayLayout(layout string) ViewOption {
	return func(v *ViewState) { v.layout = layout }
}

// WithSearchDebounce sets the quiet period applied to Search.
func WithSearchDebounce(d time.Duration) ViewOption {
	return func(v *ViewState) { v.debounce = NewDebouncer(d) }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) ViewOption {
	return func(v *ViewState) { v.log = l }
}

// NewViewState returns an empty view over src. Call Reload to populate it.
func NewViewState(src Source, opts ...ViewOption) *ViewState {
	v := &ViewState{
		src:      src,
		log:      slog.Default(),
		loc:      time.Local,
		layout:   DefaultDayLayout,
		debounce: NewDebouncer(DefaultSearchDebounce),
		subs:     make(map[int]func()),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Reload refetches every note. A failed fetch leaves the list empty.
func (v *ViewState) Reload(ctx context.Context) {
	notes, err := v.src.FetchAll(ctx)
	if err != nil {
		v.log.Error("fetch notes", slog.String("error", err.Error()))
		notes = nil
	}
	decoded := DecodeAll(notes, v.log)

	v.mu.Lock()
	v.notes = decoded
	v.mu.Unlock()
	v.notify()
}

// Follow reloads the view whenever the source reports a change, until the
// returned function is called.
func (v *ViewState) Follow(ctx context.Context) (stop func()) {
	return v.src.Subscribe(func(models.Event) {
		v.Reload(ctx)
	})
}

// Search records query and applies it after the debounce period. A new call
// before then replaces the pending query.
func (v *ViewState) Search(query string) {
	v.mu.Lock()
	v.pending = query
	v.mu.Unlock()

	v.debounce.Trigger(func() {
		v.mu.Lock()
		changed := v.query != v.pending
		v.query = v.pending
		v.mu.Unlock()
		if changed {
			v.notify()
		}
	})
}

// Query returns the query currently applied to the list.
func (v *ViewState) Query() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.query
}

// Delete removes a note from the store and reloads the list. On failure the
// list is left as it was.
func (v *ViewState) Delete(ctx context.Context, id string) error {
	if err := v.src.DeleteByID(ctx, id); err != nil {
		v.log.Error("delete note", slog.String("id", id), slog.String("error", err.Error()))
		return err
	}
	v.Reload(ctx)
	return nil
}

// Notes returns the filtered notes, newest first.
func (v *ViewState) Notes() []NoteModel {
	v.mu.Lock()
	notes, q := v.notes, v.query
	v.mu.Unlock()
	return Filter(notes, q)
}

// Groups returns the filtered notes grouped by day.
func (v *ViewState) Groups() []DayGroup {
	return GroupByDay(v.Notes(), v.loc, v.layout)
}

// Subscribe registers fn to run after the notes or the applied query change.
func (v *ViewState) Subscribe(fn func()) (unsubscribe func()) {
	v.mu.Lock()
	id := v.next
	v.next++
	v.subs[id] = fn
	v.mu.Unlock()
	return func() {
		v.mu.Lock()
		delete(v.subs, id)
		v.mu.Unlock()
	}
}

// Close stops any pending search.
func (v *ViewState) Close() {
	v.debounce.Stop()
}

func (v *ViewState) notify() {
	v.mu.Lock()
	fns := make([]func(), 0, len(v.subs))
	for _, fn := range v.subs {
		fns = append(fns, fn)
	}
	v.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
}
