// Package sse streams note changes to list and editor clients as
// Server-Sent Events.
package sse

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/starford/notebook/internal/models"
)

// Event names on the wire.
const (
	TypeNoteCreated = "note.created"
	TypeNoteUpdated = "note.updated"
	TypeNoteDeleted = "note.deleted"
	TypeListUpdated = "list.updated"
)

const (
	clientBuffer     = 64
	defaultKeepAlive = 30 * time.Second
)

var noteEventTypes = map[models.EventKind]string{
	models.EventCreated: TypeNoteCreated,
	models.EventUpdated: TypeNoteUpdated,
	models.EventDeleted: TypeNoteDeleted,
}

// Event is one message fanned out to every client. Data is sent as JSON.
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// frame renders e in text/event-stream form.
func (e Event) frame() ([]byte, error) {
	payload, err := json.Marshal(e.Data)
	if err != nil {
		return nil, err
	}
	return fmt.Appendf(nil, "event: %s\ndata: %s\n\n", e.Type, payload), nil
}

// Broker fans events out to subscribed clients.
//
// All client bookkeeping lives in a hub owned by one goroutine. The exported
// methods only talk to that goroutine over channels.
type Broker struct {
	listEvery time.Duration
	keepAlive time.Duration

	join    chan chan []byte
	leave   chan chan []byte
	events  chan Event
	changes chan models.Event
	count   chan chan int

	quit   chan struct{}
	done   chan struct{}
	closed atomic.Bool
}

// NewBroker starts a broker. After a note change it emits list.updated at
// most once per listThrottle; a non-positive value means two seconds.
func NewBroker(listThrottle time.Duration) *Broker {
	if listThrottle <= 0 {
		listThrottle = 2 * time.Second
	}
	b := &Broker{
		listEvery: listThrottle,
		keepAlive: defaultKeepAlive,
		join:      make(chan chan []byte),
		leave:     make(chan chan []byte),
		events:    make(chan Event, 256),
		changes:   make(chan models.Event, 256),
		count:     make(chan chan int),
		quit:      make(chan struct{}),
		done:      make(chan struct{}),
	}
	go b.loop()
	return b
}

// hub is the state owned by the broker goroutine.
type hub struct {
	clients  map[chan []byte]struct{}
	lastList time.Time
}

// send delivers e to every client that has room. Slow clients miss events
// rather than stall the loop.
func (h *hub) send(e Event) {
	msg, err := e.frame()
	if err != nil {
		return
	}
	for ch := range h.clients {
		select {
		case ch <- msg:
		default:
		}
	}
}

func (h *hub) drop(ch chan []byte) {
	if _, ok := h.clients[ch]; ok {
		delete(h.clients, ch)
		close(ch)
	}
}

func (h *hub) noteChanged(ev models.Event, listEvery time.Duration) {
	typ, ok := noteEventTypes[ev.Kind]
	if !ok {
		return
	}
	h.send(Event{Type: typ, Data: map[string]string{"id": ev.ID}})

	if now := time.Now(); now.Sub(h.lastList) >= listEvery {
		h.lastList = now
		h.send(Event{Type: TypeListUpdated, Data: map[string]string{}})
	}
}

func (b *Broker) loop() {
	defer close(b.done)

	h := &hub{clients: make(map[chan []byte]struct{})}
	for {
		select {
		case <-b.quit:
			for ch := range h.clients {
				h.drop(ch)
			}
			return
		case ch := <-b.join:
			h.clients[ch] = struct{}{}
		case ch := <-b.leave:
			h.drop(ch)
		case e := <-b.events:
			h.send(e)
		case ev := <-b.changes:
			h.noteChanged(ev, b.listEvery)
		case reply := <-b.count:
			reply <- len(h.clients)
		}
	}
}

// Close stops the broker and closes every client channel. It is safe to
// call more than once.
func (b *Broker) Close() {
	if b.closed.CompareAndSwap(false, true) {
		close(b.quit)
	}
	<-b.done
}

// Subscribe registers a client. The returned channel is closed when the
// client unsubscribes or the broker shuts down.
func (b *Broker) Subscribe() chan []byte {
	ch := make(chan []byte, clientBuffer)
	if b.closed.Load() {
		close(ch)
		return ch
	}
	select {
	case b.join <- ch:
	case <-b.done:
		close(ch)
	}
	return ch
}

func (b *Broker) Unsubscribe(ch chan []byte) {
	if !b.closed.Load() {
		submit(b, b.leave, ch)
	}
}

func (b *Broker) ClientCount() int {
	if b.closed.Load() {
		return 0
	}
	reply := make(chan int, 1)
	if !submit(b, b.count, reply) {
		return 0
	}
	select {
	case n := <-reply:
		return n
	case <-b.done:
		return 0
	}
}

// Publish sends e to all connected clients. It is a no-op after Close.
func (b *Broker) Publish(e Event) {
	if !b.closed.Load() {
		submit(b, b.events, e)
	}
}

// PublishNoteEvent forwards a store change, followed by a throttled
// list.updated. Its signature matches notestore.Store.Subscribe.
func (b *Broker) PublishNoteEvent(ev models.Event) {
	if !b.closed.Load() {
		submit(b, b.changes, ev)
	}
}

// submit hands v to the loop, giving up once the loop has exited.
func submit[T any](b *Broker, ch chan<- T, v T) bool {
	select {
	case ch <- v:
		return true
	case <-b.done:
		return false
	}
}

var streamHeaders = map[string]string{
	"Content-Type":                "text/event-stream",
	"Cache-Control":               "no-cache",
	"Connection":                  "keep-alive",
	"Access-Control-Allow-Origin": "*",
}

// ServeHTTP streams events to one client until it disconnects or the
// broker closes. Idle streams get a comment line every keep-alive period.
func (b *Broker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}
	for k, v := range streamHeaders {
		w.Header().Set(k, v)
	}
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	ping := time.NewTicker(b.keepAlive)
	defer ping.Stop()

	write := func(p []byte) {
		_, _ = w.Write(p)
		flusher.Flush()
	}
	for {
		select {
		case <-r.Context().Done():
			return
		case <-ping.C:
			write([]byte(": ping\n\n"))
		case msg, ok := <-ch:
			if !ok {
				return
			}
			write(msg)
		}
	}
}
