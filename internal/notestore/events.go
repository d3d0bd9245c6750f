package notestore

import (
	"sync"

	"github.com/starford/notebook/internal/models"
)

type subscribers struct {
	mu   sync.Mutex
	next int
	fns  map[int]func(models.Event)
}

// Subscribe registers fn to be called after every committed create, update
// or delete. Calls happen synchronously on the mutating goroutine.
func (s *Store) Subscribe(fn func(models.Event)) (unsubscribe func()) {
	s.subs.mu.Lock()
	defer s.subs.mu.Unlock()
	if s.subs.fns == nil {
		s.subs.fns = make(map[int]func(models.Event))
	}
	id := s.subs.next
	s.subs.next++
	s.subs.fns[id] = fn
	return func() {
		s.subs.mu.Lock()
		delete(s.subs.fns, id)
		s.subs.mu.Unlock()
	}
}

func (s *Store) emit(kind models.EventKind, id string) {
	s.subs.mu.Lock()
	fns := make([]func(models.Event), 0, len(s.subs.fns))
	for _, fn := range s.subs.fns {
		fns = append(fns, fn)
	}
	s.subs.mu.Unlock()

	ev := models.Event{Kind: kind, ID: id}
	for _, fn := range fns {
		fn(ev)
	}
}
