// Package models defines the domain types for the notebook.
package models

import "time"

// Note is a persisted note record. Content is the serialized rich-text body.
type Note struct {
	ID        string    `json:"id"`
	Content   []byte    `json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// EventKind names a store mutation.
type EventKind string

const (
	EventCreated EventKind = "created"
	EventUpdated EventKind = "updated"
	EventDeleted EventKind = "deleted"
)

// Event is emitted after a mutation has been committed.
type Event struct {
	Kind EventKind `json:"kind"`
	ID   string    `json:"id"`
}
