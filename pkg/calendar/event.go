// Package calendar holds confirmed events for the lifetime of a session.
package calendar

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrDuplicateID is returned when an event with the same ID is already stored.
var ErrDuplicateID = errors.New("calendar: duplicate event id")

// Event is a scheduled block of time. Start is inclusive and End exclusive.
type Event struct {
	ID    string    `json:"id"`
	Title string    `json:"title"`
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Duration returns End - Start.
func (e Event) Duration() time.Duration {
	return e.End.Sub(e.Start)
}

// NewID returns a fresh random event identifier.
func NewID() string {
	return uuid.NewString()
}

// Store is an append-only, insertion-ordered list of confirmed events.
// The zero value is ready to use.
type Store struct {
	mu     sync.RWMutex
	events []Event
	ids    map[string]struct{}
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{}
}

// Add appends e to the store.
func (s *Store) Add(e Event) error {
	if e.ID == "" {
		return fmt.Errorf("calendar: event id is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ids == nil {
		s.ids = make(map[string]struct{})
	}
	if _, exists := s.ids[e.ID]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateID, e.ID)
	}
	s.ids[e.ID] = struct{}{}
	s.events = append(s.events, e)
	return nil
}

// List returns a snapshot of the stored events in insertion order.
func (s *Store) List() []Event {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Event, len(s.events))
	copy(out, s.events)
	return out
}

// Len returns the number of stored events.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.events)
}
