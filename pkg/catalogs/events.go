package catalogs

import (
	"fmt"
	"sync"
)

// Events is a concurrent safe, insertion-ordered collection of course
// events. Order of first appearance is significant: it is the order
// records are persisted in the event catalog file.
type Events struct {
	mu     sync.RWMutex
	order  []string
	events map[string]*Event
}

// NewEvents creates a new Events collection.
func NewEvents() *Events {
	return &Events{
		events: make(map[string]*Event),
	}
}

// Get returns an event by id and whether it exists.
func (e *Events) Get(id string) (*Event, bool) {
	e.mu.RLock()
	event, ok := e.events[id]
	e.mu.RUnlock()
	return event, ok
}

// Set sets an event by id (upsert semantics).
func (e *Events) Set(event *Event) error {
	if event == nil {
		return fmt.Errorf("event cannot be nil")
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if _, exists := e.events[event.ID]; !exists {
		e.order = append(e.order, event.ID)
	}
	e.events[event.ID] = event
	return nil
}

// Add adds an event, returning an error if the id already exists.
func (e *Events) Add(event *Event) error {
	if event == nil {
		return fmt.Errorf("event cannot be nil")
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if _, exists := e.events[event.ID]; exists {
		return fmt.Errorf("event with ID %s already exists", event.ID)
	}

	e.order = append(e.order, event.ID)
	e.events[event.ID] = event
	return nil
}

// Exists checks if an event exists without returning it.
func (e *Events) Exists(id string) bool {
	e.mu.RLock()
	_, ok := e.events[id]
	e.mu.RUnlock()
	return ok
}

// List returns all events in insertion order.
func (e *Events) List() []*Event {
	e.mu.RLock()
	defer e.mu.RUnlock()

	list := make([]*Event, 0, len(e.order))
	for _, id := range e.order {
		list = append(list, e.events[id])
	}
	return list
}

// Len returns the number of events.
func (e *Events) Len() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.events)
}
