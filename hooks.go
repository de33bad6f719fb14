package teloquent

import (
	"context"
	"sync"
)

// Event lifecycle event name
type Event string

const (
	Creating Event = "creating"
	Created  Event = "created"
	Updating Event = "updating"
	Updated  Event = "updated"
	Saving   Event = "saving"
	Saved    Event = "saved"
	Deleting Event = "deleting"
	Deleted  Event = "deleted"
)

// Handler lifecycle handler. A non-nil error aborts the operation and is returned to the caller.
type Handler func(ctx context.Context, m *Model) error

// registry append-only handler lists per event
type registry struct {
	mu       sync.RWMutex
	handlers map[Event][]Handler
}

func (r *registry) on(event Event, handler Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.handlers == nil {
		r.handlers = map[Event][]Handler{}
	}
	r.handlers[event] = append(r.handlers[event], handler)
}

func (r *registry) list(event Event) []Handler {
	r.mu.RLock()
	defer r.mu.RUnlock()

	handlers := make([]Handler, len(r.handlers[event]))
	copy(handlers, r.handlers[event])
	return handlers
}

var globalHandlers = &registry{}

// RegisterGlobalEvent registers handler for event on every model type.
// Handlers are never removed.
func RegisterGlobalEvent(event Event, handler Handler) {
	globalHandlers.on(event, handler)
}

// On registers handler for event on records of this model type
func (mt *ModelType) On(event Event, handler Handler) *ModelType {
	mt.handlers.on(event, handler)
	return mt
}

// fireEvent runs global handlers then the model type's own, in registration order,
// stopping at the first error
func (m *Model) fireEvent(ctx context.Context, event Event) error {
	handlers := append(globalHandlers.list(event), m.typ.handlers.list(event)...)
	for _, handler := range handlers {
		if err := handler(ctx, m); err != nil {
			return err
		}
	}
	return nil
}
