// Package authbus carries authentication failures from the HTTP layer to
// whoever owns the session, so neither side references the other.
package authbus

import (
	"context"
	"sync"
)

type Reason string

const (
	// ReasonUnauthorized is published when the backend rejected the token.
	ReasonUnauthorized Reason = "unauthorized"
)

type Event struct {
	Reason Reason
	Method string
	Path   string
}

type Handler func(ctx context.Context, ev Event)

// Bus delivers every published event synchronously to all handlers
// subscribed at the time of publishing. The zero value is ready to use.
type Bus struct {
	mu       sync.Mutex
	nextID   int
	handlers map[int]Handler
	order    []int
}

func New() *Bus {
	return &Bus{}
}

// Subscribe registers h and returns a func that removes it again.
func (b *Bus) Subscribe(h Handler) (cancel func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.handlers == nil {
		b.handlers = make(map[int]Handler)
	}
	id := b.nextID
	b.nextID++
	b.handlers[id] = h
	b.order = append(b.order, id)

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()

			delete(b.handlers, id)
			for i, v := range b.order {
				if v == id {
					b.order = append(b.order[:i], b.order[i+1:]...)
					break
				}
			}
		})
	}
}

// Publish calls the handlers in subscription order. Handlers run without
// the bus lock held, so they may subscribe or cancel.
func (b *Bus) Publish(ctx context.Context, ev Event) {
	b.mu.Lock()
	handlers := make([]Handler, 0, len(b.order))
	for _, id := range b.order {
		handlers = append(handlers, b.handlers[id])
	}
	b.mu.Unlock()

	for _, h := range handlers {
		h(ctx, ev)
	}
}
