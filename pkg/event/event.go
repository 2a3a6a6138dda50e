// Package event is a small in-process dispatcher. The dev server uses it to
// decouple order mutations from their side effects (push frames, metrics).
package event

import "sync"

// Handler receives an event payload.
type Handler func(payload interface{})

// Bus routes named events to their registered handlers.
type Bus struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
}

// NewBus creates an empty Bus.
func NewBus() *Bus {
	return &Bus{handlers: make(map[string][]Handler)}
}

// Listen registers a handler for name.
func (b *Bus) Listen(name string, h Handler) {
	b.mu.Lock()
	b.handlers[name] = append(b.handlers[name], h)
	b.mu.Unlock()
}

// Fire invokes every handler for name synchronously, in registration order.
func (b *Bus) Fire(name string, payload interface{}) {
	for _, h := range b.snapshot(name) {
		h(payload)
	}
}

// FireAsync invokes each handler in its own goroutine and returns
// immediately.
func (b *Bus) FireAsync(name string, payload interface{}) {
	for _, h := range b.snapshot(name) {
		go h(payload)
	}
}

func (b *Bus) snapshot(name string) []Handler {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]Handler, len(b.handlers[name]))
	copy(out, b.handlers[name])
	return out
}

var defaultBus = NewBus()

// Listen registers a handler on the default bus.
func Listen(name string, h Handler) { defaultBus.Listen(name, h) }

// Fire dispatches on the default bus.
func Fire(name string, payload interface{}) { defaultBus.Fire(name, payload) }

// FireAsync dispatches asynchronously on the default bus.
func FireAsync(name string, payload interface{}) { defaultBus.FireAsync(name, payload) }

// Flush drops all default-bus listeners (tests).
func Flush() {
	defaultBus.mu.Lock()
	defaultBus.handlers = make(map[string][]Handler)
	defaultBus.mu.Unlock()
}
