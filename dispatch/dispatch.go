// Package dispatch implements the method registry: a mapping from method
// name to handler, copied into each accepted connection by the listener
// engine and consulted by the connection engine's request handler
// pipeline.
package dispatch

import (
	"sync"

	"srfc/message"
)

// Handler answers one incoming request. It receives the request's
// parameter list and payload, and returns the response payload and
// status. A non-ok status still produces a response frame.
//
// Handlers run concurrently with each other and with the connection's
// reader loop; implementations must be safe to invoke from arbitrary
// goroutines.
type Handler func(params message.Params, payload []byte) (respPayload []byte, status message.Status)

// Table is a method name -> Handler map. Mutation is not safe against
// concurrent dispatch: handlers are expected to be installed during the
// deferred phase, before the reader/accept loop starts.
type Table struct {
	mu       sync.RWMutex
	handlers map[string]Handler
}

// NewTable returns an empty registry.
func NewTable() *Table {
	return &Table{handlers: make(map[string]Handler)}
}

// Add registers handler under name, replacing any existing handler for
// that name.
func (t *Table) Add(name string, handler Handler) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.handlers[name] = handler
}

// Remove deletes the handler registered under name, reporting whether one
// existed.
func (t *Table) Remove(name string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.handlers[name]; !ok {
		return false
	}
	delete(t.handlers, name)
	return true
}

// Has reports whether a handler is registered under name.
func (t *Table) Has(name string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	_, ok := t.handlers[name]
	return ok
}

// Get returns the handler registered under name, if any.
func (t *Table) Get(name string) (Handler, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	h, ok := t.handlers[name]
	return h, ok
}

// Clone returns a new Table with the same handlers, used by the listener
// engine to copy its registry into each accepted connection.
func (t *Table) Clone() *Table {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := NewTable()
	for name, h := range t.handlers {
		out.handlers[name] = h
	}
	return out
}
