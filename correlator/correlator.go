// Package correlator implements the response correlator: a concurrent
// table of outstanding request ids with awaiting-sender coordination.
//
// One oneshot channel per outstanding id, keyed in a mutex-guarded map
// rather than a linear-scanned queue.
//
// Registering a waiter happens before the request is transmitted (see
// conn.Connection.sendRequest) — otherwise a response arriving between
// the write and the await would have nothing to deliver to.
package correlator

import (
	"sync"

	"srfc/message"
)

// Correlator parks senders until a matching response arrives or the
// connection disconnects.
type Correlator struct {
	mu      sync.Mutex
	waiters map[uint64]chan *message.Response
	closed  bool
}

// New returns a ready Correlator.
func New() *Correlator {
	return &Correlator{waiters: make(map[uint64]chan *message.Response)}
}

// Register reserves a oneshot channel for id and returns it. If the
// correlator is already disconnected, the channel is pre-filled with a
// synthetic connection_error response so the caller never blocks.
//
// Ordering guarantee: Register, Deposit, and Disconnect all hold the same
// mutex while touching the waiters map, so a response deposited any time
// after Register returns is observed by the channel receive — no lost
// wakeups.
func (c *Correlator) Register(id uint64) <-chan *message.Response {
	c.mu.Lock()
	defer c.mu.Unlock()

	ch := make(chan *message.Response, 1)
	if c.closed {
		ch <- message.ConnectionError(id)
		return ch
	}
	c.waiters[id] = ch
	return ch
}

// Cancel removes a waiter registered by Register without delivering a
// response, used when a send fails after registration so that a later,
// stray Deposit for the same id can't write to an already-answered
// channel.
func (c *Correlator) Cancel(id uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.waiters, id)
}

// Deposit delivers resp to the sender awaiting its id, if any. Responses
// for unknown ids are dropped — correlation is by id only, and a response
// with no parked awaiter has nothing to wake.
func (c *Correlator) Deposit(resp *message.Response) {
	c.mu.Lock()
	ch, ok := c.waiters[resp.ID]
	if ok {
		delete(c.waiters, resp.ID)
	}
	c.mu.Unlock()

	if ok {
		ch <- resp
	}
}

// Disconnect wakes every parked awaiter with a synthetic connection_error
// response carrying its own id, and marks the correlator closed so that
// any Register call racing the disconnect also returns a pre-filled
// channel instead of one that would park forever.
func (c *Correlator) Disconnect() {
	c.mu.Lock()
	c.closed = true
	waiters := c.waiters
	c.waiters = make(map[uint64]chan *message.Response)
	c.mu.Unlock()

	for id, ch := range waiters {
		ch <- message.ConnectionError(id)
	}
}

// Reopen clears the closed flag so the correlator can be reused after a
// connection is re-established.
func (c *Correlator) Reopen() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = false
}
