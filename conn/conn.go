// Package conn implements the SRFC connection engine: a connection's
// lifecycle (connect, invoke deferred, shutdown, reset, dispose), the
// reader loop that reassembles frames off the wire and dispatches them,
// and the send-request/send-response APIs.
//
// A Connection is symmetric: the same type is used to originate requests
// and to answer requests addressed to it, whichever peer it represents.
package conn

import (
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"srfc/correlator"
	"srfc/dispatch"
	"srfc/message"
	"srfc/transport"
)

// Connection owns a transport handle, a method registry, and a response
// correlator, plus the connected/terminate/idleable state flags.
type Connection struct {
	mu            sync.Mutex
	cond          *sync.Cond
	stream        transport.Stream
	generation    uint64
	connected     bool
	terminate     bool
	readerStarted bool
	readerDone    chan struct{}

	idleMu   sync.Mutex
	idleCond *sync.Cond
	idleable bool

	table *dispatch.Table
	corr  *correlator.Correlator

	logger         *zap.Logger
	requestTimeout time.Duration
}

// New constructs a deferred connection: no transport, no reader running.
// Connection is always referenced through a pointer, so there is no
// move-while-running hazard to guard against; the only rule is not to
// share a *Connection across unrelated lifecycles — construct one per
// logical peer.
func New(opts ...Option) *Connection {
	c := &Connection{
		idleable: true,
		table:    dispatch.NewTable(),
		corr:     correlator.New(),
		logger:   zap.NewNop(),
	}
	c.cond = sync.NewCond(&c.mu)
	c.idleCond = sync.NewCond(&c.idleMu)
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Option configures a Connection at construction time.
type Option func(*Connection)

// WithLogger injects a structured logger; the default is a no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Connection) { c.logger = l }
}

// WithRequestTimeout bounds how long SendRequest waits for a response
// before resolving with StatusResponseTimeout. Disabled (no timeout) when
// unset or zero.
func WithRequestTimeout(d time.Duration) Option {
	return func(c *Connection) { c.requestTimeout = d }
}

// Connect establishes a TCP transport to address and, unless deferred,
// starts/wakes the reader. Fails with message.ErrLogic if already
// connected.
func (c *Connection) Connect(network, address string, deferred bool) error {
	stream, err := transport.Dial(network, address)
	if err != nil {
		return err
	}
	return c.adopt(stream, deferred)
}

// ConnectStream adopts an already-established transport.Stream (used by
// the listener engine handing off an accepted connection) and, unless
// deferred, starts/wakes the reader.
func (c *Connection) ConnectStream(stream transport.Stream, deferred bool) error {
	return c.adopt(stream, deferred)
}

func (c *Connection) adopt(stream transport.Stream, deferred bool) error {
	c.mu.Lock()
	if c.connected {
		c.mu.Unlock()
		return fmt.Errorf("%w: connect: already connected", message.ErrLogic)
	}
	c.stream = stream
	c.generation++
	c.connected = true
	c.cond.Broadcast()
	c.mu.Unlock()

	c.corr.Reopen()

	if !deferred {
		return c.InvokeDeferred()
	}
	return nil
}

// InvokeDeferred starts the reader task if it has not been started yet,
// and wakes it if it was parked. Requires a transport handle to already
// exist.
func (c *Connection) InvokeDeferred() error {
	c.mu.Lock()
	if c.stream == nil {
		c.mu.Unlock()
		return fmt.Errorf("%w: invoke_deferred: no transport handle", message.ErrLogic)
	}
	if !c.readerStarted {
		c.readerStarted = true
		c.readerDone = make(chan struct{})
		go c.readerLoop(c.readerDone)
	}
	c.cond.Broadcast()
	c.mu.Unlock()
	return nil
}

// AddMethod registers handler under name. Registration is not safe
// against concurrent dispatch; install handlers before the reader starts.
func (c *Connection) AddMethod(name string, handler dispatch.Handler) {
	c.table.Add(name, handler)
}

// RemoveMethod deregisters the handler registered under name.
func (c *Connection) RemoveMethod(name string) bool {
	return c.table.Remove(name)
}

// HasMethod reports whether a handler is registered under name.
func (c *Connection) HasMethod(name string) bool {
	return c.table.Has(name)
}

// ReplaceTable swaps in table wholesale, used by the listener engine to
// install a copy of its registry into a freshly accepted, still-deferred
// connection. Must be called before the reader starts.
func (c *Connection) ReplaceTable(table *dispatch.Table) {
	c.table = table
}

// IsConnected returns a snapshot of the connected flag.
func (c *Connection) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}

func (c *Connection) currentStream() transport.Stream {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stream
}

// Shutdown flips connected false, half-closes the transport, blocks until
// the reader reports idleable, wakes every awaiter with a
// connection_error response, and clears the response correlator. Fails
// with message.ErrLogic if not connected.
func (c *Connection) Shutdown() error {
	c.mu.Lock()
	if !c.connected {
		c.mu.Unlock()
		return fmt.Errorf("%w: shutdown: not connected", message.ErrLogic)
	}
	c.mu.Unlock()
	c.doShutdown()
	return nil
}

// localShutdown is the reader's own trigger on peer orderly close. Unlike
// the public Shutdown, it is a no-op if already disconnected instead of
// erroring — the reader has no caller to report a LogicError to.
func (c *Connection) localShutdown() {
	c.doShutdown()
}

func (c *Connection) doShutdown() {
	c.mu.Lock()
	if !c.connected {
		c.mu.Unlock()
		return
	}
	c.connected = false
	stream := c.stream
	c.cond.Broadcast()
	c.mu.Unlock()

	if stream != nil {
		if err := stream.Shutdown(); err != nil {
			c.logger.Warn("srfc: transport shutdown failed", zap.Error(err))
		}
	}

	c.waitIdle()
	c.corr.Disconnect()
}

func (c *Connection) waitIdle() {
	c.idleMu.Lock()
	defer c.idleMu.Unlock()
	for !c.idleable {
		c.idleCond.Wait()
	}
}

func (c *Connection) setIdleable(v bool) {
	c.idleMu.Lock()
	c.idleable = v
	c.idleCond.Broadcast()
	c.idleMu.Unlock()
}

// Reset shuts down the connection if connected, then clears the method
// registry.
func (c *Connection) Reset() {
	if c.IsConnected() {
		_ = c.Shutdown()
	}
	c.table = dispatch.NewTable()
}

// Dispose resets the connection, signals terminate to release the
// reader, and joins it. A disposed Connection must not be reused.
func (c *Connection) Dispose() {
	c.Reset()

	c.mu.Lock()
	c.terminate = true
	done := c.readerDone
	c.cond.Broadcast()
	c.mu.Unlock()

	if done != nil {
		<-done
	}
}
