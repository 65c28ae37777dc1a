// Package listener implements the SRFC listener engine: binding an
// address, accepting inbound connections, and handing each off as a
// fully configured, deferred *conn.Connection to a user-supplied
// callback.
package listener

import (
	"fmt"
	"sync"

	"go.uber.org/zap"

	"srfc/conn"
	"srfc/dispatch"
	"srfc/message"
	"srfc/transport"
)

// ConnectionCallback is invoked once per accepted connection, with
// ownership of a deferred *conn.Connection. The callee is responsible for
// eventually calling conn.Connection.InvokeDeferred so the reader starts.
type ConnectionCallback func(*conn.Connection)

// Listener owns a bound listener handle, a method registry copied into
// each accepted connection, and the connection-accept callback.
type Listener struct {
	mu            sync.Mutex
	cond          *sync.Cond
	ln            transport.Listener
	listening     bool
	terminate     bool
	acceptStarted bool
	acceptDone    chan struct{}

	idleMu   sync.Mutex
	idleCond *sync.Cond
	idleable bool

	table    *dispatch.Table
	onAccept ConnectionCallback

	logger *zap.Logger

	connOpts []conn.Option
}

// Option configures a Listener at construction time.
type Option func(*Listener)

// WithLogger injects a structured logger; the default is a no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(ln *Listener) { ln.logger = l }
}

// WithConnectionOptions are forwarded to every conn.New call the accept
// loop makes, e.g. to propagate a shared logger or request timeout onto
// every accepted connection.
func WithConnectionOptions(opts ...conn.Option) Option {
	return func(ln *Listener) { ln.connOpts = append(ln.connOpts, opts...) }
}

// New constructs a deferred listener: unbound, accept loop not running.
func New(opts ...Option) *Listener {
	l := &Listener{
		idleable: true,
		table:    dispatch.NewTable(),
		logger:   zap.NewNop(),
	}
	l.cond = sync.NewCond(&l.mu)
	l.idleCond = sync.NewCond(&l.idleMu)
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// OnConnection installs the per-connection callback. Call before Listen
// for deterministic behavior with the first accepted connection.
func (l *Listener) OnConnection(cb ConnectionCallback) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.onAccept = cb
}

// AddMethod registers handler under name in the registry that will be
// copied into each accepted connection.
func (l *Listener) AddMethod(name string, handler dispatch.Handler) {
	l.table.Add(name, handler)
}

// RemoveMethod deregisters the handler registered under name.
func (l *Listener) RemoveMethod(name string) bool {
	return l.table.Remove(name)
}

// HasMethod reports whether a handler is registered under name.
func (l *Listener) HasMethod(name string) bool {
	return l.table.Has(name)
}

// Listen binds address and, unless deferred, starts/wakes the accept
// loop. Fails with message.ErrLogic if already listening.
func (l *Listener) Listen(network, address string, deferred bool) error {
	ln, err := transport.Listen(network, address)
	if err != nil {
		return err
	}
	return l.adopt(ln, deferred)
}

// ListenHandle adopts an already-bound transport.Listener.
func (l *Listener) ListenHandle(ln transport.Listener, deferred bool) error {
	return l.adopt(ln, deferred)
}

func (l *Listener) adopt(ln transport.Listener, deferred bool) error {
	l.mu.Lock()
	if l.listening {
		l.mu.Unlock()
		return fmt.Errorf("%w: listen: already listening", message.ErrLogic)
	}
	l.ln = ln
	l.listening = true
	l.cond.Broadcast()
	l.mu.Unlock()

	if !deferred {
		return l.InvokeDeferred()
	}
	return nil
}

// InvokeDeferred starts the accept loop if not already started, and
// wakes it if parked.
func (l *Listener) InvokeDeferred() error {
	l.mu.Lock()
	if l.ln == nil {
		l.mu.Unlock()
		return fmt.Errorf("%w: invoke_deferred: not bound", message.ErrLogic)
	}
	if !l.acceptStarted {
		l.acceptStarted = true
		l.acceptDone = make(chan struct{})
		go l.acceptLoop(l.acceptDone)
	}
	l.cond.Broadcast()
	l.mu.Unlock()
	return nil
}

// Addr returns the bound address, or "" if not yet bound.
func (l *Listener) Addr() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.ln == nil {
		return ""
	}
	return l.ln.Addr()
}

// Shutdown flips listening false, half-closes the listening handle, and
// blocks until the accept loop reports idleable. Fails with
// message.ErrLogic if not listening.
func (l *Listener) Shutdown() error {
	l.mu.Lock()
	if !l.listening {
		l.mu.Unlock()
		return fmt.Errorf("%w: shutdown: not listening", message.ErrLogic)
	}
	l.listening = false
	ln := l.ln
	l.cond.Broadcast()
	l.mu.Unlock()

	if ln != nil {
		if err := ln.Shutdown(); err != nil {
			l.logger.Warn("srfc: listener: shutdown failed", zap.Error(err))
		}
	}

	l.waitIdle()
	return nil
}

func (l *Listener) waitIdle() {
	l.idleMu.Lock()
	defer l.idleMu.Unlock()
	for !l.idleable {
		l.idleCond.Wait()
	}
}

func (l *Listener) setIdleable(v bool) {
	l.idleMu.Lock()
	l.idleable = v
	l.idleCond.Broadcast()
	l.idleMu.Unlock()
}

// Dispose shuts down (if listening) and signals terminate, releasing the
// accept loop, then joins it. A disposed Listener must not be reused.
func (l *Listener) Dispose() {
	l.mu.Lock()
	listening := l.listening
	l.mu.Unlock()
	if listening {
		_ = l.Shutdown()
	}

	l.mu.Lock()
	l.terminate = true
	done := l.acceptDone
	l.cond.Broadcast()
	l.mu.Unlock()

	if done != nil {
		<-done
	}
}
