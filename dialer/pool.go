// Package dialer implements a discovery-aware client dialer: resolving a
// service name to an address via registry.Registry, picking one instance
// via loadbalance.Balancer, and handing back a warm, non-deferred
// *conn.Connection from a per-address pool instead of dialing fresh on
// every call.
package dialer

import (
	"fmt"
	"sync"

	"srfc/conn"
)

// Pool manages a bounded set of live *conn.Connection handles to a
// single address, reused across calls instead of paying a fresh
// connect/shutdown cycle per request.
type Pool struct {
	mu       sync.Mutex
	conns    chan *conn.Connection
	addr     string
	maxConns int
	curConns int
	opts     []conn.Option
}

// NewPool creates a connection pool bounded at maxConns live connections
// to addr.
func NewPool(addr string, maxConns int, opts ...conn.Option) *Pool {
	return &Pool{
		conns:    make(chan *conn.Connection, maxConns),
		addr:     addr,
		maxConns: maxConns,
		opts:     opts,
	}
}

// Get returns a connected *conn.Connection, preferring one idling in the
// pool, dialing a new one if under capacity, and otherwise blocking for
// one to be returned.
func (p *Pool) Get() (*conn.Connection, error) {
	select {
	case c := <-p.conns:
		if c.IsConnected() {
			return c, nil
		}
		p.mu.Lock()
		p.curConns--
		p.mu.Unlock()
		return p.dial()
	default:
		p.mu.Lock()
		if p.curConns < p.maxConns {
			p.mu.Unlock()
			return p.dial()
		}
		p.mu.Unlock()
		c := <-p.conns
		return c, nil
	}
}

// Put returns c to the pool for reuse, or discards it if it's no longer
// connected.
func (p *Pool) Put(c *conn.Connection) {
	if !c.IsConnected() {
		p.mu.Lock()
		p.curConns--
		p.mu.Unlock()
		return
	}
	select {
	case p.conns <- c:
	default:
		// Pool is at capacity (shouldn't happen under normal Get/Put
		// pairing); drop the extra connection rather than block the
		// caller returning it.
		_ = c.Shutdown()
		p.mu.Lock()
		p.curConns--
		p.mu.Unlock()
	}
}

func (p *Pool) dial() (*conn.Connection, error) {
	p.mu.Lock()
	if p.curConns >= p.maxConns {
		p.mu.Unlock()
		return nil, fmt.Errorf("dialer: pool exhausted for %s", p.addr)
	}
	p.curConns++
	p.mu.Unlock()

	c := conn.New(p.opts...)
	if err := c.Connect("tcp", p.addr, false); err != nil {
		p.mu.Lock()
		p.curConns--
		p.mu.Unlock()
		return nil, err
	}
	return c, nil
}

// Close shuts down every idling connection and drains the pool.
func (p *Pool) Close() {
	close(p.conns)
	for c := range p.conns {
		_ = c.Shutdown()
	}
}
