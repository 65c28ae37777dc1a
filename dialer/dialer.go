package dialer

import (
	"fmt"
	"sync"

	"srfc/conn"
	"srfc/loadbalance"
	"srfc/registry"
)

// Dialer resolves a service name to an address using a registry.Registry
// and a loadbalance.Balancer, maintaining one Pool per address it has
// dialed before.
type Dialer struct {
	reg      registry.Registry
	balancer loadbalance.Balancer
	maxConns int
	opts     []conn.Option

	mu    sync.Mutex
	pools map[string]*Pool
}

// New builds a Dialer over reg/balancer, pooling up to maxConns
// connections per resolved address.
func New(reg registry.Registry, balancer loadbalance.Balancer, maxConns int, opts ...conn.Option) *Dialer {
	return &Dialer{
		reg:      reg,
		balancer: balancer,
		maxConns: maxConns,
		opts:     opts,
		pools:    make(map[string]*Pool),
	}
}

// Dial resolves serviceName via the registry, picks one instance via the
// balancer, and returns a connected *conn.Connection from that
// instance's pool. The caller must call Release when done with it.
func (d *Dialer) Dial(serviceName string) (*conn.Connection, error) {
	instances, err := d.reg.Discover(serviceName)
	if err != nil {
		return nil, fmt.Errorf("dialer: discover %s: %w", serviceName, err)
	}
	if len(instances) == 0 {
		return nil, fmt.Errorf("dialer: no instances for %s", serviceName)
	}

	instance, err := d.balancer.Pick(instances)
	if err != nil {
		return nil, fmt.Errorf("dialer: pick instance for %s: %w", serviceName, err)
	}

	return d.pool(instance.Addr).Get()
}

// Release returns c to its address's pool for reuse by a later Dial.
func (d *Dialer) Release(addr string, c *conn.Connection) {
	d.pool(addr).Put(c)
}

func (d *Dialer) pool(addr string) *Pool {
	d.mu.Lock()
	defer d.mu.Unlock()
	p, ok := d.pools[addr]
	if !ok {
		p = NewPool(addr, d.maxConns, d.opts...)
		d.pools[addr] = p
	}
	return p
}

// Close shuts down every pool the dialer has opened.
func (d *Dialer) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, p := range d.pools {
		p.Close()
	}
}
