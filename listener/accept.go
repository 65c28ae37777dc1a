package listener

import (
	"go.uber.org/zap"

	"srfc/conn"
	"srfc/transport"
)

// acceptLoop is the listener's single long-lived background task. It is
// structurally identical to the connection engine's reader loop, with
// `listening` substituted for `connected`, Accept substituted for
// Receive, and each accepted handle onboarded as a fresh deferred
// Connection instead of a parsed frame.
func (l *Listener) acceptLoop(done chan struct{}) {
	defer close(done)

	for {
		// Step 1.
		l.setIdleable(true)

		// Step 2: park until listening or terminate.
		l.mu.Lock()
		for !l.listening && !l.terminate {
			l.cond.Wait()
		}
		terminate := l.terminate
		ln := l.ln
		l.mu.Unlock()

		// Step 3.
		if terminate {
			return
		}

		// Step 4.
		l.setIdleable(false)

		if ln == nil {
			continue
		}

		stream, err := ln.Accept()
		if err != nil {
			l.logger.Warn("srfc: listener: accept error", zap.Error(err))
			continue
		}

		l.onboard(stream)
	}
}

// onboard constructs a deferred connection adopting the accepted stream,
// copies the registry into it, and invokes the connection callback with
// ownership of the connection.
func (l *Listener) onboard(stream transport.Stream) {
	l.mu.Lock()
	table := l.table.Clone()
	cb := l.onAccept
	connOpts := append([]conn.Option(nil), l.connOpts...)
	l.mu.Unlock()

	opts := append(connOpts, conn.WithLogger(l.logger))
	c := conn.New(opts...)
	c.ReplaceTable(table)

	if err := c.ConnectStream(stream, true); err != nil {
		l.logger.Error("srfc: listener: onboarding connection failed", zap.Error(err))
		return
	}

	if cb != nil {
		cb(c)
	} else {
		l.logger.Warn("srfc: listener: accepted connection with no OnConnection callback installed, reader will never start")
	}
}
