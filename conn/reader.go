package conn

import (
	"bytes"

	"go.uber.org/zap"

	"srfc/message"
	"srfc/wire"
)

// readerLoop is the connection's single long-lived background task: park
// until connected or terminated, read, reassemble frames, and dispatch
// each one to a fresh detached goroutine.
func (c *Connection) readerLoop(done chan struct{}) {
	defer close(done)

	var buf bytes.Buffer
	var lastGen uint64

	for {
		// Step 1: mark idleable, remember the current handle's
		// generation, and drop any stale buffer if we're not connected.
		c.setIdleable(true)

		c.mu.Lock()
		lastGen = c.generation
		connectedNow := c.connected
		c.mu.Unlock()
		if !connectedNow {
			buf.Reset()
		}

		// Step 2: park until connected or terminate.
		c.mu.Lock()
		for !c.connected && !c.terminate {
			c.cond.Wait()
		}
		terminate := c.terminate
		c.mu.Unlock()

		// Step 3.
		if terminate {
			return
		}

		// Step 4: mark busy; a handle swap during the park invalidates
		// whatever was buffered for the previous connection.
		c.setIdleable(false)

		c.mu.Lock()
		curGen := c.generation
		stream := c.stream
		c.mu.Unlock()
		if curGen != lastGen {
			buf.Reset()
		}

		if stream == nil {
			continue
		}

		// Step 5.
		data, err := stream.Receive()
		if err != nil {
			c.logger.Warn("srfc: reader: transport read error, discarding buffer", zap.Error(err))
			buf.Reset()
			continue
		}
		if len(data) == 0 {
			c.setIdleable(true)
			c.localShutdown()
			continue
		}

		// Step 6 & 7.
		buf.Write(data)
		c.drainFrames(&buf)
	}
}

// drainFrames pulls as many complete, self-contained frames off the front
// of buf as are available, dispatching each to its own goroutine. A
// malformed preamble discards the whole buffer, including any complete
// frames already buffered behind it; the reader does not resync.
func (c *Connection) drainFrames(buf *bytes.Buffer) {
	for {
		if buf.Len() < wire.PreambleSize {
			return
		}
		length, ok := wire.PeekLength(buf.Bytes())
		if !ok {
			c.logger.Warn("srfc: reader: malformed preamble, discarding buffer")
			buf.Reset()
			return
		}
		if buf.Len() < length {
			return
		}

		frame := make([]byte, length)
		copy(frame, buf.Next(length))

		if !wire.Validate(frame) {
			c.logger.Debug("srfc: reader: dropped frame failing validation")
			continue
		}
		msg, err := wire.Parse(frame)
		if err != nil {
			c.logger.Debug("srfc: reader: dropped frame failing parse", zap.Error(err))
			continue
		}

		switch m := msg.(type) {
		case *message.Request:
			go c.handleRequest(m)
		case *message.Response:
			go c.corr.Deposit(m)
		}
	}
}
