package conn

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"srfc/message"
	"srfc/wire"
)

// SendRequest starts a goroutine that registers the request's id with the
// correlator, serializes and writes it, and awaits the reply; SendRequest
// itself waits for none of these. It fails with
// message.ErrLogic synchronously if not connected; otherwise
// it returns immediately with a channel that receives exactly one
// Response once the exchange completes (a real response, a synthetic
// connection_error, or — if WithRequestTimeout was configured — a
// synthetic response_timeout).
func (c *Connection) SendRequest(req *message.Request) (<-chan *message.Response, error) {
	if !c.IsConnected() {
		return nil, fmt.Errorf("%w: send_request: not connected", message.ErrLogic)
	}

	out := make(chan *message.Response, 1)
	go func() {
		out <- c.sendRequest(req)
	}()
	return out, nil
}

func (c *Connection) sendRequest(req *message.Request) *message.Response {
	// Register the awaiter before writing to the wire so a response that
	// arrives the instant the write completes is never missed (see
	// correlator package docs).
	ch := c.corr.Register(req.ID)

	frame, err := wire.Serialize(req)
	if err != nil {
		// Unreachable for a well-formed *message.Request: serialization
		// of our own data model never fails in practice. Guard anyway
		// rather than panic.
		c.corr.Cancel(req.ID)
		c.logger.Error("srfc: send_request: serialize failed", zap.Error(err))
		return &message.Response{ID: req.ID, Status: message.StatusExecutionError}
	}

	stream := c.currentStream()
	if stream == nil {
		c.corr.Cancel(req.ID)
		return message.ConnectionError(req.ID)
	}
	if err := stream.Send(frame); err != nil {
		c.corr.Cancel(req.ID)
		c.logger.Warn("srfc: send_request: transport write failed", zap.Uint64("id", req.ID), zap.Error(err))
		return message.ConnectionError(req.ID)
	}

	if c.requestTimeout <= 0 {
		return <-ch
	}

	timer := time.NewTimer(c.requestTimeout)
	defer timer.Stop()
	select {
	case resp := <-ch:
		return resp
	case <-timer.C:
		c.corr.Cancel(req.ID)
		return &message.Response{ID: req.ID, Status: message.StatusResponseTimeout}
	}
}

// SendResponse serializes and writes resp, returning a channel that
// receives the write's result (nil on success) once it completes. Fails
// with message.ErrLogic synchronously if not connected.
func (c *Connection) SendResponse(resp *message.Response) (<-chan error, error) {
	if !c.IsConnected() {
		return nil, fmt.Errorf("%w: send_response: not connected", message.ErrLogic)
	}
	out := make(chan error, 1)
	go func() {
		out <- c.sendResponseFrame(resp)
	}()
	return out, nil
}

func (c *Connection) sendResponseFrame(resp *message.Response) error {
	frame, err := wire.Serialize(resp)
	if err != nil {
		return fmt.Errorf("srfc: send_response: serialize: %w", err)
	}
	stream := c.currentStream()
	if stream == nil {
		return fmt.Errorf("%w: send_response: no transport handle", message.ErrTransport)
	}
	return stream.Send(frame)
}
