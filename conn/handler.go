package conn

import (
	"go.uber.org/zap"

	"srfc/dispatch"
	"srfc/message"
)

// handleRequest looks up and invokes the handler for req, then sends the
// response back over the connection. It runs on its own detached
// goroutine, one per received request.
func (c *Connection) handleRequest(req *message.Request) {
	resp := message.NewResponse(req.ID)

	handler, ok := c.table.Get(req.Method)
	if !ok {
		resp.Status = message.StatusUnknownMethod
	} else {
		resp.Payload, resp.Status = c.invokeHandler(handler, req)
	}

	// Send failures here are silently dropped: the peer cannot be
	// notified if the link that would carry the notification is the
	// thing that's down.
	if err := c.sendResponseFrame(resp); err != nil {
		c.logger.Debug("srfc: handler: failed to send response", zap.Uint64("id", resp.ID), zap.Error(err))
	}
}

// invokeHandler calls handler and recovers a panic into
// StatusUnhandledException, dropping any partially produced payload.
func (c *Connection) invokeHandler(handler dispatch.Handler, req *message.Request) (payload []byte, status message.Status) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("srfc: handler panicked", zap.Any("recover", r), zap.String("method", req.Method))
			payload = nil
			status = message.StatusUnhandledException
		}
	}()
	return handler(req.Params, req.Payload)
}
