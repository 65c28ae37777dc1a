package middleware

import (
	"time"

	"srfc/dispatch"
	"srfc/message"
)

// TimeoutMiddleware enforces a maximum duration for the wrapped handler.
// If it doesn't complete within timeout, the middleware returns
// StatusExecutionError immediately without waiting further.
//
// The handler goroutine is not cancelled — it keeps running in the
// background and its eventual result, if any, is discarded. A handler
// that needs true cancellation must watch its own deadline internally;
// dispatch.Handler carries no context.Context.
func TimeoutMiddleware(timeout time.Duration) Middleware {
	return func(next dispatch.Handler) dispatch.Handler {
		return func(params message.Params, payload []byte) ([]byte, message.Status) {
			type result struct {
				payload []byte
				status  message.Status
			}
			done := make(chan result, 1)
			go func() {
				p, s := next(params, payload)
				done <- result{p, s}
			}()

			select {
			case r := <-done:
				return r.payload, r.status
			case <-time.After(timeout):
				return nil, message.StatusExecutionError
			}
		}
	}
}
