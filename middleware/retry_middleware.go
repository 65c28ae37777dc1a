package middleware

import (
	"time"

	"srfc/dispatch"
	"srfc/message"
)

// RetryMiddleware retries the wrapped handler up to maxRetries times,
// with exponential backoff starting at baseDelay, whenever it returns
// StatusExecutionError — the status a handler uses to signal a
// transient failure worth retrying. Any other non-ok status is returned
// immediately without retrying.
func RetryMiddleware(maxRetries int, baseDelay time.Duration) Middleware {
	return func(next dispatch.Handler) dispatch.Handler {
		return func(params message.Params, payload []byte) ([]byte, message.Status) {
			respPayload, status := next(params, payload)
			for i := 0; i < maxRetries; i++ {
				if status != message.StatusExecutionError {
					return respPayload, status
				}
				time.Sleep(baseDelay * time.Duration(uint64(1)<<uint(i)))
				respPayload, status = next(params, payload)
			}
			return respPayload, status
		}
	}
}
