package middleware

import (
	"golang.org/x/time/rate"

	"srfc/dispatch"
	"srfc/message"
)

// RateLimitMiddleware enforces a token-bucket rate limit shared across
// every call through the wrapped handler. r is the refill rate in
// requests per second, burst the bucket size. Requests beyond the
// budget are rejected with StatusForbidden without invoking next.
//
// The limiter is created once, in the outer closure — sharing it across
// all requests is what makes the limit meaningful; a limiter created
// per-request would never throttle anything.
func RateLimitMiddleware(r float64, burst int) Middleware {
	limiter := rate.NewLimiter(rate.Limit(r), burst)
	return func(next dispatch.Handler) dispatch.Handler {
		return func(params message.Params, payload []byte) ([]byte, message.Status) {
			if !limiter.Allow() {
				return nil, message.StatusForbidden
			}
			return next(params, payload)
		}
	}
}
