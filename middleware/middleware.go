// Package middleware implements the onion model middleware chain for
// SRFC handlers.
//
// Middleware wraps a dispatch.Handler to add cross-cutting concerns
// (logging, timeout, retry, rate limiting) without modifying the handler
// itself.
//
// Onion model execution order:
//
//	Chain(A, B, C)(handler)  →  A(B(C(handler)))
//
//	Request:   A.before → B.before → C.before → handler
//	Response:  handler → C.after → B.after → A.after
package middleware

import "srfc/dispatch"

// Middleware takes a handler and returns a new handler that wraps it.
type Middleware func(next dispatch.Handler) dispatch.Handler

// Chain composes multiple middlewares into a single middleware, built
// from right to left so the first middleware in the list is the
// outermost layer (executed first on request, last on response).
//
// Example:
//
//	chain := Chain(LoggingMiddleware(logger), RateLimitMiddleware(100, 10))
//	table.Add("Echo", chain(echoHandler))
func Chain(middlewares ...Middleware) Middleware {
	return func(next dispatch.Handler) dispatch.Handler {
		for i := len(middlewares) - 1; i >= 0; i-- {
			next = middlewares[i](next)
		}
		return next
	}
}
