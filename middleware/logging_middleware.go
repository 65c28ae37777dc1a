package middleware

import (
	"time"

	"go.uber.org/zap"

	"srfc/dispatch"
	"srfc/message"
)

// LoggingMiddleware records the duration and resulting status of every
// request that passes through the wrapped handler. The method name is
// not recorded.
func LoggingMiddleware(logger *zap.Logger) Middleware {
	return func(next dispatch.Handler) dispatch.Handler {
		return func(params message.Params, payload []byte) ([]byte, message.Status) {
			start := time.Now()
			respPayload, status := next(params, payload)
			logger.Info("srfc: handler invoked",
				zap.Duration("duration", time.Since(start)),
				zap.Stringer("status", status),
			)
			return respPayload, status
		}
	}
}
