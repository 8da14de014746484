package hostfuncs

import (
	"context"
	"log/slog"
	"time"
)

// Middleware is a function that wraps a ByteHandler to add cross-cutting behavior.
// Middleware executes in FIFO order (first registered wraps first, onion model).
type Middleware func(next ByteHandler) ByteHandler

// RegistryOption is a functional option for configuring a Registry.
type RegistryOption func(*registryBuilder)

// PanicRecoveryMiddleware returns a middleware that catches panics and converts
// them to structured ErrorResponse JSON instead of crashing the host.
func PanicRecoveryMiddleware() Middleware {
	return func(next ByteHandler) ByteHandler {
		return func(ctx context.Context, payload []byte) (resp []byte, err error) {
			defer func() {
				if r := recover(); r != nil {
					resp = NewPanicError(r).ToJSON()
					err = nil
				}
			}()
			return next(ctx, payload)
		}
	}
}

// LoggingMiddleware returns a middleware that logs every host call at debug
// level, and failures at warn level. A nil logger uses slog.Default().
func LoggingMiddleware(logger *slog.Logger) Middleware {
	return func(next ByteHandler) ByteHandler {
		return func(ctx context.Context, payload []byte) ([]byte, error) {
			l := logger
			if l == nil {
				l = slog.Default()
			}
			var module, function, caller string
			if hc, ok := ctx.(HostContext); ok {
				module, function, caller = hc.ModuleName(), hc.FunctionName(), hc.Caller()
			}

			start := time.Now()
			resp, err := next(ctx, payload)
			if err != nil {
				l.WarnContext(ctx, "hostfuncs: call failed",
					"module", module, "function", function, "caller", caller, "error", err)
				return resp, err
			}
			l.DebugContext(ctx, "hostfuncs: call completed",
				"module", module, "function", function, "caller", caller,
				"duration", time.Since(start))
			return resp, nil
		}
	}
}
