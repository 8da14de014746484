package hostfuncs

import (
	"context"
	"log/slog"
	"math"
	"strings"
	"unicode/utf8"
)

// Bundle is a pre-configured set of host modules.
type Bundle interface {
	// Modules maps qualified module names to their handlers by function name.
	Modules() map[string]map[string]ByteHandler
}

type staticBundle struct {
	modules map[string]map[string]ByteHandler
}

func (b *staticBundle) Modules() map[string]map[string]ByteHandler {
	return b.modules
}

// MathRequest is the request type for java.lang.Math functions.
// Unary functions read only A.
type MathRequest struct {
	A float64 `json:"a"`
	B float64 `json:"b"`
}

// MathResponse is the response type for java.lang.Math functions.
type MathResponse struct {
	Result float64 `json:"result"`
}

// StringRequest is the request type for java.lang.String functions.
type StringRequest struct {
	Value string `json:"value"`
}

// StringResponse is the response type for java.lang.String functions.
// Length is set by "length"; Value by the transforming functions.
type StringResponse struct {
	Value  string `json:"value,omitempty"`
	Length int    `json:"length"`
}

func mathFunc(fn func(a, b float64) float64) ByteHandler {
	return NewJSONHandler(func(_ context.Context, req MathRequest) MathResponse {
		return MathResponse{Result: fn(req.A, req.B)}
	})
}

func stringFunc(fn func(s string) StringResponse) ByteHandler {
	return NewJSONHandler(func(_ context.Context, req StringRequest) StringResponse {
		return fn(req.Value)
	})
}

// StandardBundle backs part of the curated standard set with host code:
// java.lang.Math (abs, max, min, pow) and java.lang.String (length,
// toUpperCase, toLowerCase, trim). Names from the curated set without an
// implementation here resolve to the host but fail to link as unresolved.
func StandardBundle() Bundle {
	return &staticBundle{
		modules: map[string]map[string]ByteHandler{
			"java.lang.Math": {
				"abs": mathFunc(func(a, _ float64) float64 { return math.Abs(a) }),
				"max": mathFunc(math.Max),
				"min": mathFunc(math.Min),
				"pow": mathFunc(math.Pow),
			},
			"java.lang.String": {
				"length": stringFunc(func(s string) StringResponse {
					return StringResponse{Length: utf8.RuneCountInString(s)}
				}),
				"toUpperCase": stringFunc(func(s string) StringResponse {
					return StringResponse{Value: strings.ToUpper(s), Length: utf8.RuneCountInString(s)}
				}),
				"toLowerCase": stringFunc(func(s string) StringResponse {
					return StringResponse{Value: strings.ToLower(s), Length: utf8.RuneCountInString(s)}
				}),
				"trim": stringFunc(func(s string) StringResponse {
					t := strings.TrimSpace(s)
					return StringResponse{Value: t, Length: utf8.RuneCountInString(t)}
				}),
			},
		},
	}
}

// LogRequest is the request type for the console bundle's "log" function.
type LogRequest struct {
	Level   string `json:"level"`
	Message string `json:"message"`
}

// ConsoleBundle returns a bundle with a single module named module exporting
// "log", which writes guest messages to logger (slog.Default() if nil).
func ConsoleBundle(module string, logger *slog.Logger) Bundle {
	log := NewJSONHandler(func(ctx context.Context, req LogRequest) struct{} {
		l := logger
		if l == nil {
			l = slog.Default()
		}
		var caller string
		if hc, ok := ctx.(HostContext); ok {
			caller = hc.Caller()
		}
		l.Log(ctx, parseLevel(req.Level), req.Message, "guest", caller)
		return struct{}{}
	})
	return &staticBundle{
		modules: map[string]map[string]ByteHandler{
			module: {"log": log},
		},
	}
}

func parseLevel(s string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return level
}

type compositeBundle struct {
	bundles []Bundle
}

func (b *compositeBundle) Modules() map[string]map[string]ByteHandler {
	result := make(map[string]map[string]ByteHandler)
	for _, bundle := range b.bundles {
		for module, fns := range bundle.Modules() {
			if result[module] == nil {
				result[module] = make(map[string]ByteHandler)
			}
			for fn, h := range fns {
				result[module][fn] = h
			}
		}
	}
	return result
}

// Combine merges bundles. Later bundles win on a duplicate function.
func Combine(bundles ...Bundle) Bundle {
	return &compositeBundle{bundles: bundles}
}

// WithBundle registers all modules from a bundle.
func WithBundle(bundle Bundle) RegistryOption {
	return func(b *registryBuilder) {
		for module, fns := range bundle.Modules() {
			for fn, handler := range fns {
				if err := b.addHandler(module, fn, handler); err != nil {
					b.errors = append(b.errors, err)
				}
			}
		}
	}
}
