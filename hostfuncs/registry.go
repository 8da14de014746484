package hostfuncs

import (
	"context"
	"fmt"
	"sort"
)

// DefaultMaxRequestSize limits the size of incoming requests (1MB).
// This prevents malicious guests from triggering OOM by claiming huge request sizes.
const DefaultMaxRequestSize = 1 * 1024 * 1024

// Registry is an immutable collection of host modules, each a qualified name
// with named functions. Once created via NewRegistry, handlers cannot be added
// or removed, so lookups are lock-free.
//
// Registering a module here does not expose it: guests only reach modules
// whose names the capability registry allows.
type Registry struct {
	modules map[string]map[string]ByteHandler
	names   []string // sorted module names
}

// registryBuilder accumulates configuration during registry construction.
type registryBuilder struct {
	modules    map[string]map[string]ByteHandler
	middleware []Middleware
	errors     []error
}

// NewRegistry creates an immutable Registry with the given options.
// Returns an error if any module function is registered twice.
//
// Example usage:
//
//	registry, err := NewRegistry(
//	    WithMiddleware(PanicRecoveryMiddleware()),
//	    WithBundle(StandardBundle()),
//	    WithHandler("com.example.host.api.Clock", "now", nowHandler),
//	)
func NewRegistry(opts ...RegistryOption) (*Registry, error) {
	b := &registryBuilder{
		modules: make(map[string]map[string]ByteHandler),
	}

	for _, opt := range opts {
		opt(b)
	}

	if len(b.errors) > 0 {
		return nil, b.errors[0]
	}

	names := make([]string, 0, len(b.modules))
	wrapped := make(map[string]map[string]ByteHandler, len(b.modules))
	for module, fns := range b.modules {
		names = append(names, module)
		wrapped[module] = make(map[string]ByteHandler, len(fns))
		for fn, handler := range fns {
			h := handler
			// Reverse order so the first middleware wraps outermost.
			for i := len(b.middleware) - 1; i >= 0; i-- {
				h = b.middleware[i](h)
			}
			wrapped[module][fn] = h
		}
	}
	sort.Strings(names)

	return &Registry{modules: wrapped, names: names}, nil
}

// Invoke dispatches a host call. Returns an ErrorResponse JSON if the
// function is not found.
func (r *Registry) Invoke(ctx context.Context, module, function string, payload []byte) ([]byte, error) {
	handler, ok := r.Handler(module, function)
	if !ok {
		return NewNotFoundError(module, function).ToJSON(), nil
	}
	return handler(HostContextFrom(ctx, module, function), payload)
}

// Handler returns the wrapped handler for a module function.
func (r *Registry) Handler(module, function string) (ByteHandler, bool) {
	fns, ok := r.modules[module]
	if !ok {
		return nil, false
	}
	h, ok := fns[function]
	return h, ok
}

// Has returns true if a module with the given qualified name is registered.
func (r *Registry) Has(module string) bool {
	_, ok := r.modules[module]
	return ok
}

// Names returns a sorted list of all registered module names.
func (r *Registry) Names() []string {
	result := make([]string, len(r.names))
	copy(result, r.names)
	return result
}

// Functions returns the sorted function names of module.
func (r *Registry) Functions(module string) []string {
	fns := r.modules[module]
	out := make([]string, 0, len(fns))
	for fn := range fns {
		out = append(out, fn)
	}
	sort.Strings(out)
	return out
}

func (b *registryBuilder) addHandler(module, function string, handler ByteHandler) error {
	if module == "" {
		return fmt.Errorf("host module name cannot be empty")
	}
	if function == "" {
		return fmt.Errorf("function name cannot be empty in host module %q", module)
	}
	if handler == nil {
		return fmt.Errorf("nil handler for %s.%s", module, function)
	}
	fns, ok := b.modules[module]
	if !ok {
		fns = make(map[string]ByteHandler)
		b.modules[module] = fns
	}
	if _, exists := fns[function]; exists {
		return fmt.Errorf("duplicate host function: %s.%s", module, function)
	}
	fns[function] = handler
	return nil
}

// WithByteHandler registers a raw ByteHandler as module.function.
// Use WithHandler for type-safe registration with automatic JSON handling.
func WithByteHandler(module, function string, handler ByteHandler) RegistryOption {
	return func(b *registryBuilder) {
		if err := b.addHandler(module, function, handler); err != nil {
			b.errors = append(b.errors, err)
		}
	}
}

// WithHandler registers a typed host function with automatic JSON handling.
//
// Example usage:
//
//	WithHandler("com.example.host.api.Echo", "echo", func(ctx context.Context, req EchoRequest) EchoResponse {
//	    return EchoResponse{Text: req.Text}
//	})
func WithHandler[Req any, Resp any](module, function string, fn HostFunc[Req, Resp]) RegistryOption {
	return WithByteHandler(module, function, NewJSONHandler(fn))
}

// WithMiddleware adds middleware to the registry.
// Middleware executes in FIFO order (first added wraps first).
func WithMiddleware(mw ...Middleware) RegistryOption {
	return func(b *registryBuilder) {
		b.middleware = append(b.middleware, mw...)
	}
}
