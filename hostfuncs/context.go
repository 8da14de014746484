package hostfuncs

import (
	"context"
)

// HostContext wraps a standard context.Context with host call details.
// Middleware can also store request-scoped values on it.
type HostContext interface {
	context.Context

	// ModuleName returns the qualified name of the host module being called.
	ModuleName() string

	// FunctionName returns the name of the host function being invoked.
	FunctionName() string

	// Caller returns the name of the guest unit making the call, or "".
	Caller() string

	// SetValue stores a request-scoped value. Unlike context.WithValue,
	// this mutates the existing HostContext.
	SetValue(key, value any)

	// GetValue retrieves a request-scoped value set by SetValue.
	GetValue(key any) (value any, ok bool)
}

type hostContext struct {
	context.Context
	values     map[any]any
	moduleName string
	funcName   string
}

// NewHostContext creates a new HostContext wrapping the given context.
func NewHostContext(ctx context.Context, moduleName, funcName string) HostContext {
	return &hostContext{
		Context:    ctx,
		moduleName: moduleName,
		funcName:   funcName,
		values:     make(map[any]any),
	}
}

func (c *hostContext) ModuleName() string {
	return c.moduleName
}

func (c *hostContext) FunctionName() string {
	return c.funcName
}

func (c *hostContext) Caller() string {
	name, _ := CallerFromContext(c.Context)
	return name
}

func (c *hostContext) SetValue(key, value any) {
	c.values[key] = value
}

func (c *hostContext) GetValue(key any) (any, bool) {
	v, ok := c.values[key]
	return v, ok
}

// HostContextFrom extracts a HostContext from a context.Context.
// If the context is already a HostContext, it is returned directly.
func HostContextFrom(ctx context.Context, moduleName, funcName string) HostContext {
	if hc, ok := ctx.(HostContext); ok {
		return hc
	}
	return NewHostContext(ctx, moduleName, funcName)
}

type contextKey struct {
	name string
}

var callerKey = &contextKey{name: "caller"}

// WithCaller records the calling guest unit's name on ctx.
func WithCaller(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, callerKey, name)
}

// CallerFromContext returns the calling guest unit's name, if recorded.
func CallerFromContext(ctx context.Context) (string, bool) {
	name, ok := ctx.Value(callerKey).(string)
	return name, ok
}
