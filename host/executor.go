package host

import (
	"context"
	"fmt"

	sievewazero "github.com/reglet-dev/sieve/infrastructure/wazero"
	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
)

// Executor links and runs guest units of a Sandbox on a wazero runtime.
type Executor struct {
	runtime wazero.Runtime
	linker  *sievewazero.Linker
	sandbox *Sandbox
}

// NewExecutor creates a new executor for sandbox with the given options.
func NewExecutor(ctx context.Context, sandbox *Sandbox, opts ...Option) (*Executor, error) {
	if sandbox == nil {
		return nil, fmt.Errorf("sandbox is required")
	}

	cfg := defaultExecutorConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	rc := wazero.NewRuntimeConfig().WithCloseOnContextDone(true)
	if cfg.memoryLimitPages > 0 {
		rc = rc.WithMemoryLimitPages(cfg.memoryLimitPages)
	}
	rt := wazero.NewRuntimeWithConfig(ctx, rc)

	linkerOpts := []sievewazero.LinkerOption{
		sievewazero.WithWASI(cfg.wasi),
		sievewazero.WithMaxRequestSize(cfg.maxRequestSize),
	}
	if cfg.hosts != nil {
		linkerOpts = append(linkerOpts, sievewazero.WithHostFunctions(cfg.hosts))
	}
	if cfg.logger != nil {
		linkerOpts = append(linkerOpts, sievewazero.WithLogger(cfg.logger))
	}
	for _, h := range cfg.custom {
		linkerOpts = append(linkerOpts, sievewazero.WithCustomHandler(h))
	}

	return &Executor{
		runtime: rt,
		linker:  sievewazero.NewLinker(rt, sandbox.Resolver(), linkerOpts...),
		sandbox: sandbox,
	}, nil
}

// Close releases resources held by the executor.
func (e *Executor) Close(ctx context.Context) error {
	return e.runtime.Close(ctx)
}

// Instance is a linked guest unit.
type Instance struct {
	name   string
	module api.Module
}

// Name returns the qualified name the instance was linked under.
func (i *Instance) Name() string {
	return i.name
}

// Module returns the underlying wazero module.
func (i *Instance) Module() api.Module {
	return i.module
}

// Load links the guest unit name and everything it imports. Every guest unit
// linked along the way has its "_initialize" export called once, dependencies
// first.
func (e *Executor) Load(ctx context.Context, name string) (*Instance, error) {
	mod, err := e.linker.Link(ctx, name)
	if err != nil {
		return nil, err
	}
	return &Instance{name: name, module: mod}, nil
}

// Invoke loads name and calls its export, which must take no parameters.
func (e *Executor) Invoke(ctx context.Context, name, export string) ([]uint64, error) {
	inst, err := e.Load(ctx, name)
	if err != nil {
		return nil, err
	}
	return inst.Call(ctx, export)
}

// Call calls a zero-parameter export of the instance.
func (i *Instance) Call(ctx context.Context, export string) ([]uint64, error) {
	fn := i.module.ExportedFunction(export)
	if fn == nil {
		return nil, fmt.Errorf("guest %s has no export %q", i.name, export)
	}
	if n := len(fn.Definition().ParamTypes()); n != 0 {
		return nil, fmt.Errorf("export %s.%s takes %d parameters, want 0", i.name, export, n)
	}
	results, err := fn.Call(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to call %s.%s: %w", i.name, export, err)
	}
	return results, nil
}

// Linked returns the names materialized so far, in no particular order.
func (e *Executor) Linked() []string {
	return e.linker.Loaded()
}
