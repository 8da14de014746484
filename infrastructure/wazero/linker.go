package wazero

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/reglet-dev/sieve/domain/entities"
	"github.com/reglet-dev/sieve/domain/errors"
	"github.com/reglet-dev/sieve/domain/ports"
	"github.com/reglet-dev/sieve/hostfuncs"
	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"
)

// initializeExport is the reactor initialization export called once after a
// guest unit is instantiated.
const initializeExport = "_initialize"

// linkerConfig holds configuration for the Linker.
type linkerConfig struct {
	hosts          *hostfuncs.Registry
	logger         *slog.Logger
	custom         []CustomHandler
	maxRequestSize uint32
	wasi           bool
}

func defaultLinkerConfig() linkerConfig {
	return linkerConfig{
		maxRequestSize: hostfuncs.DefaultMaxRequestSize,
	}
}

// LinkerOption configures a Linker.
type LinkerOption func(*linkerConfig)

// WithHostFunctions sets the registry backing host delegations.
func WithHostFunctions(registry *hostfuncs.Registry) LinkerOption {
	return func(c *linkerConfig) {
		c.hosts = registry
	}
}

// WithCustomHandler adds a raw wazero host function under h.Module.
func WithCustomHandler(h CustomHandler) LinkerOption {
	return func(c *linkerConfig) {
		c.custom = append(c.custom, h)
	}
}

// WithMaxRequestSize sets the maximum host call request size read from guest memory.
func WithMaxRequestSize(size uint32) LinkerOption {
	return func(c *linkerConfig) {
		c.maxRequestSize = size
	}
}

// WithWASI backs the host name "wasi_snapshot_preview1" with wazero's WASI
// implementation. The name still has to be allowed to be reachable.
func WithWASI(enabled bool) LinkerOption {
	return func(c *linkerConfig) {
		c.wasi = enabled
	}
}

// WithLogger sets the logger for link events. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) LinkerOption {
	return func(c *linkerConfig) {
		c.logger = logger
	}
}

// Linker is the execution substrate's name-resolution hook. It turns every
// distinct import module name of a guest unit into one resolver call and
// materializes the outcome: guest payloads are compiled, linked recursively,
// instantiated under their qualified name and initialized through their
// "_initialize" export, and host delegations are instantiated from the host
// function registry. Imports of every kind count, not only functions.
//
// Each name is resolved at most once per Linker; materialized modules are
// cached. Link is safe for concurrent use.
type Linker struct {
	runtime  wazero.Runtime
	resolver ports.Resolver
	config   linkerConfig

	mu      sync.Mutex
	loaded  map[string]api.Module
	linking []string // names being linked, outermost first
}

// NewLinker creates a Linker over runtime. The Linker does not own the runtime.
func NewLinker(runtime wazero.Runtime, resolver ports.Resolver, opts ...LinkerOption) *Linker {
	cfg := defaultLinkerConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.logger == nil {
		cfg.logger = slog.Default()
	}
	return &Linker{
		runtime:  runtime,
		resolver: resolver,
		config:   cfg,
		loaded:   make(map[string]api.Module),
	}
}

// Link resolves name and materializes it with all of its imports.
//
// A refused name fails with *errors.ProhibitedError (errors.Is ErrDenied).
// An allowed host name with no implementation fails with
// *errors.UnresolvedError. Compilation and instantiation failures are
// reported as *errors.LinkError, and failures inside a dependency are wrapped
// in a *errors.LinkError naming each unit on the path. An import cycle is
// returned as a single *errors.LinkError whose Cycle lists the path.
// Failures are logged at Warn with the type and code of the root cause.
func (l *Linker) Link(ctx context.Context, name string) (api.Module, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	mod, err := l.link(ctx, "", name)
	if err != nil {
		root := errors.ToErrorDetail(err).Root()
		l.config.logger.WarnContext(ctx, "wazero: link failed",
			"name", name, "error_type", root.Type, "code", root.Code, "error", err)
		return nil, err
	}
	return mod, nil
}

// Loaded returns the names materialized so far, in no particular order.
func (l *Linker) Loaded() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	names := make([]string, 0, len(l.loaded))
	for name := range l.loaded {
		names = append(names, name)
	}
	return names
}

func (l *Linker) link(ctx context.Context, requester, name string) (api.Module, error) {
	if mod, ok := l.loaded[name]; ok {
		return mod, nil
	}
	for i, n := range l.linking {
		if n == name {
			cycle := append(append([]string{}, l.linking[i:]...), name)
			return nil, &errors.LinkError{Name: name, Cycle: cycle}
		}
	}

	out := l.resolver.ResolveFor(requester, name)

	var (
		mod api.Module
		err error
	)
	switch out.Kind {
	case entities.OutcomeGuest:
		mod, err = l.linkGuest(ctx, name, out.Payload)
	case entities.OutcomeHost:
		mod, err = l.linkHost(ctx, requester, name)
	default:
		return nil, &errors.ProhibitedError{Name: name, Requester: requester}
	}
	if err != nil {
		return nil, err
	}

	l.loaded[name] = mod
	l.config.logger.DebugContext(ctx, "wazero: linked", "name", name, "kind", out.Kind.String(), "requester", requester)
	return mod, nil
}

func (l *Linker) linkGuest(ctx context.Context, name string, payload []byte) (api.Module, error) {
	compiled, err := l.runtime.CompileModule(ctx, payload)
	if err != nil {
		return nil, &errors.LinkError{Name: name, Err: err}
	}

	deps, err := importedModules(payload)
	if err != nil {
		return nil, &errors.LinkError{Name: name, Err: err}
	}

	l.linking = append(l.linking, name)
	defer func() { l.linking = l.linking[:len(l.linking)-1] }()

	for _, dep := range deps {
		if _, err := l.link(ctx, name, dep); err != nil {
			if le, ok := err.(*errors.LinkError); ok && len(le.Cycle) > 0 {
				return nil, le
			}
			return nil, &errors.LinkError{Name: name, Err: err}
		}
	}

	// A start section still runs during instantiation; only exported start
	// functions such as _start are suppressed.
	cfg := wazero.NewModuleConfig().WithName(name).WithStartFunctions()
	mod, err := l.runtime.InstantiateModule(ctx, compiled, cfg)
	if err != nil {
		return nil, &errors.LinkError{Name: name, Err: err}
	}

	if init := mod.ExportedFunction(initializeExport); init != nil {
		if _, err := init.Call(ctx); err != nil {
			_ = mod.Close(ctx)
			return nil, &errors.LinkError{Name: name, Err: fmt.Errorf("failed to call %s: %w", initializeExport, err)}
		}
	}
	return mod, nil
}

func (l *Linker) linkHost(ctx context.Context, requester, name string) (api.Module, error) {
	if existing := l.runtime.Module(name); existing != nil {
		return existing, nil
	}

	if l.config.wasi && name == wasi_snapshot_preview1.ModuleName {
		if _, err := wasi_snapshot_preview1.Instantiate(ctx, l.runtime); err != nil {
			return nil, &errors.LinkError{Name: name, Err: err}
		}
		return l.runtime.Module(name), nil
	}

	mod, ok, err := instantiateHost(ctx, l.runtime, l.config.hosts, l.config.custom, name, l.config.maxRequestSize)
	if err != nil {
		return nil, &errors.LinkError{Name: name, Err: err}
	}
	if !ok {
		return nil, &errors.UnresolvedError{Name: name, Requester: requester, Reason: "no host implementation"}
	}
	return mod, nil
}
