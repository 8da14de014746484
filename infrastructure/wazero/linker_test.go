package wazero_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/reglet-dev/sieve/capability"
	"github.com/reglet-dev/sieve/domain/entities"
	"github.com/reglet-dev/sieve/domain/errors"
	"github.com/reglet-dev/sieve/domain/policy"
	"github.com/reglet-dev/sieve/domain/ports"
	"github.com/reglet-dev/sieve/guest"
	"github.com/reglet-dev/sieve/hostfuncs"
	sievewazero "github.com/reglet-dev/sieve/infrastructure/wazero"
	"github.com/reglet-dev/sieve/internal/testutil"
	"github.com/reglet-dev/sieve/resolver"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
)

const (
	mainName   = "com.example.guest.plugin.Main"
	helperName = "com.example.guest.plugin.Helper"
	utilName   = "com.example.guest.plugin.Util"
)

type fixture struct {
	guests  *guest.Registry
	caps    *capability.Registry
	denials *policy.RecordingDenialHandler
	runtime wazero.Runtime
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	f := &fixture{
		guests:  guest.NewRegistry(),
		caps:    capability.NewRegistry(),
		denials: &policy.RecordingDenialHandler{},
		runtime: wazero.NewRuntime(ctx),
	}
	require.NoError(t, f.guests.ReserveDefaults())
	require.NoError(t, f.caps.AllowStandardSet())
	t.Cleanup(func() { _ = f.runtime.Close(ctx) })
	return f
}

func (f *fixture) resolver() *resolver.Resolver {
	return resolver.New(f.guests, f.caps, resolver.WithDenialHandler(f.denials))
}

func (f *fixture) linker(opts ...sievewazero.LinkerOption) *sievewazero.Linker {
	return sievewazero.NewLinker(f.runtime, f.resolver(), opts...)
}

// countingResolver records how often each name is resolved.
type countingResolver struct {
	ports.Resolver
	mu    sync.Mutex
	calls map[string]int
}

func (c *countingResolver) ResolveFor(requester, name string) entities.Outcome {
	c.mu.Lock()
	c.calls[name]++
	c.mu.Unlock()
	return c.Resolver.ResolveFor(requester, name)
}

func TestLinker_GuestWithoutImports(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.guests.Register(mainName, testutil.Noop()))

	mod, err := f.linker().Link(context.Background(), mainName)
	require.NoError(t, err)
	assert.Equal(t, mainName, mod.Name())
}

func TestLinker_GuestImportsGuest(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.guests.Register(mainName, testutil.GuestCalling(helperName)))
	require.NoError(t, f.guests.Register(helperName, testutil.Noop()))

	l := f.linker()
	mod, err := l.Link(context.Background(), mainName)
	require.NoError(t, err)

	_, err = mod.ExportedFunction("run").Call(context.Background())
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{mainName, helperName}, l.Loaded())
}

func TestLinker_DeniedImport(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.guests.Register(mainName, testutil.GuestCalling("java.io.File")))

	_, err := f.linker().Link(context.Background(), mainName)

	prohibited := testutil.RequireProhibited(t, err, "java.io.File")
	assert.Equal(t, mainName, prohibited.Requester)

	var linkErr *errors.LinkError
	require.ErrorAs(t, err, &linkErr)
	assert.Equal(t, mainName, linkErr.Name)

	assert.Equal(t, []policy.Denial{{Name: "java.io.File", Requester: mainName, Reason: resolver.DenialReason}}, f.denials.Denials())
}

func TestLinker_DeniedNonFunctionImports(t *testing.T) {
	tests := []struct {
		name    string
		payload []byte
	}{
		{"global", testutil.GuestImportingGlobal("java.lang.System")},
		{"table", testutil.GuestImportingTable("java.lang.System")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			require.NoError(t, f.guests.Register(mainName, tt.payload))

			_, err := f.linker().Link(context.Background(), mainName)

			prohibited := testutil.RequireProhibited(t, err, "java.lang.System")
			assert.Equal(t, mainName, prohibited.Requester)
			assert.Equal(t, []policy.Denial{{Name: "java.lang.System", Requester: mainName, Reason: resolver.DenialReason}}, f.denials.Denials())
			assert.Nil(t, f.runtime.Module(mainName))
		})
	}
}

func TestLinker_GuestImportsGuestGlobal(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.guests.Register(mainName, testutil.GuestImportingGlobal(helperName)))
	require.NoError(t, f.guests.Register(helperName, testutil.GlobalExporter(42)))

	ctx := context.Background()
	l := f.linker()
	mod, err := l.Link(ctx, mainName)
	require.NoError(t, err)

	results, err := mod.ExportedFunction("get").Call(ctx)
	require.NoError(t, err)
	assert.Equal(t, []uint64{42}, results)
	assert.ElementsMatch(t, []string{mainName, helperName}, l.Loaded())
}

func TestLinker_GuestImportsGuestTable(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.guests.Register(mainName, testutil.GuestImportingTable(helperName)))
	require.NoError(t, f.guests.Register(helperName, testutil.TableExporter()))

	l := f.linker()
	_, err := l.Link(context.Background(), mainName)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{mainName, helperName}, l.Loaded())
}

func TestLinker_InitializesDependenciesOnce(t *testing.T) {
	const counterName = "com.example.host.api.Counter"
	f := newFixture(t)
	require.NoError(t, f.caps.Allow(counterName))
	require.NoError(t, f.guests.Register(mainName, testutil.GuestCalling(helperName)))
	require.NoError(t, f.guests.Register(helperName, testutil.Initializing(counterName)))

	var calls atomic.Int32
	l := f.linker(sievewazero.WithCustomHandler(sievewazero.CustomHandler{
		Module: counterName,
		Name:   "call",
		Handler: api.GoModuleFunc(func(context.Context, api.Module, []uint64) {
			calls.Add(1)
		}),
	}))

	ctx := context.Background()
	_, err := l.Link(ctx, helperName)
	require.NoError(t, err)
	_, err = l.Link(ctx, mainName)
	require.NoError(t, err)

	assert.Equal(t, int32(1), calls.Load())
}

func TestLinker_FailingInitialize(t *testing.T) {
	m := testutil.NewWasmModule()
	m.Export("_initialize", m.Func(nil, nil, testutil.OpTrap))
	m.Export("call", m.Func(nil, nil))

	f := newFixture(t)
	require.NoError(t, f.guests.Register(mainName, testutil.GuestCalling(helperName)))
	require.NoError(t, f.guests.Register(helperName, m.Bytes()))

	_, err := f.linker().Link(context.Background(), mainName)

	var linkErr *errors.LinkError
	require.ErrorAs(t, err, &linkErr)
	assert.Equal(t, mainName, linkErr.Name)
	assert.Contains(t, err.Error(), "_initialize")
	assert.Nil(t, f.runtime.Module(helperName))
}

func TestLinker_StartFunctions(t *testing.T) {
	const counterName = "com.example.host.api.Counter"
	build := func(section bool) []byte {
		m := testutil.NewWasmModule()
		imp := m.ImportFunc(counterName, "call", nil, nil)
		fn := m.Func(nil, nil, testutil.Call(imp)...)
		m.Export("_start", fn)
		if section {
			m.Start(fn)
		}
		return m.Bytes()
	}

	tests := []struct {
		name      string
		section   bool
		wantCalls int32
	}{
		{"exported _start is not run", false, 0},
		{"start section runs", true, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			require.NoError(t, f.caps.Allow(counterName))
			require.NoError(t, f.guests.Register(mainName, build(tt.section)))

			var calls atomic.Int32
			l := f.linker(sievewazero.WithCustomHandler(sievewazero.CustomHandler{
				Module: counterName,
				Name:   "call",
				Handler: api.GoModuleFunc(func(context.Context, api.Module, []uint64) {
					calls.Add(1)
				}),
			}))

			_, err := l.Link(context.Background(), mainName)
			require.NoError(t, err)
			assert.Equal(t, tt.wantCalls, calls.Load())
		})
	}
}

func TestLinker_LogsFailureType(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.guests.Register(mainName, testutil.GuestCalling(helperName)))
	require.NoError(t, f.guests.Register(helperName, testutil.GuestImportingGlobal("java.io.File")))

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelWarn}))

	_, err := f.linker(sievewazero.WithLogger(logger)).Link(context.Background(), mainName)
	require.Error(t, err)

	out := buf.String()
	assert.Contains(t, out, `msg="wazero: link failed"`)
	assert.Contains(t, out, "name="+mainName)
	assert.Contains(t, out, "error_type=denied")
	assert.Contains(t, out, "code=java.io.File")
}

func TestLinker_DeniedEntry(t *testing.T) {
	f := newFixture(t)

	_, err := f.linker().Link(context.Background(), "com.example.guest.plugin.Missing")

	prohibited := testutil.RequireProhibited(t, err, "com.example.guest.plugin.Missing")
	assert.Empty(t, prohibited.Requester)
}

func TestLinker_AllowedHostWithoutImplementation(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.guests.Register(mainName, testutil.GuestCalling("java.util.ArrayList")))

	_, err := f.linker().Link(context.Background(), mainName)

	unresolved := testutil.RequireUnresolved(t, err, "java.util.ArrayList")
	assert.Equal(t, mainName, unresolved.Requester)
	assert.Empty(t, f.denials.Denials())
}

func TestLinker_CustomHostHandler(t *testing.T) {
	const counterName = "com.example.host.api.Counter"
	f := newFixture(t)
	require.NoError(t, f.caps.Allow(counterName))
	require.NoError(t, f.guests.Register(mainName, testutil.GuestCalling(counterName)))

	var calls atomic.Int32
	var caller atomic.Value
	l := f.linker(sievewazero.WithCustomHandler(sievewazero.CustomHandler{
		Module: counterName,
		Name:   "call",
		Handler: api.GoModuleFunc(func(ctx context.Context, mod api.Module, _ []uint64) {
			calls.Add(1)
			caller.Store(sievewazero.CallerName(ctx, mod))
		}),
	}))

	mod, err := l.Link(context.Background(), mainName)
	require.NoError(t, err)
	_, err = mod.ExportedFunction("run").Call(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, mainName, caller.Load())
}

func TestLinker_RegistryHostCall(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.guests.Register(mainName, testutil.HostCaller("java.lang.Math", "abs")))

	hosts, err := hostfuncs.NewRegistry(hostfuncs.WithBundle(hostfuncs.StandardBundle()))
	require.NoError(t, err)

	ctx := context.Background()
	mod, err := f.linker(sievewazero.WithHostFunctions(hosts)).Link(ctx, mainName)
	require.NoError(t, err)

	results, err := mod.ExportedFunction("invoke").Call(ctx)
	require.NoError(t, err)
	require.Len(t, results, 1)

	data := testutil.ReadPacked(t, mod, results[0])

	var resp hostfuncs.MathResponse
	require.NoError(t, json.Unmarshal(data, &resp))
	assert.Equal(t, hostfuncs.MathResponse{Result: 0}, resp)
}

func TestLinker_HostModuleMissingFunction(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.guests.Register(mainName, testutil.GuestCalling("java.lang.Math")))

	hosts, err := hostfuncs.NewRegistry(hostfuncs.WithBundle(hostfuncs.StandardBundle()))
	require.NoError(t, err)

	_, err = f.linker(sievewazero.WithHostFunctions(hosts)).Link(context.Background(), mainName)

	var linkErr *errors.LinkError
	require.ErrorAs(t, err, &linkErr)
	assert.Equal(t, mainName, linkErr.Name)
	assert.Empty(t, linkErr.Cycle)
	assert.NotErrorIs(t, err, errors.ErrDenied)
}

func TestLinker_ImportCycle(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.guests.Register(mainName, testutil.GuestCalling(helperName)))
	require.NoError(t, f.guests.Register(helperName, testutil.GuestCalling(mainName)))

	_, err := f.linker().Link(context.Background(), mainName)

	var linkErr *errors.LinkError
	require.ErrorAs(t, err, &linkErr)
	assert.Equal(t, []string{mainName, helperName, mainName}, linkErr.Cycle)
	assert.Contains(t, err.Error(), "import cycle")
}

func TestLinker_ResolvesEachNameOnce(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.guests.Register(mainName, testutil.GuestCalling(helperName, utilName)))
	require.NoError(t, f.guests.Register(helperName, testutil.GuestCalling(utilName)))
	require.NoError(t, f.guests.Register(utilName, testutil.Noop()))

	counting := &countingResolver{Resolver: f.resolver(), calls: make(map[string]int)}
	l := sievewazero.NewLinker(f.runtime, counting)

	ctx := context.Background()
	_, err := l.Link(ctx, mainName)
	require.NoError(t, err)
	_, err = l.Link(ctx, mainName)
	require.NoError(t, err)

	assert.Equal(t, map[string]int{mainName: 1, helperName: 1, utilName: 1}, counting.calls)
}

func TestLinker_WASI(t *testing.T) {
	wasiGuest := func() []byte {
		m := testutil.NewWasmModule()
		yield := m.ImportFunc("wasi_snapshot_preview1", "sched_yield", nil, []byte{testutil.I32})
		run := m.Func(nil, nil, testutil.Concat(testutil.Call(yield), []byte{testutil.OpDrop})...)
		return m.Export("run", run).Bytes()
	}

	t.Run("not allowed", func(t *testing.T) {
		f := newFixture(t)
		require.NoError(t, f.guests.Register(mainName, wasiGuest()))

		_, err := f.linker(sievewazero.WithWASI(true)).Link(context.Background(), mainName)
		testutil.RequireProhibited(t, err, "wasi_snapshot_preview1")
	})

	t.Run("allowed without implementation", func(t *testing.T) {
		f := newFixture(t)
		require.NoError(t, f.caps.Allow("wasi_snapshot_preview1"))
		require.NoError(t, f.guests.Register(mainName, wasiGuest()))

		_, err := f.linker().Link(context.Background(), mainName)
		testutil.RequireUnresolved(t, err, "wasi_snapshot_preview1")
	})

	t.Run("allowed and enabled", func(t *testing.T) {
		f := newFixture(t)
		require.NoError(t, f.caps.Allow("wasi_snapshot_preview1"))
		require.NoError(t, f.guests.Register(mainName, wasiGuest()))

		ctx := context.Background()
		mod, err := f.linker(sievewazero.WithWASI(true)).Link(ctx, mainName)
		require.NoError(t, err)
		_, err = mod.ExportedFunction("run").Call(ctx)
		require.NoError(t, err)
	})
}

func TestLinker_InvalidPayload(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.guests.Register(mainName, []byte("not wasm")))

	_, err := f.linker().Link(context.Background(), mainName)

	var linkErr *errors.LinkError
	require.ErrorAs(t, err, &linkErr)
	assert.Equal(t, mainName, linkErr.Name)
}

func TestLinker_ConcurrentLink(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.guests.Register(mainName, testutil.GuestCalling(helperName)))
	require.NoError(t, f.guests.Register(helperName, testutil.Noop()))
	f.guests.Freeze()
	f.caps.Freeze()

	l := f.linker()
	mods := make([]api.Module, 8)
	var wg sync.WaitGroup
	for i := range mods {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			mod, err := l.Link(context.Background(), mainName)
			assert.NoError(t, err)
			mods[i] = mod
		}(i)
	}
	wg.Wait()

	for _, mod := range mods {
		assert.Same(t, mods[0], mod)
	}
}

func TestImportedModules(t *testing.T) {
	names, err := sievewazero.ImportedModules(context.Background(), mainName,
		testutil.GuestCalling(utilName, "java.lang.Math", helperName))
	require.NoError(t, err)
	assert.Equal(t, []string{helperName, utilName, "java.lang.Math"}, names)

	names, err = sievewazero.ImportedModules(context.Background(), mainName, testutil.GuestImportingGlobal("java.lang.System"))
	require.NoError(t, err)
	assert.Equal(t, []string{"java.lang.System"}, names)

	names, err = sievewazero.ImportedModules(context.Background(), mainName, testutil.GuestImportingTable(helperName))
	require.NoError(t, err)
	assert.Equal(t, []string{helperName}, names)

	names, err = sievewazero.ImportedModules(context.Background(), mainName, testutil.Noop())
	require.NoError(t, err)
	assert.Empty(t, names)

	_, err = sievewazero.ImportedModules(context.Background(), mainName, []byte("not wasm"))
	var linkErr *errors.LinkError
	require.ErrorAs(t, err, &linkErr)
	assert.Equal(t, mainName, linkErr.Name)
}
