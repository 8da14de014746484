package wazero

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/reglet-dev/sieve/hostfuncs"
	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
)

// CustomHandler is a wazero host function that doesn't use the packed i64
// request/response convention, registered under a host module name.
type CustomHandler struct {
	// Module is the qualified host module name the function belongs to.
	Module string

	// Name is the exported function name.
	Name string

	// Handler is the wazero GoModuleFunc implementation.
	Handler api.GoModuleFunc

	// ParamTypes are the WASM parameter types.
	ParamTypes []api.ValueType

	// ResultTypes are the WASM result types.
	ResultTypes []api.ValueType
}

// instantiateHost builds and instantiates the host module called name from the
// registry functions and custom handlers registered under it. It returns false
// if nothing implements name.
//
// Registry functions use the packed convention: one i64 parameter holding
// ptr<<32|len of the request in the caller's memory, and one i64 result
// holding the response written through the caller's "allocate" export.
func instantiateHost(ctx context.Context, rt wazero.Runtime, registry *hostfuncs.Registry, custom []CustomHandler, name string, maxRequestSize uint32) (api.Module, bool, error) {
	var fns []string
	if registry != nil {
		fns = registry.Functions(name)
	}

	builder := rt.NewHostModuleBuilder(name)
	defined := 0

	for _, fn := range fns {
		function := fn
		builder.NewFunctionBuilder().
			WithGoModuleFunction(api.GoModuleFunc(func(ctx context.Context, mod api.Module, stack []uint64) {
				handleRegistryCall(ctx, mod, stack, registry, name, function, maxRequestSize)
			}), []api.ValueType{api.ValueTypeI64}, []api.ValueType{api.ValueTypeI64}).
			Export(function)
		defined++
	}

	for _, ch := range custom {
		if ch.Module != name {
			continue
		}
		builder.NewFunctionBuilder().
			WithGoModuleFunction(ch.Handler, ch.ParamTypes, ch.ResultTypes).
			Export(ch.Name)
		defined++
	}

	if defined == 0 {
		return nil, false, nil
	}

	mod, err := builder.Instantiate(ctx)
	if err != nil {
		return nil, true, fmt.Errorf("failed to instantiate host module %s: %w", name, err)
	}
	return mod, true, nil
}

// handleRegistryCall reads the request from guest memory, invokes the handler,
// and writes the response.
func handleRegistryCall(ctx context.Context, mod api.Module, stack []uint64, registry *hostfuncs.Registry, module, function string, maxRequestSize uint32) {
	ptr, length := unpackPtrLen(stack[0])
	ctx = hostfuncs.WithCaller(ctx, CallerName(ctx, mod))

	if length > maxRequestSize {
		errMsg := fmt.Sprintf("request size %d exceeds maximum %d bytes", length, maxRequestSize)
		slog.ErrorContext(ctx, "wazero: "+errMsg, "module", module, "function", function)
		stack[0] = writeResponse(ctx, mod, hostfuncs.NewValidationError(errMsg).ToJSON())
		return
	}

	var request []byte
	if length > 0 {
		mem := mod.Memory()
		if mem == nil {
			slog.ErrorContext(ctx, "wazero: caller has no memory", "module", module, "function", function)
			stack[0] = 0
			return
		}
		data, ok := mem.Read(ptr, length)
		if !ok {
			errMsg := "failed to read request from guest memory"
			slog.ErrorContext(ctx, "wazero: "+errMsg, "module", module, "function", function)
			stack[0] = writeResponse(ctx, mod, hostfuncs.NewInternalError(errMsg).ToJSON())
			return
		}
		request = data
	}

	response, err := registry.Invoke(ctx, module, function, request)
	if err != nil {
		slog.ErrorContext(ctx, "wazero: host call failed", "module", module, "function", function, "error", err)
		stack[0] = writeResponse(ctx, mod, hostfuncs.NewInternalError(err.Error()).ToJSON())
		return
	}

	stack[0] = writeResponse(ctx, mod, response)
}

// writeResponse allocates memory in the guest and writes data.
// Returns packed ptr+len, or 0 for an empty response or on failure.
func writeResponse(ctx context.Context, mod api.Module, data []byte) uint64 {
	if len(data) == 0 {
		return 0
	}

	allocateFn := mod.ExportedFunction("allocate")
	if allocateFn == nil {
		slog.ErrorContext(ctx, "wazero: guest module missing 'allocate' export", "guest", mod.Name())
		return 0
	}

	results, err := allocateFn.Call(ctx, uint64(len(data)))
	if err != nil || len(results) == 0 {
		slog.ErrorContext(ctx, "wazero: failed to call guest allocate", "guest", mod.Name(), "error", err)
		return 0
	}
	ptr := uint32(results[0]) //nolint:gosec // G115: WASM32 pointers are always 32-bit

	if mod.Memory() == nil || !mod.Memory().Write(ptr, data) {
		slog.ErrorContext(ctx, "wazero: failed to write response to guest memory", "guest", mod.Name())
		return 0
	}

	return packPtrLen(ptr, uint32(len(data))) //nolint:gosec // G115: Data length is bounded by guest memory
}

// packPtrLen packs a pointer and length into a single i64.
// Upper 32 bits: pointer, lower 32 bits: length.
func packPtrLen(ptr, length uint32) uint64 {
	return (uint64(ptr) << 32) | uint64(length)
}

// unpackPtrLen unpacks a pointer and length from a packed i64.
func unpackPtrLen(packed uint64) (ptr, length uint32) {
	ptr = uint32(packed >> 32)           //nolint:gosec // G115: Packed format stores 32-bit values
	length = uint32(packed & 0xFFFFFFFF) //nolint:gosec // G115: Packed format stores 32-bit values
	return ptr, length
}
