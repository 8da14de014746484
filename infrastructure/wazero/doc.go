// Package wazero binds the sandboxed resolver to the wazero WebAssembly runtime.
//
// A guest unit is a wasm binary, and each distinct module name in its import
// section is a name resolution request. The Linker answers those requests
// through a ports.Resolver:
//
//   - Guest outcome: the payload is compiled, its own imports linked
//     recursively, and the result instantiated under the qualified name.
//   - Host outcome: the host module of that name is built from a
//     hostfuncs.Registry (and any CustomHandler) and instantiated.
//   - Denied: linking fails with *errors.ProhibitedError.
//
// # Basic Usage
//
//	runtime := wazero.NewRuntime(ctx)
//	hosts, _ := hostfuncs.NewRegistry(hostfuncs.WithBundle(hostfuncs.StandardBundle()))
//	linker := sievewazero.NewLinker(runtime, sandbox.Resolver(),
//	    sievewazero.WithHostFunctions(hosts),
//	)
//	mod, err := linker.Link(ctx, "com.example.guest.plugin.Main")
//
// # Host Call Convention
//
// Registry functions take one i64 holding ptr<<32|len of a JSON request in
// the caller's memory and return the response packed the same way, written
// through the caller's "allocate" export. Functions that don't fit, such as
// a no-result logger, are registered with WithCustomHandler.
package wazero
