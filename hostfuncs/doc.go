// Package hostfuncs provides the trusted host implementations that back
// allowed host names.
//
// A host module is a qualified name (for example "java.lang.Math") plus a set
// of named functions. Handlers are plain Go with NO WASM runtime dependencies;
// infrastructure/wazero exposes them to guests when, and only when, the
// resolver delegates a name to the host.
package hostfuncs
