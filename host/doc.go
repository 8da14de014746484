// Package host is the composition root of the sandbox.
//
// A Builder runs the configuration phase: reserve namespaces, grant host
// capabilities, and register guest units. Build freezes both registries and
// returns a Sandbox whose resolver is safe for concurrent use. A Loader drives
// the same phase from a YAML manifest, and an Executor links and invokes
// guest entry points on the wazero runtime.
package host
