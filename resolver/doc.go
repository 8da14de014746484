// Package resolver implements the sandboxed name resolver.
//
// Every name the execution substrate needs is answered in a fixed order:
// a registered guest unit wins, then an allowed host capability, and anything
// else is refused. Resolution is a pure function of the registries' contents,
// so a Resolver built over frozen registries is safe for concurrent use.
package resolver
