// Package ports defines the interfaces between the sandbox core and its
// collaborators. Domain logic depends on these abstractions; registries,
// the resolver, and infrastructure adapters implement them.
package ports
