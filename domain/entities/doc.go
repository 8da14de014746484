// Package entities provides the core domain types of the sandbox: qualified
// names, guest units, resolution outcomes, and the manifest and policy documents
// that drive the configuration phase.
package entities
