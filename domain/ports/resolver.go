package ports

import "github.com/reglet-dev/sieve/domain/entities"

// Resolver maps a referenced name to a guest unit, a host delegation, or a refusal.
// Implementations must be safe for concurrent use once configuration has ended.
type Resolver interface {
	// Resolve resolves name with no known requester.
	Resolve(name string) entities.Outcome

	// ResolveFor resolves name on behalf of the guest unit named requester.
	ResolveFor(requester, name string) entities.Outcome
}
