package host

import (
	"github.com/reglet-dev/sieve/capability"
	"github.com/reglet-dev/sieve/domain/entities"
	"github.com/reglet-dev/sieve/domain/ports"
	"github.com/reglet-dev/sieve/guest"
	"github.com/reglet-dev/sieve/resolver"
)

// Sandbox is a configured, frozen sandbox. All methods are safe for
// concurrent use.
type Sandbox struct {
	guests   *guest.Registry
	caps     *capability.Registry
	resolver *resolver.Resolver
}

// Resolver returns the sandbox's resolver.
func (s *Sandbox) Resolver() ports.Resolver {
	return s.resolver
}

// Resolve resolves name with no known requester.
func (s *Sandbox) Resolve(name string) entities.Outcome {
	return s.resolver.Resolve(name)
}

// Check resolves name on behalf of requester, returning *errors.ProhibitedError
// for a refusal.
func (s *Sandbox) Check(requester, name string) (entities.Outcome, error) {
	return s.resolver.Check(requester, name)
}

// Guests returns the frozen guest registry.
func (s *Sandbox) Guests() ports.GuestLookup {
	return s.guests
}

// GuestNames returns the registered guest unit names, sorted.
func (s *Sandbox) GuestNames() []string {
	return s.guests.Names()
}

// AllowedNames returns the granted host names, sorted.
func (s *Sandbox) AllowedNames() []string {
	return s.caps.Names()
}

// Policy returns the effective reservations and grants.
func (s *Sandbox) Policy() *entities.Policy {
	return &entities.Policy{
		Reserved: s.guests.Reserved(),
		Allowed:  s.caps.Names(),
	}
}
