package resolver

import (
	"github.com/reglet-dev/sieve/domain/entities"
	"github.com/reglet-dev/sieve/domain/errors"
	"github.com/reglet-dev/sieve/domain/policy"
	"github.com/reglet-dev/sieve/domain/ports"
)

// DenialReason is passed to the DenialHandler for every refusal.
const DenialReason = "not a guest unit and not an allowed host capability"

type resolverConfig struct {
	denialHandler ports.DenialHandler
}

func defaultResolverConfig() resolverConfig {
	return resolverConfig{
		denialHandler: &policy.SlogDenialHandler{},
	}
}

// Option configures a Resolver.
type Option func(*resolverConfig)

// WithDenialHandler sets the handler notified of every refusal.
// A nil handler keeps the default, which logs through slog.Default().
func WithDenialHandler(h ports.DenialHandler) Option {
	return func(c *resolverConfig) {
		if h != nil {
			c.denialHandler = h
		}
	}
}

// Resolver maps names to guest units, host delegations or refusals.
type Resolver struct {
	guests ports.GuestLookup
	caps   ports.CapabilityLookup
	config resolverConfig
}

var _ ports.Resolver = (*Resolver)(nil)

// New creates a Resolver over the given registries.
func New(guests ports.GuestLookup, caps ports.CapabilityLookup, opts ...Option) *Resolver {
	cfg := defaultResolverConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Resolver{guests: guests, caps: caps, config: cfg}
}

// Resolve resolves name with no known requester.
func (r *Resolver) Resolve(name string) entities.Outcome {
	return r.ResolveFor("", name)
}

// ResolveFor resolves a name referenced by requester, a guest unit name or "".
// Refusals are reported to the DenialHandler before returning.
func (r *Resolver) ResolveFor(requester, name string) entities.Outcome {
	if payload, ok := r.guests.Get(name); ok {
		return entities.GuestOutcome(name, payload)
	}
	if r.caps.IsAllowed(name) {
		return entities.HostOutcome(name)
	}
	r.config.denialHandler.OnDenial(name, requester, DenialReason)
	return entities.DeniedOutcome(name)
}

// Check is ResolveFor with the refusal surfaced as *errors.ProhibitedError,
// which matches errors.ErrDenied.
func (r *Resolver) Check(requester, name string) (entities.Outcome, error) {
	out := r.ResolveFor(requester, name)
	if out.IsDenied() {
		return out, &errors.ProhibitedError{Name: name, Requester: requester}
	}
	return out, nil
}
