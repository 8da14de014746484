package capability

import (
	"sort"
	"sync/atomic"

	"github.com/reglet-dev/sieve/domain/errors"
	"github.com/reglet-dev/sieve/domain/ports"
)

// Registry is the allow-list of host names visible to guests.
//
// Allow is not synchronized and must only be called during configuration.
// After Freeze, IsAllowed is safe for concurrent use.
type Registry struct {
	allowed map[string]struct{}
	frozen  atomic.Bool
}

var _ ports.CapabilityLookup = (*Registry)(nil)

// NewRegistry creates an empty Registry. Nothing is allowed until granted.
func NewRegistry() *Registry {
	return &Registry{allowed: make(map[string]struct{})}
}

// Allow grants guests access to the host name. Granting twice is a no-op.
// No validation is applied: host names follow the host's conventions.
func (r *Registry) Allow(name string) error {
	if r.frozen.Load() {
		return &errors.FrozenError{Component: "capability registry", Operation: "allow"}
	}
	r.allowed[name] = struct{}{}
	return nil
}

// AllowAll grants every name in names.
func (r *Registry) AllowAll(names ...string) error {
	for _, name := range names {
		if err := r.Allow(name); err != nil {
			return err
		}
	}
	return nil
}

// AllowStandardSet grants the curated standard set. See StandardSet.
func (r *Registry) AllowStandardSet() error {
	return r.AllowAll(standardSet...)
}

// IsAllowed reports whether name was granted.
func (r *Registry) IsAllowed(name string) bool {
	_, ok := r.allowed[name]
	return ok
}

// Names returns the granted names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.allowed))
	for name := range r.allowed {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of granted names.
func (r *Registry) Len() int {
	return len(r.allowed)
}

// Freeze ends the configuration phase.
func (r *Registry) Freeze() {
	r.frozen.Store(true)
}

// Frozen returns true once Freeze has been called.
func (r *Registry) Frozen() bool {
	return r.frozen.Load()
}
