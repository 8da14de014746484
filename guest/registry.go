package guest

import (
	"bytes"
	"sort"
	"strings"
	"sync/atomic"

	"github.com/reglet-dev/sieve/domain/entities"
	"github.com/reglet-dev/sieve/domain/errors"
	"github.com/reglet-dev/sieve/domain/naming"
	"github.com/reglet-dev/sieve/domain/ports"
)

// registryConfig holds configuration for the Registry.
type registryConfig struct {
	validator ports.NameValidator
}

func defaultRegistryConfig() registryConfig {
	return registryConfig{
		validator: naming.NewValidator(),
	}
}

// RegistryOption configures a Registry instance.
type RegistryOption func(*registryConfig)

// WithValidator replaces the default name validator.
func WithValidator(v ports.NameValidator) RegistryOption {
	return func(c *registryConfig) {
		if v != nil {
			c.validator = v
		}
	}
}

// Registry holds guest units keyed by qualified name, plus the reserved
// namespace prefixes guests may not claim.
//
// Mutating methods are not synchronized: the configuration phase must be
// single-threaded or serialized by the caller.
type Registry struct {
	config   registryConfig
	units    map[string][]byte
	reserved []string
	seen     map[string]struct{} // reserved prefixes, for idempotence
	frozen   atomic.Bool
}

// Ensure Registry satisfies the lookup port.
var _ ports.GuestLookup = (*Registry)(nil)

// NewRegistry creates an empty Registry in the configuration phase.
func NewRegistry(opts ...RegistryOption) *Registry {
	cfg := defaultRegistryConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Registry{
		config: cfg,
		units:  make(map[string][]byte),
		seen:   make(map[string]struct{}),
	}
}

// Reserve adds a namespace prefix. Adding the same prefix twice is a no-op.
func (r *Registry) Reserve(prefix string) error {
	if r.frozen.Load() {
		return &errors.FrozenError{Component: "guest registry", Operation: "reserve"}
	}
	if _, ok := r.seen[prefix]; ok {
		return nil
	}
	r.seen[prefix] = struct{}{}
	r.reserved = append(r.reserved, prefix)
	return nil
}

// ReserveDefaults reserves the substrate's standard-library namespaces
// so guests cannot shadow trusted built-ins. See DefaultReserved.
func (r *Registry) ReserveDefaults() error {
	for _, prefix := range defaultReserved {
		if err := r.Reserve(prefix); err != nil {
			return err
		}
	}
	return nil
}

// IsReserved returns true if name starts with any reserved prefix.
func (r *Registry) IsReserved(name string) bool {
	_, ok := r.reservedPrefix(name)
	return ok
}

func (r *Registry) reservedPrefix(name string) (string, bool) {
	for _, prefix := range r.reserved {
		if strings.HasPrefix(name, prefix) {
			return prefix, true
		}
	}
	return "", false
}

// Reserved returns the reserved prefixes in insertion order.
func (r *Registry) Reserved() []string {
	out := make([]string, len(r.reserved))
	copy(out, r.reserved)
	return out
}

// Register stores payload under name, replacing any previous unit with the
// same name.
//
// The reserved-namespace check runs before name validation, so a reserved name
// is reported as *errors.ReservedNameError even if it is also malformed.
// Otherwise an invalid name fails with *errors.InvalidNameError.
// The payload is copied; later changes to the caller's slice have no effect.
func (r *Registry) Register(name string, payload []byte) error {
	if r.frozen.Load() {
		return &errors.FrozenError{Component: "guest registry", Operation: "register"}
	}
	if prefix, ok := r.reservedPrefix(name); ok {
		return &errors.ReservedNameError{Name: name, Prefix: prefix}
	}
	if err := r.config.validator.Validate(name); err != nil {
		return err
	}
	r.units[name] = bytes.Clone(payload)
	return nil
}

// Contains returns true if a unit is registered under name.
func (r *Registry) Contains(name string) bool {
	_, ok := r.units[name]
	return ok
}

// Get returns the payload registered under name.
// The returned slice is shared with the registry and must not be modified.
func (r *Registry) Get(name string) ([]byte, bool) {
	payload, ok := r.units[name]
	return payload, ok
}

// Unit returns the registered unit for name.
func (r *Registry) Unit(name string) (entities.GuestUnit, bool) {
	payload, ok := r.units[name]
	if !ok {
		return entities.GuestUnit{}, false
	}
	return entities.GuestUnit{Name: name, Payload: payload}, true
}

// Names returns a sorted list of all registered unit names.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.units))
	for name := range r.units {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of registered units.
func (r *Registry) Len() int {
	return len(r.units)
}

// Freeze ends the configuration phase. It is idempotent.
func (r *Registry) Freeze() {
	r.frozen.Store(true)
}

// Frozen returns true once Freeze has been called.
func (r *Registry) Frozen() bool {
	return r.frozen.Load()
}
