package ports

import "github.com/reglet-dev/sieve/domain/entities"

// PolicyStore provides persistence for reserved namespaces and capability grants.
type PolicyStore interface {
	// Load retrieves the stored policy.
	// Returns an empty Policy (not error) if nothing has been stored.
	Load() (*entities.Policy, error)

	// Save persists the policy.
	Save(policy *entities.Policy) error

	// ConfigPath returns the path to the backing store (for user messaging).
	ConfigPath() string
}
