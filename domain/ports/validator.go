package ports

import "github.com/reglet-dev/sieve/domain/entities"

// NameValidator checks a candidate guest name before registration.
type NameValidator interface {
	// Validate returns nil if name is acceptable, or an *errors.InvalidNameError
	// describing the first rule it violates. It has no side effects.
	Validate(name string) error
}

// ManifestValidator validates a parsed manifest before it is applied.
type ManifestValidator interface {
	// Validate checks the manifest against its schema and field constraints.
	Validate(manifest *entities.Manifest) (*entities.ValidationResult, error)
}
