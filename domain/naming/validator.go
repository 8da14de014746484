package naming

import (
	"fmt"
	"unicode"
	"unicode/utf8"

	"github.com/reglet-dev/sieve/domain/entities"
	"github.com/reglet-dev/sieve/domain/errors"
	"github.com/reglet-dev/sieve/domain/ports"
)

// validatorConfig holds configuration for the Validator.
type validatorConfig struct {
	grammar  Grammar
	minDepth int
}

func defaultValidatorConfig() validatorConfig {
	return validatorConfig{
		grammar:  DefaultGrammar(),
		minDepth: DefaultMinDepth,
	}
}

// ValidatorOption configures the Validator.
type ValidatorOption func(*validatorConfig)

// WithMinDepth sets the minimum number of name components.
// Values below 1 are ignored.
func WithMinDepth(depth int) ValidatorOption {
	return func(c *validatorConfig) {
		if depth > 0 {
			c.minDepth = depth
		}
	}
}

// WithGrammar replaces the default grammar.
func WithGrammar(g Grammar) ValidatorOption {
	return func(c *validatorConfig) {
		c.grammar = g
	}
}

// Validator checks candidate guest names against syntactic and casing rules.
type Validator struct {
	config validatorConfig
}

// Ensure Validator satisfies the port.
var _ ports.NameValidator = (*Validator)(nil)

// NewValidator creates a new Validator.
func NewValidator(opts ...ValidatorOption) *Validator {
	cfg := defaultValidatorConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Validator{config: cfg}
}

// MinDepth returns the configured minimum number of components.
func (v *Validator) MinDepth() int {
	return v.config.minDepth
}

// Validate checks name against the naming rules in order and returns an
// *errors.InvalidNameError for the first rule that fails:
//
//  1. the name is non-empty
//  2. it has at least MinDepth components, none of them empty
//  3. namespace components have no upper-case letter after their first rune
//  4. the last component starts with an upper-case letter
//  5. no component is a keyword
//  6. every component is a valid identifier
func (v *Validator) Validate(name string) error {
	if name == "" {
		return invalid(name, errors.ViolationEmpty, "", "name must not be empty")
	}

	components := entities.SplitName(name)
	if len(components) < v.config.minDepth {
		return invalid(name, errors.ViolationDepth, "",
			fmt.Sprintf("name has %d components, at least %d required", len(components), v.config.minDepth))
	}
	for i, c := range components {
		if c == "" {
			return invalid(name, errors.ViolationEmptyComponent, "",
				fmt.Sprintf("component %d is empty", i+1))
		}
	}

	last := len(components) - 1
	for _, c := range components[:last] {
		if r, ok := upperAfterFirst(c); ok {
			return invalid(name, errors.ViolationNamespaceCase, c,
				fmt.Sprintf("namespace component %q contains upper-case %q", c, r))
		}
	}

	terminal := components[last]
	if first, _ := utf8.DecodeRuneInString(terminal); !unicode.IsUpper(first) {
		return invalid(name, errors.ViolationTerminalCase, terminal,
			fmt.Sprintf("last component %q must start with an upper-case letter", terminal))
	}

	for _, c := range components {
		if v.config.grammar.IsKeyword(c) {
			return invalid(name, errors.ViolationKeyword, c,
				fmt.Sprintf("component %q is a reserved keyword", c))
		}
	}

	for _, c := range components {
		if err := v.checkIdentifier(name, c); err != nil {
			return err
		}
	}

	return nil
}

func (v *Validator) checkIdentifier(name, component string) error {
	for i, r := range component {
		if i == 0 {
			if !v.config.grammar.IsIdentifierStart(r) {
				return invalid(name, errors.ViolationIdentifierStart, component,
					fmt.Sprintf("component %q cannot start with %q", component, r))
			}
			continue
		}
		if !v.config.grammar.IsIdentifierPart(r) {
			return invalid(name, errors.ViolationIdentifierPart, component,
				fmt.Sprintf("component %q contains invalid character %q", component, r))
		}
	}
	return nil
}

// upperAfterFirst returns the first upper-case rune after the first rune of s.
func upperAfterFirst(s string) (rune, bool) {
	_, size := utf8.DecodeRuneInString(s)
	for _, r := range s[size:] {
		if unicode.IsUpper(r) {
			return r, true
		}
	}
	return 0, false
}

func invalid(name string, v errors.Violation, component, detail string) error {
	return &errors.InvalidNameError{
		Name:      name,
		Violation: v,
		Component: component,
		Detail:    detail,
	}
}
