package ports

import "github.com/reglet-dev/sieve/domain/entities"

// Prompter handles interactive grant authorization.
type Prompter interface {
	// IsInteractive returns true if running in an interactive terminal.
	IsInteractive() bool

	// PromptForGrant asks the user to allow a single host name.
	PromptForGrant(req entities.GrantRequest) (granted bool, err error)

	// PromptForGrants prompts for several host names at once and returns the
	// names the user approved.
	PromptForGrants(reqs []entities.GrantRequest) ([]string, error)

	// FormatNonInteractiveError creates a helpful error for non-interactive mode.
	FormatNonInteractiveError(missing []entities.GrantRequest) error
}
