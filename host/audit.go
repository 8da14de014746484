package host

import (
	"context"
	"sort"

	"github.com/reglet-dev/sieve/domain/entities"
	sievewazero "github.com/reglet-dev/sieve/infrastructure/wazero"
)

// MissingGrants scans the imports of every registered guest unit and returns
// the names that would be denied, sorted, each with the guests importing it.
// It does not notify the denial handler.
func (s *Sandbox) MissingGrants(ctx context.Context) ([]entities.GrantRequest, error) {
	requesters := make(map[string][]string)

	for _, name := range s.guests.Names() {
		payload, _ := s.guests.Get(name)
		imports, err := sievewazero.ImportedModules(ctx, name, payload)
		if err != nil {
			return nil, err
		}
		for _, imp := range imports {
			if s.guests.Contains(imp) || s.caps.IsAllowed(imp) {
				continue
			}
			requesters[imp] = append(requesters[imp], name)
		}
	}

	missing := make([]entities.GrantRequest, 0, len(requesters))
	for name, reqs := range requesters {
		missing = append(missing, entities.GrantRequest{Name: name, Requesters: reqs})
	}
	sort.Slice(missing, func(i, j int) bool { return missing[i].Name < missing[j].Name })
	return missing, nil
}
