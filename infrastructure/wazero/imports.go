package wazero

import (
	"context"
	"sort"

	"github.com/reglet-dev/sieve/domain/errors"
	"github.com/tetratelabs/wazero"
)

// ImportedModules compiles payload without instantiating it and returns the
// distinct module names it imports, of any import kind, sorted. These are the names linking the
// payload would resolve.
func ImportedModules(ctx context.Context, name string, payload []byte) ([]string, error) {
	rt := wazero.NewRuntimeWithConfig(ctx, wazero.NewRuntimeConfigInterpreter())
	defer rt.Close(ctx) //nolint:errcheck

	if _, err := rt.CompileModule(ctx, payload); err != nil {
		return nil, &errors.LinkError{Name: name, Err: err}
	}
	names, err := importedModules(payload)
	if err != nil {
		return nil, &errors.LinkError{Name: name, Err: err}
	}
	sort.Strings(names)
	return names, nil
}
