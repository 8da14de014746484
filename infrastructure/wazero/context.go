package wazero

import (
	"context"

	"github.com/reglet-dev/sieve/hostfuncs"
	"github.com/tetratelabs/wazero/api"
)

// CallerName returns the guest unit making a host call: the name recorded on
// ctx by hostfuncs.WithCaller, falling back to the calling module's name.
func CallerName(ctx context.Context, mod api.Module) string {
	if name, ok := hostfuncs.CallerFromContext(ctx); ok {
		return name
	}
	return mod.Name()
}
