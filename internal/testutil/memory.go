package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tetratelabs/wazero/api"
)

// ReadPacked reads the guest memory region named by a packed host call result
// (pointer in the high 32 bits, length in the low 32 bits).
func ReadPacked(t *testing.T, mod api.Module, packed uint64) []byte {
	t.Helper()
	ptr, length := uint32(packed>>32), uint32(packed) //nolint:gosec // packed format stores 32-bit values
	require.NotZero(t, length, "empty host call result")
	data, ok := mod.Memory().Read(ptr, length)
	require.True(t, ok, "host call result out of range: ptr=%d len=%d", ptr, length)
	return data
}
