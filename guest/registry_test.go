package guest_test

import (
	stdErrors "errors"
	"testing"

	"github.com/reglet-dev/sieve/domain/errors"
	"github.com/reglet-dev/sieve/domain/naming"
	"github.com/reglet-dev/sieve/guest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_RegisterAndGet(t *testing.T) {
	r := guest.NewRegistry()
	payload := []byte{0x00, 0x61, 0x73, 0x6d}

	require.NoError(t, r.Register("com.example.sandboxcore.Widget", payload))

	got, ok := r.Get("com.example.sandboxcore.Widget")
	require.True(t, ok)
	assert.Equal(t, payload, got)
	assert.True(t, r.Contains("com.example.sandboxcore.Widget"))
	assert.False(t, r.Contains("com.example.sandboxcore.Gadget"))
	assert.Equal(t, 1, r.Len())

	unit, ok := r.Unit("com.example.sandboxcore.Widget")
	require.True(t, ok)
	assert.Equal(t, "com.example.sandboxcore.Widget", unit.Name)
}

func TestRegistry_RegisterCopiesPayload(t *testing.T) {
	r := guest.NewRegistry()
	payload := []byte("abc")

	require.NoError(t, r.Register("com.example.sandboxcore.Widget", payload))
	payload[0] = 'x'

	got, _ := r.Get("com.example.sandboxcore.Widget")
	assert.Equal(t, []byte("abc"), got)
}

func TestRegistry_RegisterReplaces(t *testing.T) {
	r := guest.NewRegistry()
	require.NoError(t, r.Register("com.example.sandboxcore.Widget", []byte("one")))
	require.NoError(t, r.Register("com.example.sandboxcore.Widget", []byte("two")))

	got, _ := r.Get("com.example.sandboxcore.Widget")
	assert.Equal(t, []byte("two"), got)
	assert.Equal(t, 1, r.Len())
}

func TestRegistry_ReservedDefaults(t *testing.T) {
	r := guest.NewRegistry()
	require.NoError(t, r.ReserveDefaults())

	err := r.Register("java.lang.Evil", []byte("x"))
	var reserved *errors.ReservedNameError
	require.ErrorAs(t, err, &reserved)
	assert.Equal(t, "java.", reserved.Prefix)
	assert.False(t, r.Contains("java.lang.Evil"))

	assert.True(t, r.IsReserved("javax.swing.JFrame"))
	assert.True(t, r.IsReserved("wasi_snapshot_preview1"))
	assert.False(t, r.IsReserved("com.example.sandboxcore.Widget"))
	assert.Equal(t, guest.DefaultReserved(), r.Reserved())
}

func TestRegistry_ReserveIsIdempotent(t *testing.T) {
	r := guest.NewRegistry()
	require.NoError(t, r.Reserve("org.acme."))
	require.NoError(t, r.Reserve("org.acme."))

	assert.Equal(t, []string{"org.acme."}, r.Reserved())
}

func TestRegistry_ReservedIsRawPrefix(t *testing.T) {
	r := guest.NewRegistry()
	require.NoError(t, r.Reserve("org.w3c"))

	// No component boundary is implied.
	err := r.Register("org.w3cfoo.example.Bar", []byte("x"))
	var reserved *errors.ReservedNameError
	assert.ErrorAs(t, err, &reserved)
}

func TestRegistry_ReservedCheckedBeforeValidation(t *testing.T) {
	r := guest.NewRegistry()
	require.NoError(t, r.Reserve("java."))

	// Too shallow and lowercase terminal, but reserved wins.
	err := r.Register("java.evil", []byte("x"))
	var reserved *errors.ReservedNameError
	assert.ErrorAs(t, err, &reserved)
}

func TestRegistry_InvalidName(t *testing.T) {
	r := guest.NewRegistry()

	tests := []struct {
		name      string
		violation errors.Violation
	}{
		{"", errors.ViolationEmpty},
		{"com.example.Widget", errors.ViolationDepth},
		{"com.example.sandboxCore.Widget", errors.ViolationNamespaceCase},
		{"com.example.sandboxcore.widget", errors.ViolationTerminalCase},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := r.Register(tt.name, []byte("x"))
			var invalid *errors.InvalidNameError
			require.ErrorAs(t, err, &invalid)
			assert.Equal(t, tt.violation, invalid.Violation)
		})
	}
	assert.Zero(t, r.Len())
}

func TestRegistry_WithValidator(t *testing.T) {
	r := guest.NewRegistry(guest.WithValidator(naming.NewValidator(naming.WithMinDepth(2))))

	assert.NoError(t, r.Register("acme.Widget", []byte("x")))
}

func TestRegistry_Freeze(t *testing.T) {
	r := guest.NewRegistry()
	require.NoError(t, r.Register("com.example.sandboxcore.Widget", []byte("x")))
	r.Freeze()
	r.Freeze()
	assert.True(t, r.Frozen())

	err := r.Register("com.example.sandboxcore.Gadget", []byte("y"))
	assert.True(t, stdErrors.Is(err, errors.ErrFrozen))

	err = r.Reserve("org.acme.")
	assert.ErrorIs(t, err, errors.ErrFrozen)

	// Reads still work.
	assert.True(t, r.Contains("com.example.sandboxcore.Widget"))
	assert.Equal(t, []string{"com.example.sandboxcore.Widget"}, r.Names())
}

func TestRegistry_Names(t *testing.T) {
	r := guest.NewRegistry()
	require.NoError(t, r.Register("com.example.sandboxcore.Widget", nil))
	require.NoError(t, r.Register("com.example.sandboxcore.Gadget", nil))

	assert.Equal(t, []string{"com.example.sandboxcore.Gadget", "com.example.sandboxcore.Widget"}, r.Names())
}
