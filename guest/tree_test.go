package guest_test

import (
	"io/fs"
	"testing"
	"testing/fstest"

	"github.com/reglet-dev/sieve/domain/errors"
	"github.com/reglet-dev/sieve/domain/policy"
	"github.com/reglet-dev/sieve/guest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func guestTree() fstest.MapFS {
	return fstest.MapFS{
		"guests/com/example/sandboxcore/Widget.wasm":     {Data: []byte("widget")},
		"guests/com/example/sandboxcore/Gadget.wasm":     {Data: []byte("gadget")},
		"guests/com/example/sandboxcore/WidgetTest.wasm": {Data: []byte("test")},
		"guests/com/example/sandboxcore/README.md":       {Data: []byte("docs")},
	}
}

func TestRegisterTree(t *testing.T) {
	r := guest.NewRegistry()

	n, err := r.RegisterTree(guestTree(), "guests", nil)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	got, ok := r.Get("com.example.sandboxcore.Widget")
	require.True(t, ok)
	assert.Equal(t, []byte("widget"), got)
	assert.False(t, r.Contains("com.example.sandboxcore.README"))
}

func TestRegisterTree_Exclude(t *testing.T) {
	r := guest.NewRegistry()
	exclude, err := policy.NewGlobExclude("**/*Test.wasm")
	require.NoError(t, err)

	n, err := r.RegisterTree(guestTree(), "guests", exclude)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.False(t, r.Contains("com.example.sandboxcore.WidgetTest"))
}

func TestRegisterTree_ExcludeDirectory(t *testing.T) {
	fsys := guestTree()
	fsys["guests/com/example/sandboxcore/internal/Bad.wasm"] = &fstest.MapFile{Data: []byte("bad")}
	r := guest.NewRegistry()

	_, err := r.RegisterTree(fsys, "guests", func(rel string) bool {
		return rel == "com/example/sandboxcore/internal"
	})
	require.NoError(t, err)
	assert.False(t, r.Contains("com.example.sandboxcore.internal.Bad"))
}

func TestRegisterTree_RootDot(t *testing.T) {
	fsys := fstest.MapFS{
		"com/example/sandboxcore/Widget.wasm": {Data: []byte("widget")},
	}
	r := guest.NewRegistry()

	n, err := r.RegisterTree(fsys, ".", nil)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.True(t, r.Contains("com.example.sandboxcore.Widget"))
}

func TestRegisterTree_WithExtension(t *testing.T) {
	fsys := fstest.MapFS{
		"com/example/sandboxcore/Widget.unit": {Data: []byte("widget")},
		"com/example/sandboxcore/Other.wasm":  {Data: []byte("other")},
	}
	r := guest.NewRegistry()

	n, err := r.RegisterTree(fsys, "", nil, guest.WithExtension(".unit"))
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, []string{"com.example.sandboxcore.Widget"}, r.Names())
}

func TestRegisterTree_MissingRoot(t *testing.T) {
	r := guest.NewRegistry()

	_, err := r.RegisterTree(guestTree(), "missing", nil)
	var loadErr *errors.LoadError
	require.ErrorAs(t, err, &loadErr)
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestRegisterTree_RegistrationFailureAborts(t *testing.T) {
	fsys := fstest.MapFS{
		"java/lang/Evil.wasm": {Data: []byte("evil")},
	}
	r := guest.NewRegistry()
	require.NoError(t, r.ReserveDefaults())

	n, err := r.RegisterTree(fsys, ".", nil)
	var reserved *errors.ReservedNameError
	require.ErrorAs(t, err, &reserved)
	assert.Zero(t, n)
}

func TestRegisterTree_Frozen(t *testing.T) {
	r := guest.NewRegistry()
	r.Freeze()

	_, err := r.RegisterTree(guestTree(), "guests", nil)
	assert.ErrorIs(t, err, errors.ErrFrozen)
}

func TestNameFromPath(t *testing.T) {
	assert.Equal(t, "com.example.sandboxcore.Widget", guest.NameFromPath("com/example/sandboxcore/Widget.wasm", ".wasm"))
	assert.Equal(t, "com.example.sandboxcore.Widget", guest.NameFromPath("./com/example/sandboxcore/Widget.wasm", ".wasm"))
}
