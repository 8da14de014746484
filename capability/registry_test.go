package capability_test

import (
	"sync"
	"testing"

	"github.com/reglet-dev/sieve/capability"
	"github.com/reglet-dev/sieve/domain/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_Allow(t *testing.T) {
	r := capability.NewRegistry()
	assert.False(t, r.IsAllowed("com.example.host.Api"))

	require.NoError(t, r.Allow("com.example.host.Api"))
	require.NoError(t, r.Allow("com.example.host.Api"))

	assert.True(t, r.IsAllowed("com.example.host.Api"))
	assert.Equal(t, 1, r.Len())
}

func TestRegistry_ExactMatchOnly(t *testing.T) {
	r := capability.NewRegistry()
	require.NoError(t, r.Allow("java.util.Map"))

	assert.False(t, r.IsAllowed("java.util.Map.Entry"))
	assert.False(t, r.IsAllowed("java.util"))
	assert.False(t, r.IsAllowed("java.util.map"))
}

func TestRegistry_AllowStandardSet(t *testing.T) {
	r := capability.NewRegistry()
	require.NoError(t, r.AllowStandardSet())

	assert.True(t, r.IsAllowed("java.util.ArrayList"))
	assert.True(t, r.IsAllowed("java.lang.String"))
	assert.True(t, r.IsAllowed("java.util.Map.Entry"))
	assert.False(t, r.IsAllowed("java.io.File"))
	assert.False(t, r.IsAllowed("java.lang.Runtime"))
	assert.False(t, r.IsAllowed("java.lang.reflect.Method"))
	assert.Equal(t, len(capability.StandardSet()), r.Len())
}

func TestStandardSet_ReturnsCopy(t *testing.T) {
	set := capability.StandardSet()
	require.NotEmpty(t, set)
	set[0] = "java.io.File"

	assert.NotContains(t, capability.StandardSet(), "java.io.File")
}

func TestStandardSet_NoDuplicates(t *testing.T) {
	seen := make(map[string]bool)
	for _, name := range capability.StandardSet() {
		assert.False(t, seen[name], "duplicate %s", name)
		seen[name] = true
	}
}

func TestRegistry_Freeze(t *testing.T) {
	r := capability.NewRegistry()
	require.NoError(t, r.Allow("com.example.host.Api"))
	r.Freeze()

	assert.ErrorIs(t, r.Allow("com.example.host.Other"), errors.ErrFrozen)
	assert.ErrorIs(t, r.AllowStandardSet(), errors.ErrFrozen)
	assert.Equal(t, []string{"com.example.host.Api"}, r.Names())
}

func TestRegistry_ConcurrentReadsAfterFreeze(t *testing.T) {
	r := capability.NewRegistry()
	require.NoError(t, r.AllowStandardSet())
	r.Freeze()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				assert.True(t, r.IsAllowed("java.util.HashMap"))
				assert.False(t, r.IsAllowed("java.io.File"))
			}
		}()
	}
	wg.Wait()
}
