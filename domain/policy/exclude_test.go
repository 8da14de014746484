package policy_test

import (
	"testing"

	"github.com/reglet-dev/sieve/domain/policy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGlobExclude(t *testing.T) {
	exclude, err := policy.NewGlobExclude("**/*Test.wasm", "com/example/host/Capabilities.wasm")
	require.NoError(t, err)

	tests := []struct {
		path string
		want bool
	}{
		{"com/example/guest/PluginTest.wasm", true},
		{"PluginTest.wasm", true},
		{"com/example/host/Capabilities.wasm", true},
		{"com/example/guest/Plugin.wasm", false},
		{"com/example/other/Capabilities.wasm", false},
		{"./com/example/guest/PluginTest.wasm", true},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, exclude(tt.path))
		})
	}
}

func TestNewGlobExclude_NoPatterns(t *testing.T) {
	exclude, err := policy.NewGlobExclude()
	require.NoError(t, err)
	assert.False(t, exclude("anything.wasm"))
}

func TestNewGlobExclude_InvalidPattern(t *testing.T) {
	_, err := policy.NewGlobExclude("[unclosed")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid exclude pattern")
}
