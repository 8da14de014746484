package policystore_test

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/reglet-dev/sieve/domain/entities"
	"github.com/reglet-dev/sieve/infrastructure/policystore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStore_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "policy.yaml")
	store := policystore.NewFileStore(policystore.WithPath(path))
	assert.Equal(t, path, store.ConfigPath())

	policy := &entities.Policy{
		Reserved: []string{"com.example.host."},
		Allowed:  []string{"com.example.host.api.Console", "java.util.ArrayList"},
	}
	require.NoError(t, store.Save(policy))

	loaded, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, policy, loaded)

	if runtime.GOOS != "windows" {
		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
	}
}

func TestFileStore_MissingFileIsEmpty(t *testing.T) {
	store := policystore.NewFileStore(policystore.WithPath(filepath.Join(t.TempDir(), "missing.yaml")))

	policy, err := store.Load()
	require.NoError(t, err)
	assert.True(t, policy.IsEmpty())
}

func TestFileStore_Corrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "policy.yaml")
	require.NoError(t, os.WriteFile(path, []byte("reserved: [unterminated"), 0o600))

	_, err := policystore.NewFileStore(policystore.WithPath(path)).Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse policy store")
}

func TestFileStore_SaveNil(t *testing.T) {
	path := filepath.Join(t.TempDir(), "policy.yaml")
	store := policystore.NewFileStore(policystore.WithPath(path), policystore.WithFilePermissions(0o644))

	require.NoError(t, store.Save(nil))

	policy, err := store.Load()
	require.NoError(t, err)
	assert.True(t, policy.IsEmpty())
}
