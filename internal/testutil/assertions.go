// Package testutil provides test helpers: outcome assertions and a tiny
// WebAssembly assembler for building guest units in-test.
package testutil

import (
	"errors"
	"testing"

	"github.com/reglet-dev/sieve/domain/entities"
	sieveerrors "github.com/reglet-dev/sieve/domain/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// AssertGuest asserts that out is a guest outcome for name carrying payload.
func AssertGuest(t *testing.T, out entities.Outcome, name string, payload []byte) {
	t.Helper()
	assert.Equal(t, entities.GuestOutcome(name, payload), out)
}

// AssertHost asserts that out delegates name to the host.
func AssertHost(t *testing.T, out entities.Outcome, name string) {
	t.Helper()
	assert.Equal(t, entities.HostOutcome(name), out)
}

// AssertDenied asserts that out refuses name.
func AssertDenied(t *testing.T, out entities.Outcome, name string) {
	t.Helper()
	assert.Equal(t, entities.DeniedOutcome(name), out)
}

// RequireViolation asserts that err is an *errors.InvalidNameError for the
// given rule and returns it.
func RequireViolation(t *testing.T, err error, want sieveerrors.Violation) *sieveerrors.InvalidNameError {
	t.Helper()
	var invalid *sieveerrors.InvalidNameError
	require.True(t, errors.As(err, &invalid), "expected InvalidNameError, got %v", err)
	assert.Equal(t, want, invalid.Violation)
	return invalid
}

// RequireProhibited asserts that err wraps a *errors.ProhibitedError for name.
func RequireProhibited(t *testing.T, err error, name string) *sieveerrors.ProhibitedError {
	t.Helper()
	var prohibited *sieveerrors.ProhibitedError
	require.True(t, errors.As(err, &prohibited), "expected ProhibitedError, got %v", err)
	assert.Equal(t, name, prohibited.Name)
	assert.ErrorIs(t, err, sieveerrors.ErrDenied)
	return prohibited
}

// RequireUnresolved asserts that err wraps a *errors.UnresolvedError for name.
func RequireUnresolved(t *testing.T, err error, name string) *sieveerrors.UnresolvedError {
	t.Helper()
	var unresolved *sieveerrors.UnresolvedError
	require.True(t, errors.As(err, &unresolved), "expected UnresolvedError, got %v", err)
	assert.Equal(t, name, unresolved.Name)
	assert.NotErrorIs(t, err, sieveerrors.ErrDenied)
	return unresolved
}
