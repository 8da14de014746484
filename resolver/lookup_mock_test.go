package resolver_test

import (
	"testing"

	"github.com/reglet-dev/sieve/domain/entities"
	"github.com/reglet-dev/sieve/resolver"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockGuestLookup struct {
	mock.Mock
}

func (m *MockGuestLookup) Contains(name string) bool {
	args := m.Called(name)
	return args.Bool(0)
}

func (m *MockGuestLookup) Get(name string) ([]byte, bool) {
	args := m.Called(name)
	payload, _ := args.Get(0).([]byte)
	return payload, args.Bool(1)
}

type MockCapabilityLookup struct {
	mock.Mock
}

func (m *MockCapabilityLookup) IsAllowed(name string) bool {
	args := m.Called(name)
	return args.Bool(0)
}

type MockDenialHandler struct {
	mock.Mock
}

func (m *MockDenialHandler) OnDenial(name, requester, reason string) {
	m.Called(name, requester, reason)
}

func TestResolver_GuestSkipsCapabilityLookup(t *testing.T) {
	guests := new(MockGuestLookup)
	caps := new(MockCapabilityLookup)
	denials := new(MockDenialHandler)

	guests.On("Get", "com.example.guest.plugin.Main").Return([]byte("main"), true)

	out := resolver.New(guests, caps, resolver.WithDenialHandler(denials)).Resolve("com.example.guest.plugin.Main")

	assert.Equal(t, entities.GuestOutcome("com.example.guest.plugin.Main", []byte("main")), out)
	guests.AssertExpectations(t)
	caps.AssertNotCalled(t, "IsAllowed", mock.Anything)
	denials.AssertNotCalled(t, "OnDenial", mock.Anything, mock.Anything, mock.Anything)
}

func TestResolver_DeniedNotifiesOnce(t *testing.T) {
	guests := new(MockGuestLookup)
	caps := new(MockCapabilityLookup)
	denials := new(MockDenialHandler)

	guests.On("Get", "java.lang.Runtime").Return(nil, false)
	caps.On("IsAllowed", "java.lang.Runtime").Return(false)
	denials.On("OnDenial", "java.lang.Runtime", "com.example.guest.plugin.Main", resolver.DenialReason).Once()

	out := resolver.New(guests, caps, resolver.WithDenialHandler(denials)).
		ResolveFor("com.example.guest.plugin.Main", "java.lang.Runtime")

	assert.True(t, out.IsDenied())
	guests.AssertExpectations(t)
	caps.AssertExpectations(t)
	denials.AssertExpectations(t)
}
